package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyapi/internal/model"
)

func newMockSqlx(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock := newMockSqlx(t)
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "image_url", "push_token", "created_at", "updated_at"}).
			AddRow("u1", "Alice", "https://cdn/userdata/u1/a.png", nil, time.Now(), time.Now()))

	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Empty(t, u.PushToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateProfile(t *testing.T) {
	db, mock := newMockSqlx(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()
	u := &model.User{ID: "u1", DisplayName: "Alice", ImageURL: "https://cdn/userdata/u1/b.png"}

	mock.ExpectExec("UPDATE users SET display_name = \\$1, image_url = \\$2").
		WithArgs(u.DisplayName, u.ImageURL, u.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows, err := repo.UpdateProfile(ctx, u, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	mock.ExpectExec("UPDATE users SET display_name = \\$1, updated_at").
		WithArgs(u.DisplayName, u.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows, err = repo.UpdateProfile(ctx, u, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_DisplayName(t *testing.T) {
	db, mock := newMockSqlx(t)
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT display_name FROM users").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Alice"))

	name, err := repo.DisplayName(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestUserPostgres_PushToken(t *testing.T) {
	db, mock := newMockSqlx(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("registered", func(t *testing.T) {
		mock.ExpectQuery("SELECT push_token FROM users").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"push_token"}).AddRow("tok-1"))

		token, err := repo.PushToken(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("null token", func(t *testing.T) {
		mock.ExpectQuery("SELECT push_token FROM users").
			WithArgs("u2").
			WillReturnRows(sqlmock.NewRows([]string{"push_token"}).AddRow(nil))

		token, err := repo.PushToken(ctx, "u2")
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery("SELECT push_token FROM users").
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		token, err := repo.PushToken(ctx, "ghost")
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery("SELECT push_token FROM users").
			WithArgs("u3").
			WillReturnError(errors.New("conn refused"))

		_, err := repo.PushToken(ctx, "u3")
		assert.Error(t, err)
	})
}
