package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

var storyCols = []string{"id", "user_id", "title", "description", "cover_url", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestStoryPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	s := &model.Story{
		ID:        "story-1",
		UserID:    "u1",
		Title:     "The Fox",
		CoverURL:  "https://cdn.example.com/storydata/u1/a.png",
		CreatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO stories").
		WithArgs(s.ID, s.UserID, s.Title, s.Description, s.CoverURL, s.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("story-1"))

	id, err := repo.Create(ctx, s)

	assert.NoError(t, err)
	assert.Equal(t, "story-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryPostgres_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryPostgres(db)
	ctx := context.Background()

	s := &model.Story{ID: "story-1", Title: "New", Description: "d", CoverURL: "https://cdn/x.png"}

	t.Run("with cover", func(t *testing.T) {
		mock.ExpectExec("UPDATE stories SET title = \\$1, description = \\$2, cover_url = \\$3").
			WithArgs(s.Title, s.Description, s.CoverURL, s.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.Update(ctx, s, true)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("cover untouched", func(t *testing.T) {
		mock.ExpectExec("UPDATE stories SET title = \\$1, description = \\$2, updated_at = now\\(\\) WHERE id = \\$3").
			WithArgs(s.Title, s.Description, s.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := repo.Update(ctx, s, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryPostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(storyCols).
			AddRow("story-1", "u1", "The Fox", "", "https://cdn/x.png", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM stories WHERE id = ?").
			WithArgs("story-1").
			WillReturnRows(rows)

		s, err := repo.FindByID(ctx, "story-1")

		assert.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "https://cdn/x.png", s.CoverURL)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stories WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		s, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, s)
	})
}

func TestStoryPostgres_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM stories WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(storyCols).
		AddRow("story-1", "u1", "The Fox", "", "", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM stories WHERE user_id = \\$1 ORDER BY").
		WithArgs("u1", 10, 0).
		WillReturnRows(rows)

	res, err := repo.ListByUser(ctx, "u1", repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
