package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyapi/internal/model"
)

func TestPagePostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagePostgres(db)

	p := &model.StoryPage{ID: "p1", StoryID: "s1", PageNumber: 2, Content: "Once", CreatedAt: time.Now().UTC()}

	mock.ExpectQuery("INSERT INTO story_pages").
		WithArgs(p.ID, p.StoryID, p.PageNumber, p.Content, p.ImageURL, p.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))

	id, err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.Equal(t, "p1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagePostgres_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagePostgres(db)
	ctx := context.Background()

	p := &model.StoryPage{ID: "p1", StoryID: "s1", PageNumber: 3, Content: "c", ImageURL: "https://cdn/p.png"}

	mock.ExpectExec("UPDATE story_pages SET page_number = \\$1, content = \\$2, image_url = \\$3").
		WithArgs(p.PageNumber, p.Content, p.ImageURL, p.ID, p.StoryID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows, err := repo.Update(ctx, p, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	mock.ExpectExec("UPDATE story_pages SET page_number = \\$1, content = \\$2, updated_at").
		WithArgs(p.PageNumber, p.Content, p.ID, p.StoryID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows, err = repo.Update(ctx, p, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagePostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagePostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM story_pages WHERE id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "story_id", "page_number", "content", "image_url", "created_at", "updated_at"}).
			AddRow("p1", "s1", 1, "text", "", time.Now(), time.Now()))

	p, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "s1", p.StoryID)
	assert.Equal(t, 1, p.PageNumber)
}
