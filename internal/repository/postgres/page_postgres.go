package postgres

import (
	"context"
	"database/sql"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

// PagePostgres is a PostgreSQL implementation of repository.PageRepository.
type PagePostgres struct {
	db *sql.DB
}

// NewPagePostgres creates a new PagePostgres repository.
func NewPagePostgres(db *sql.DB) *PagePostgres {
	return &PagePostgres{db: db}
}

var _ repository.PageRepository = (*PagePostgres)(nil)

func (r *PagePostgres) Create(ctx context.Context, p *model.StoryPage) (string, error) {
	const q = `
		INSERT INTO story_pages (id, story_id, page_number, content, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.StoryID,
		p.PageNumber,
		p.Content,
		p.ImageURL,
		p.CreatedAt,
	).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PagePostgres) Update(ctx context.Context, p *model.StoryPage, withImage bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if withImage {
		const q = `
			UPDATE story_pages
			SET page_number = $1, content = $2, image_url = $3, updated_at = now()
			WHERE id = $4 AND story_id = $5
		`
		res, err = r.db.ExecContext(ctx, q, p.PageNumber, p.Content, p.ImageURL, p.ID, p.StoryID)
	} else {
		const q = `
			UPDATE story_pages
			SET page_number = $1, content = $2, updated_at = now()
			WHERE id = $3 AND story_id = $4
		`
		res, err = r.db.ExecContext(ctx, q, p.PageNumber, p.Content, p.ID, p.StoryID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PagePostgres) FindByID(ctx context.Context, id string) (*model.StoryPage, error) {
	const q = `
		SELECT id, story_id, page_number, content, image_url, created_at, updated_at
		FROM story_pages
		WHERE id = $1
	`
	var p model.StoryPage
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID,
		&p.StoryID,
		&p.PageNumber,
		&p.Content,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
