package postgres

import (
	"context"
	"database/sql"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

// StoryPostgres is a PostgreSQL implementation of repository.StoryRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type StoryPostgres struct {
	db *sql.DB
}

// NewStoryPostgres creates a new StoryPostgres repository.
func NewStoryPostgres(db *sql.DB) *StoryPostgres {
	return &StoryPostgres{db: db}
}

var _ repository.StoryRepository = (*StoryPostgres)(nil)

const storyColumns = `id, user_id, title, description, cover_url, created_at, updated_at`

// Create inserts a new story row and returns its id.
func (r *StoryPostgres) Create(ctx context.Context, s *model.Story) (string, error) {
	const q = `
		INSERT INTO stories (id, user_id, title, description, cover_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q,
		s.ID,
		s.UserID,
		s.Title,
		s.Description,
		s.CoverURL,
		s.CreatedAt,
	).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Update modifies a story and reports affected rows. cover_url is kept as stored unless withCover is set.
func (r *StoryPostgres) Update(ctx context.Context, s *model.Story, withCover bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if withCover {
		const q = `
			UPDATE stories
			SET title = $1, description = $2, cover_url = $3, updated_at = now()
			WHERE id = $4
		`
		res, err = r.db.ExecContext(ctx, q, s.Title, s.Description, s.CoverURL, s.ID)
	} else {
		const q = `
			UPDATE stories
			SET title = $1, description = $2, updated_at = now()
			WHERE id = $3
		`
		res, err = r.db.ExecContext(ctx, q, s.Title, s.Description, s.ID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindByID fetches a single story by its ID.
func (r *StoryPostgres) FindByID(ctx context.Context, id string) (*model.Story, error) {
	const q = `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	var s model.Story
	if err := scanStory(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns a user's stories using LIMIT/OFFSET pagination and a total count.
func (r *StoryPostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Story], error) {
	const qCount = `SELECT COUNT(*) FROM stories WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + storyColumns + ` FROM stories
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Story, 0)
	for rows.Next() {
		var s model.Story
		if err := scanStory(rows, &s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Story]{
		Items: items,
		Total: total,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(row scanner, s *model.Story) error {
	return row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Description,
		&s.CoverURL,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}
