package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

// UserPostgres implements repository.UserRepository on sqlx.
type UserPostgres struct {
	db *sqlx.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sqlx.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

type userRow struct {
	ID          string         `db:"id"`
	DisplayName string         `db:"display_name"`
	ImageURL    string         `db:"image_url"`
	PushToken   sql.NullString `db:"push_token"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, display_name, image_url, push_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &model.User{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		ImageURL:    row.ImageURL,
		PushToken:   row.PushToken.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}, nil
}

func (r *UserPostgres) UpdateProfile(ctx context.Context, u *model.User, withImage bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if withImage {
		const q = `UPDATE users SET display_name = $1, image_url = $2, updated_at = now() WHERE id = $3`
		res, err = r.db.ExecContext(ctx, q, u.DisplayName, u.ImageURL, u.ID)
	} else {
		const q = `UPDATE users SET display_name = $1, updated_at = now() WHERE id = $2`
		res, err = r.db.ExecContext(ctx, q, u.DisplayName, u.ID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *UserPostgres) DisplayName(ctx context.Context, id string) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT display_name FROM users WHERE id = $1`, id); err != nil {
		return "", err
	}
	return name, nil
}

// PushToken returns "" for users without a registered token, including unknown users.
func (r *UserPostgres) PushToken(ctx context.Context, id string) (string, error) {
	var token sql.NullString
	err := r.db.GetContext(ctx, &token, `SELECT push_token FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token.String, nil
}
