package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

// FollowerPostgres resolves followers from the follows table.
type FollowerPostgres struct {
	db *sqlx.DB
}

// NewFollowerPostgres creates a new FollowerPostgres repository.
func NewFollowerPostgres(db *sqlx.DB) *FollowerPostgres {
	return &FollowerPostgres{db: db}
}

var _ repository.FollowerRepository = (*FollowerPostgres)(nil)

type followerRow struct {
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
}

// Followers returns who follows userID, oldest follow first. Push tokens are
// left empty and resolved separately per recipient.
func (r *FollowerPostgres) Followers(ctx context.Context, userID string) ([]model.Recipient, error) {
	const q = `
		SELECT u.id AS user_id, u.display_name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at ASC, u.id ASC
	`
	var rows []followerRow
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	out := make([]model.Recipient, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Recipient{UserID: row.UserID, DisplayName: row.DisplayName})
	}
	return out, nil
}
