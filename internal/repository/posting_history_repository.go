package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postflow/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	GetByPostID(ctx context.Context, postID string) ([]*models.PostingHistory, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

// EnsurePostingHistorySchema creates the audit table when it does not exist yet.
func EnsurePostingHistorySchema(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS posting_history (
			id               BIGSERIAL PRIMARY KEY,
			user_id          TEXT NOT NULL,
			post_id          TEXT NOT NULL,
			platform         TEXT NOT NULL,
			external_post_id TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			error_message    TEXT NOT NULL DEFAULT '',
			trigger          TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS posting_history_post_id_idx ON posting_history (post_id);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (user_id, post_id, platform, external_post_id, url, error_message, trigger)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		ph.UserID,
		ph.PostID,
		ph.Platform,
		ph.ExternalPostID,
		ph.URL,
		ph.ErrorMessage,
		ph.Trigger,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postingHistoryRepository) GetByPostID(ctx context.Context, postID string) ([]*models.PostingHistory, error) {
	return r.list(ctx, `SELECT id, user_id, post_id, platform, external_post_id, url, error_message, trigger, created_at
		FROM posting_history WHERE post_id = $1 ORDER BY created_at DESC, id DESC`, postID)
}

func (r *postingHistoryRepository) GetByUserID(ctx context.Context, userID string) ([]*models.PostingHistory, error) {
	return r.list(ctx, `SELECT id, user_id, post_id, platform, external_post_id, url, error_message, trigger, created_at
		FROM posting_history WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *postingHistoryRepository) list(ctx context.Context, query string, arg string) ([]*models.PostingHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var phs []*models.PostingHistory
	for rows.Next() {
		var ph models.PostingHistory
		err := rows.Scan(&ph.ID, &ph.UserID, &ph.PostID, &ph.Platform, &ph.ExternalPostID, &ph.URL, &ph.ErrorMessage, &ph.Trigger, &ph.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		phs = append(phs, &ph)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return phs, nil
}
