package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

// PostingHistoryRepository is append-only; rows are never updated or
// deleted here. Retention is someone else's problem.
type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error)
	GetByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (user_id, post_id, account_id, success, rate_limited, instagram_post_id, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		ph.UserID, ph.PostID, ph.AccountID, ph.Success, ph.RateLimited, ph.InstagramPostID, ph.ErrorMessage,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

const historyColumns = `id, user_id, post_id, account_id, success, rate_limited, instagram_post_id, error_message, created_at`

func (r *postingHistoryRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.PostingHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var phs []*models.PostingHistory
	for rows.Next() {
		var ph models.PostingHistory
		err := rows.Scan(&ph.ID, &ph.UserID, &ph.PostID, &ph.AccountID, &ph.Success,
			&ph.RateLimited, &ph.InstagramPostID, &ph.ErrorMessage, &ph.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		phs = append(phs, &ph)
	}
	return phs, rows.Err()
}

func (r *postingHistoryRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM posting_history WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postingHistoryRepository) GetByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM posting_history WHERE post_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, postID)
}
