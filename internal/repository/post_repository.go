package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	ClaimForProcessing(ctx context.Context, id int64) (bool, error)
	MarkPosted(ctx context.Context, id int64, instagramPostID, permalink string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	Release(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, caption, media_url, scheduled_time, status,
	instagram_post_id, permalink, error_message, posted_at, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, caption, media_url, scheduled_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.Caption, post.MediaURL, post.ScheduledTime, post.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.Caption, post.MediaURL, post.ScheduledTime, post.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var post models.Post
	var postedAt sql.NullTime
	err := row.Scan(&post.ID, &post.UserID, &post.Caption, &post.MediaURL, &post.ScheduledTime,
		&post.Status, &post.InstagramPostID, &post.Permalink, &post.ErrorMessage, &postedAt,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if postedAt.Valid {
		post.PostedAt = &postedAt.Time
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY scheduled_time DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// ListDue returns scheduled posts whose time has come, earliest first, so
// the longest-overdue post is processed before fresher ones.
func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time ASC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ClaimForProcessing flips scheduled → processing only if the post is
// still scheduled. False means another invocation got there first; the
// caller must skip the post. This is the guard that keeps an overlapping
// cron tick and a manual post-now from double-publishing.
func (r *postRepository) ClaimForProcessing(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusProcessing, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// MarkPosted writes absolute values, so calling it twice with the same
// arguments is a no-op update.
func (r *postRepository) MarkPosted(ctx context.Context, id int64, instagramPostID, permalink string) error {
	query := `
		UPDATE posts
		SET status = $1,
			instagram_post_id = $2,
			permalink = $3,
			error_message = '',
			posted_at = COALESCE(posted_at, $4),
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, instagramPostID, permalink, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE posts
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Release puts a claimed post back to scheduled. Used when the platform
// rate-limited the attempt: the next sweep retries it instead of leaving
// it failed.
func (r *postRepository) Release(ctx context.Context, id int64) error {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, time.Now(), id, models.PostStatusProcessing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
