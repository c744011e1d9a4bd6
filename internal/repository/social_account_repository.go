package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error
	SetConnected(ctx context.Context, id int64, connected bool) error
	Remove(ctx context.Context, id int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, platform, account_id, account_name, account_username,
	profile_picture_url, access_token, refresh_token, token_expires_at, connected, created_at, updated_at`

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	insertQuery := `
		INSERT INTO social_accounts(
			user_id,
			platform,
			account_id,
			account_name,
			account_username,
			profile_picture_url,
			access_token,
			refresh_token,
			token_expires_at,
			connected
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	args := []interface{}{
		sa.UserID,
		sa.Platform,
		sa.AccountID,
		sa.AccountName,
		sa.AccountUsername,
		sa.ProfilePicture,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenExpiresAt,
		sa.Connected,
	}

	var id int64
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanSocialAccount(row interface{ Scan(...interface{}) error }) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountID, &sa.AccountName,
		&sa.AccountUsername, &sa.ProfilePicture, &sa.AccessToken, &sa.RefreshToken,
		&sa.TokenExpiresAt, &sa.Connected, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND platform = $2`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT id, account_name, account_username, profile_picture_url, platform, connected
		FROM social_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var socialAccounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.AccountName, &sa.AccountUsername, &sa.ProfilePicture, &sa.Platform, &sa.Connected)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		socialAccounts = append(socialAccounts, &sa)
	}
	return socialAccounts, rows.Err()
}

// ListExpiring returns connected accounts whose token expires between from
// and to, or already has. Feeds the refresh job.
func (r *socialAccountRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts
		WHERE connected = TRUE
		AND (token_expires_at BETWEEN $1 AND $2 OR token_expires_at < $1)`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var socialAccounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		socialAccounts = append(socialAccounts, sa)
	}
	return socialAccounts, rows.Err()
}

func (r *socialAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := "SELECT 1 FROM social_accounts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *socialAccountRepository) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE social_accounts
		SET access_token = $2,
			refresh_token = $2,
			token_expires_at = $3,
			connected = TRUE,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, accessToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return errors.New("no rows affected; account may not exist")
	}
	return nil
}

func (r *socialAccountRepository) SetConnected(ctx context.Context, id int64, connected bool) error {
	query := `
		UPDATE social_accounts
		SET connected = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, connected)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
