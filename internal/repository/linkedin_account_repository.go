package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/linkpost/internal/models"
)

// TokenSealer encrypts credentials before they reach the database.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(encoded string) (string, error)
}

type LinkedInAccountRepository interface {
	Upsert(ctx context.Context, acc *models.LinkedInAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedInAccount, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.LinkedInAccount, error)
	UpdateTokens(ctx context.Context, id int64, update *models.AccountTokenUpdate) (*models.LinkedInAccount, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type linkedInAccountRepository struct {
	db     *sql.DB
	cipher TokenSealer
}

func NewLinkedInAccountRepository(db *sql.DB, cipher TokenSealer) LinkedInAccountRepository {
	return &linkedInAccountRepository{db: db, cipher: cipher}
}

const accountColumns = `id, user_id, linkedin_id, name, account_type, profile_picture_url, access_token,
	refresh_token, token_expires_at, follower_count, is_active, created_at, updated_at`

func (r *linkedInAccountRepository) scan(row rowScanner) (*models.LinkedInAccount, error) {
	var acc models.LinkedInAccount
	err := row.Scan(&acc.ID, &acc.UserID, &acc.LinkedInID, &acc.Name, &acc.AccountType,
		&acc.ProfilePicture, &acc.AccessToken, &acc.RefreshToken, &acc.TokenExpiresAt,
		&acc.FollowerCount, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if acc.AccessToken, err = r.cipher.Open(acc.AccessToken); err != nil {
		return nil, fmt.Errorf("decrypt access token for account %d: %w", acc.ID, err)
	}
	if acc.RefreshToken, err = r.cipher.Open(acc.RefreshToken); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for account %d: %w", acc.ID, err)
	}

	return &acc, nil
}

// Upsert stores a freshly connected account. Connecting the same LinkedIn
// identity again replaces its profile and credentials.
func (r *linkedInAccountRepository) Upsert(ctx context.Context, acc *models.LinkedInAccount) (int64, error) {
	accessToken, err := r.cipher.Seal(acc.AccessToken)
	if err != nil {
		return 0, err
	}
	refreshToken, err := r.cipher.Seal(acc.RefreshToken)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO linkedin_accounts (
			user_id,
			linkedin_id,
			name,
			account_type,
			profile_picture_url,
			access_token,
			refresh_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, linkedin_id) DO UPDATE SET
			name = EXCLUDED.name,
			profile_picture_url = EXCLUDED.profile_picture_url,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), linkedin_accounts.refresh_token),
			token_expires_at = EXCLUDED.token_expires_at,
			is_active = TRUE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		acc.UserID,
		acc.LinkedInID,
		acc.Name,
		acc.AccountType,
		acc.ProfilePicture,
		accessToken,
		refreshToken,
		acc.TokenExpiresAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *linkedInAccountRepository) GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linkedin_accounts WHERE id = $1`

	acc, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return acc, nil
}

func (r *linkedInAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedInAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linkedin_accounts WHERE user_id = $1 ORDER BY created_at`
	return r.list(ctx, query, userID)
}

// ListExpiring returns active accounts holding a refresh token whose access
// token expires before the given time.
func (r *linkedInAccountRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.LinkedInAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linkedin_accounts
		WHERE is_active
		AND refresh_token <> ''
		AND token_expires_at IS NOT NULL
		AND token_expires_at < $1
		ORDER BY token_expires_at`
	return r.list(ctx, query, before)
}

func (r *linkedInAccountRepository) list(ctx context.Context, query string, args ...any) ([]*models.LinkedInAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.LinkedInAccount
	for rows.Next() {
		acc, err := r.scan(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

// An empty refresh token or a nil expiry keeps the stored value.
const updateTokensQuery = `
	UPDATE linkedin_accounts
	SET
		access_token = $2,
		refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
		token_expires_at = COALESCE($4::timestamptz, token_expires_at),
		updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING ` + accountColumns

// UpdateTokens persists refreshed credentials and returns the stored account.
func (r *linkedInAccountRepository) UpdateTokens(ctx context.Context, id int64, update *models.AccountTokenUpdate) (*models.LinkedInAccount, error) {
	accessToken, err := r.cipher.Seal(update.AccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, err := r.cipher.Seal(update.RefreshToken)
	if err != nil {
		return nil, err
	}

	acc, err := r.scan(r.db.QueryRowContext(ctx, updateTokensQuery, id, accessToken, refreshToken, update.TokenExpiresAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("linkedin account %d: %w", id, ErrNotFound)
		}
		slog.Info(err.Error())
		return nil, err
	}

	return acc, nil
}

func (r *linkedInAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := "SELECT 1 FROM linkedin_accounts WHERE id = $1 AND user_id = $2"

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

func (r *linkedInAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM linkedin_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
