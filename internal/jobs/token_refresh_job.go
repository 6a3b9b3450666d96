package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
)

const (
	refreshWindow    = 30 * time.Minute
	concurrencyLimit = 10
)

type ExpiringAccountStore interface {
	GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.LinkedInAccount, error)
	UpdateTokens(ctx context.Context, id int64, update *models.AccountTokenUpdate) (*models.LinkedInAccount, error)
}

// TokenRefreshJob renews LinkedIn tokens shortly before they expire so the
// sweep rarely has to refresh inline.
type TokenRefreshJob struct {
	accounts    ExpiringAccountStore
	refresher   TokenRefresher
	callTimeout time.Duration
	locks       *AccountLocks
	now         func() time.Time
}

func NewTokenRefreshJob(accounts ExpiringAccountStore, refresher TokenRefresher, locks *AccountLocks, callTimeout time.Duration) *TokenRefreshJob {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &TokenRefreshJob{
		accounts:    accounts,
		refresher:   refresher,
		callTimeout: callTimeout,
		locks:       locks,
		now:         time.Now,
	}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()
	currentTime := j.now()

	before := currentTime.Add(refreshWindow)
	accounts, err := j.accounts.ListExpiring(ctx, before)
	if err != nil {
		slog.Error("unable to list expiring linkedin accounts", "error", err)
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.LinkedInAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refreshAccount(ctx, acc, before, currentTime); err != nil {
				slog.Warn("unable to refresh linkedin token", "account_id", acc.ID, "error", err)
			}
		}(acc)
	}

	wg.Wait()
}

// refreshAccount skips accounts a sweep is refreshing right now, and accounts
// whose token was renewed after they were listed.
func (j *TokenRefreshJob) refreshAccount(ctx context.Context, acc *models.LinkedInAccount, before, now time.Time) error {
	lock := j.locks.get(acc.ID)
	if !lock.TryLock() {
		slog.Debug("token refresh already in progress", "account_id", acc.ID)
		return nil
	}
	defer lock.Unlock()

	current, err := j.accounts.GetByID(ctx, acc.ID)
	if err != nil {
		return err
	}
	if current == nil || current.RefreshToken == "" ||
		current.TokenExpiresAt == nil || !current.TokenExpiresAt.Before(before) {
		return nil
	}
	acc = current

	callCtx, cancel := context.WithTimeout(ctx, j.callTimeout)
	defer cancel()

	tok, err := j.refresher.RefreshToken(callCtx, acc.RefreshToken)
	if err != nil {
		return err
	}

	update := tokenUpdate(tok, now)

	_, err = j.accounts.UpdateTokens(ctx, acc.ID, update)
	return err
}

// tokenUpdate converts a refresh response into the columns stored on the
// account. The new expiry is counted from now. Without expires_in the expiry
// is left nil, which keeps the stored one.
func tokenUpdate(tok *linkedin.Token, now time.Time) *models.AccountTokenUpdate {
	update := &models.AccountTokenUpdate{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if tok.ExpiresIn > 0 {
		expiry := now.Add(time.Duration(tok.ExpiresIn) * time.Second)
		update.TokenExpiresAt = &expiry
	}
	return update
}
