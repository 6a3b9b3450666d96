package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
)

var (
	ErrSweepInProgress  = errors.New("a scheduled post sweep is already running")
	ErrAlreadyPublished = errors.New("post is already published")
)

var errNoAccount = &linkedin.NotFoundError{Resource: "associated account"}

const defaultCallTimeout = 30 * time.Second

type PostStore interface {
	ListScheduled(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Update(ctx context.Context, id int64, update *models.PostUpdate) (*models.Post, error)
}

type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error)
	UpdateTokens(ctx context.Context, id int64, update *models.AccountTokenUpdate) (*models.LinkedInAccount, error)
}

type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*linkedin.Token, error)
}

type Publisher interface {
	Publish(ctx context.Context, accessToken string, share linkedin.Share) (string, error)
}

type SweepResult struct {
	Processed int
	Failed    int
	Total     int
}

// Sweeper publishes scheduled posts whose time has come. Only one sweep or
// single-post publish runs at a time.
type Sweeper struct {
	posts       PostStore
	accounts    AccountStore
	refresher   TokenRefresher
	publisher   Publisher
	callTimeout time.Duration
	locks       *AccountLocks

	mu sync.Mutex
}

func NewSweeper(posts PostStore, accounts AccountStore, refresher TokenRefresher, publisher Publisher, locks *AccountLocks, callTimeout time.Duration) *Sweeper {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &Sweeper{
		posts:       posts,
		accounts:    accounts,
		refresher:   refresher,
		publisher:   publisher,
		callTimeout: callTimeout,
		locks:       locks,
	}
}

// Sweep processes every scheduled post due at now. Failures of individual
// posts are recorded on the post and counted, never returned. The returned
// error is non-nil only when the batch itself could not be completed.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	if !s.mu.TryLock() {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.mu.Unlock()

	posts, err := s.posts.ListScheduled(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("fetch scheduled posts: %w", err)
	}

	result := SweepResult{Total: len(posts)}

	for _, post := range posts {
		if post.ScheduledFor == nil || post.ScheduledFor.After(now) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sweep interrupted: %w", err)
		}

		if err := s.publishPost(ctx, post, now); err != nil {
			result.Failed++
			continue
		}
		result.Processed++
	}

	slog.Info("scheduled post sweep finished",
		"processed", result.Processed,
		"failed", result.Failed,
		"total", result.Total,
	)

	return result, nil
}

// PublishNow runs the publish pipeline for a single post regardless of its
// scheduled time. It waits for a running sweep to finish first.
func (s *Sweeper) PublishNow(ctx context.Context, postID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("load post %d: %w", postID, err)
	}
	if post == nil {
		return &linkedin.NotFoundError{Resource: "post", ID: postID}
	}
	if post.Status == models.PostStatusPublished {
		return ErrAlreadyPublished
	}

	return s.publishPost(ctx, post, now)
}

// publishPost delivers one post and records the outcome on it.
func (s *Sweeper) publishPost(ctx context.Context, post *models.Post, now time.Time) error {
	externalID, err := s.deliver(ctx, post, now)

	// The post has left the provider's hands at this point; record the
	// outcome even if the caller's context is going away.
	recordCtx := context.WithoutCancel(ctx)

	if err != nil {
		s.markFailed(recordCtx, post, err)
		return err
	}

	status := models.PostStatusPublished
	_, updateErr := s.posts.Update(recordCtx, post.ID, &models.PostUpdate{
		Status:            &status,
		LinkedInPostID:    &externalID,
		PublishedAt:       &now,
		ClearErrorMessage: true,
	})
	if updateErr != nil {
		slog.Error("post published but status update failed",
			"post_id", post.ID,
			"linkedin_post_id", externalID,
			"error", updateErr,
		)
		return fmt.Errorf("record published post %d: %w", post.ID, updateErr)
	}

	slog.Info("post published", "post_id", post.ID, "linkedin_post_id", externalID)
	return nil
}

func (s *Sweeper) deliver(ctx context.Context, post *models.Post, now time.Time) (string, error) {
	if post.AccountID == nil {
		return "", errNoAccount
	}

	acc, err := s.accounts.GetByID(ctx, *post.AccountID)
	if err != nil {
		return "", fmt.Errorf("load account %d: %w", *post.AccountID, err)
	}
	if acc == nil {
		return "", &linkedin.NotFoundError{Resource: "account", ID: *post.AccountID}
	}

	accessToken := acc.AccessToken
	if acc.TokenExpired(now) {
		accessToken, err = s.refresh(ctx, acc, now)
		if err != nil {
			return "", err
		}
	}

	share := linkedin.Share{
		Author: linkedin.AuthorURN(acc),
		Text:   post.Text(),
	}
	if post.MediaURL != nil {
		share.MediaURL = *post.MediaURL
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.publisher.Publish(callCtx, accessToken, share)
}

// refresh exchanges the account's refresh token and stores the result before
// returning the new access token. The account is reloaded under its lock in
// case the refresh job renewed it meanwhile.
func (s *Sweeper) refresh(ctx context.Context, acc *models.LinkedInAccount, now time.Time) (string, error) {
	lock := s.locks.get(acc.ID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.accounts.GetByID(ctx, acc.ID)
	if err != nil {
		return "", fmt.Errorf("reload account %d: %w", acc.ID, err)
	}
	if current == nil {
		return "", &linkedin.NotFoundError{Resource: "account", ID: acc.ID}
	}
	if !current.TokenExpired(now) {
		return current.AccessToken, nil
	}
	acc = current

	if acc.RefreshToken == "" {
		return "", linkedin.ErrNoRefreshToken
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	tok, err := s.refresher.RefreshToken(callCtx, acc.RefreshToken)
	if err != nil {
		return "", err
	}

	update := tokenUpdate(tok, now)

	if _, err := s.accounts.UpdateTokens(ctx, acc.ID, update); err != nil {
		return "", fmt.Errorf("store refreshed token for account %d: %w", acc.ID, err)
	}

	slog.Info("linkedin token refreshed", "account_id", acc.ID)
	return tok.AccessToken, nil
}

func (s *Sweeper) markFailed(ctx context.Context, post *models.Post, cause error) {
	msg := cause.Error()
	if msg == "" {
		msg = "unknown error"
	}

	slog.Warn("post publish failed",
		"post_id", post.ID,
		"kind", linkedin.KindOf(cause).String(),
		"error", msg,
	)

	status := models.PostStatusFailed
	_, err := s.posts.Update(ctx, post.ID, &models.PostUpdate{
		Status:       &status,
		ErrorMessage: &msg,
	})
	if err != nil {
		slog.Error("unable to record failed post", "post_id", post.ID, "error", err)
	}
}
