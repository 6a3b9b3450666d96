package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
)

// memStore is an in-memory post and account store that records every write.
type memStore struct {
	mu       sync.Mutex
	posts    map[int64]*models.Post
	accounts map[int64]*models.LinkedInAccount
	events   *[]string

	listErr          error
	updatePostErr    error
	updateAccountErr error
}

func newMemStore(events *[]string) *memStore {
	return &memStore{
		posts:    map[int64]*models.Post{},
		accounts: map[int64]*models.LinkedInAccount{},
		events:   events,
	}
}

func (m *memStore) record(event string) {
	if m.events != nil {
		*m.events = append(*m.events, event)
	}
}

func (m *memStore) addPost(p *models.Post) {
	m.posts[p.ID] = p
}

func (m *memStore) addAccount(a *models.LinkedInAccount) {
	m.accounts[a.ID] = a
}

func (m *memStore) ListScheduled(ctx context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var due []*models.Post
	for _, p := range m.posts {
		if p.Status == models.PostStatusScheduled {
			cp := *p
			due = append(due, &cp)
		}
	}
	sortBySchedule(due)
	return due, nil
}

func sortBySchedule(posts []*models.Post) {
	less := func(a, b *models.Post) bool {
		switch {
		case a.ScheduledFor == nil && b.ScheduledFor == nil:
			return a.ID < b.ID
		case a.ScheduledFor == nil:
			return false
		case b.ScheduledFor == nil:
			return true
		case a.ScheduledFor.Equal(*b.ScheduledFor):
			return a.ID < b.ID
		}
		return a.ScheduledFor.Before(*b.ScheduledFor)
	}
	for i := 1; i < len(posts); i++ {
		for j := i; j > 0 && less(posts[j], posts[j-1]); j-- {
			posts[j], posts[j-1] = posts[j-1], posts[j]
		}
	}
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Update(ctx context.Context, id int64, u *models.PostUpdate) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updatePostErr != nil {
		return nil, m.updatePostErr
	}

	p, ok := m.posts[id]
	if !ok {
		return nil, errors.New("post missing")
	}
	if u.Status != nil {
		p.Status = *u.Status
		m.record("post:" + *u.Status)
	}
	if u.LinkedInPostID != nil {
		p.LinkedInPostID = u.LinkedInPostID
	}
	if u.PublishedAt != nil {
		p.PublishedAt = u.PublishedAt
	}
	if u.ErrorMessage != nil {
		p.ErrorMessage = u.ErrorMessage
	} else if u.ClearErrorMessage {
		p.ErrorMessage = nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) accountStore() *memAccounts {
	return &memAccounts{m}
}

// memAccounts exposes the account half of memStore under the names the
// sweeper expects.
type memAccounts struct{ m *memStore }

func (a *memAccounts) GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	acc, ok := a.m.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (a *memAccounts) UpdateTokens(ctx context.Context, id int64, u *models.AccountTokenUpdate) (*models.LinkedInAccount, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	if a.m.updateAccountErr != nil {
		return nil, a.m.updateAccountErr
	}

	acc, ok := a.m.accounts[id]
	if !ok {
		return nil, errors.New("account missing")
	}
	acc.AccessToken = u.AccessToken
	if u.RefreshToken != "" {
		acc.RefreshToken = u.RefreshToken
	}
	if u.TokenExpiresAt != nil {
		acc.TokenExpiresAt = u.TokenExpiresAt
	}
	a.m.record("account:tokens")

	cp := *acc
	return &cp, nil
}

func (a *memAccounts) ListExpiring(ctx context.Context, before time.Time) ([]*models.LinkedInAccount, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	var out []*models.LinkedInAccount
	for _, acc := range a.m.accounts {
		if acc.RefreshToken != "" && acc.TokenExpiresAt != nil && acc.TokenExpiresAt.Before(before) {
			cp := *acc
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeLinkedIn struct {
	mu     sync.Mutex
	events *[]string

	RefreshFunc func(ctx context.Context, refreshToken string) (*linkedin.Token, error)
	PublishFunc func(ctx context.Context, accessToken string, share linkedin.Share) (string, error)

	published []linkedin.Share
	tokens    []string
}

func (f *fakeLinkedIn) RefreshToken(ctx context.Context, refreshToken string) (*linkedin.Token, error) {
	f.mu.Lock()
	if f.events != nil {
		*f.events = append(*f.events, "refresh")
	}
	f.mu.Unlock()

	if f.RefreshFunc == nil {
		return nil, errors.New("refresh not expected")
	}
	return f.RefreshFunc(ctx, refreshToken)
}

func (f *fakeLinkedIn) Publish(ctx context.Context, accessToken string, share linkedin.Share) (string, error) {
	f.mu.Lock()
	if f.events != nil {
		*f.events = append(*f.events, "publish")
	}
	f.published = append(f.published, share)
	f.tokens = append(f.tokens, accessToken)
	f.mu.Unlock()

	if f.PublishFunc == nil {
		return "urn:li:share:default", nil
	}
	return f.PublishFunc(ctx, accessToken, share)
}

func ptr[T any](v T) *T {
	return &v
}
