package service

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/openrouter"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

type fakePostRepo struct {
	posts   map[int64]*models.Post
	nextID  int64
	updates []*models.PostUpdate
	removed []int64
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[int64]*models.Post{}, nextID: 100}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.nextID++
	cp := *post
	cp.ID = r.nextID
	r.posts[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListScheduled(ctx context.Context) ([]*models.Post, error) {
	return nil, errors.New("not used")
}

func (r *fakePostRepo) Update(ctx context.Context, id int64, u *models.PostUpdate) (*models.Post, error) {
	r.updates = append(r.updates, u)
	p := r.posts[id]
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Hashtags != nil {
		p.Hashtags = u.Hashtags
	}
	if u.AccountID != nil {
		p.AccountID = u.AccountID
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.ScheduledFor != nil {
		p.ScheduledFor = u.ScheduledFor
	}
	if u.ErrorMessage != nil {
		p.ErrorMessage = u.ErrorMessage
	} else if u.ClearErrorMessage {
		p.ErrorMessage = nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := r.posts[postID]
	return ok && p.UserID == userID, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	delete(r.posts, id)
	return nil
}

type fakeAccountRepo struct {
	owned    map[int64]int64 // account id -> user id
	upserted []*models.LinkedInAccount
	removed  []int64
}

func (r *fakeAccountRepo) Upsert(ctx context.Context, acc *models.LinkedInAccount) (int64, error) {
	cp := *acc
	r.upserted = append(r.upserted, &cp)
	return int64(len(r.upserted)), nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.LinkedInAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedInAccount, error) {
	var out []*models.LinkedInAccount
	for id, owner := range r.owned {
		if owner == userID {
			out = append(out, &models.LinkedInAccount{ID: id, UserID: owner})
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListExpiring(ctx context.Context, before time.Time) ([]*models.LinkedInAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) UpdateTokens(ctx context.Context, id int64, update *models.AccountTokenUpdate) (*models.LinkedInAccount, error) {
	return nil, errors.New("not used")
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	owner, ok := r.owned[accountID]
	return ok && owner == userID, nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	delete(r.owned, id)
	return nil
}

type fakeMedia struct {
	keys  []string
	types []string
}

func (m *fakeMedia) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	m.keys = append(m.keys, key)
	m.types = append(m.types, contentType)
	return "https://media.example.com/" + key, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	ids   map[string]bool
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var id string
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			id = opt.Value().(string)
		}
	}
	if f.ids[id] {
		return nil, asynq.ErrTaskIDConflict
	}
	if f.ids == nil {
		f.ids = map[string]bool{}
	}
	f.ids[id] = true
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: id}, nil
}

type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, gr openrouter.GenerationRequest) (*openrouter.GeneratedPost, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, gr openrouter.GenerationRequest) (*openrouter.GeneratedPost, error) {
	return f.GenerateFunc(ctx, gr)
}

type fakeLinkedInOAuth struct {
	ExchangeFunc func(ctx context.Context, code string) (*linkedin.Token, error)
	UserInfoFunc func(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error)
	lastState    string
}

func (f *fakeLinkedInOAuth) AuthCodeURL(state string) string {
	f.lastState = state
	return "https://www.linkedin.com/oauth/v2/authorization?state=" + state
}

func (f *fakeLinkedInOAuth) Exchange(ctx context.Context, code string) (*linkedin.Token, error) {
	return f.ExchangeFunc(ctx, code)
}

func (f *fakeLinkedInOAuth) UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	return f.UserInfoFunc(ctx, accessToken)
}

type fakeUserRepo struct {
	users   map[string]*models.User
	created []*models.User
	updated []*models.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (int64, error) {
	r.created = append(r.created, user)
	return 50, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.updated = append(r.updated, user)
	return nil
}

func (r *fakeUserRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeKeyRepo struct {
	keys []*models.ApiKey
}

func (r *fakeKeyRepo) GetByKey(ctx context.Context, apiKey string) (int64, bool, error) {
	for _, k := range r.keys {
		if k.ApiKey == apiKey {
			return k.UserID, true, nil
		}
	}
	return 0, false, nil
}

func (r *fakeKeyRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	var out []*models.ApiKey
	for _, k := range r.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeyRepo) CountByUserID(ctx context.Context, userID int64) (int, error) {
	keys, _ := r.ListByUserID(ctx, userID)
	return len(keys), nil
}

func (r *fakeKeyRepo) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	apiKey.ID = int64(len(r.keys) + 1)
	r.keys = append(r.keys, apiKey)
	return apiKey.ID, nil
}

func (r *fakeKeyRepo) CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error) {
	for _, k := range r.keys {
		if k.ID == keyID && k.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeKeyRepo) Remove(ctx context.Context, id int64) error {
	for i, k := range r.keys {
		if k.ID == id {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
