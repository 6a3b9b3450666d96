package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/queue"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxImageSize = 5 << 20

var (
	ErrPostNotFound    = errors.New("post doesn't exist")
	ErrAccountNotFound = errors.New("linkedin account doesn't exist")
	ErrPostPublished   = errors.New("published posts cannot be changed")
	ErrNotRetryable    = errors.New("only failed posts can be retried")
	ErrEmptyContent    = invalidf("content cannot be empty")
	ErrMissingAccount  = invalidf("a linkedin account is required to schedule a post")
)

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {},
}

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, image *multipart.FileHeader) (*models.Post, error)
	List(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Update(ctx context.Context, userID int64, pe *transfer.PostEdit) (*models.Post, error)
	Retry(ctx context.Context, userID, postID int64) (*models.Post, error)
	PublishNow(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr    repository.PostRepository
	ar    repository.LinkedInAccountRepository
	media MediaStore
	tasks queue.Enqueuer
	now   func() time.Time
}

func NewPostService(
	pr repository.PostRepository,
	ar repository.LinkedInAccountRepository,
	media MediaStore,
	tasks queue.Enqueuer) PostService {
	return &postService{
		pr:    pr,
		ar:    ar,
		media: media,
		tasks: tasks,
		now:   time.Now,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, image *multipart.FileHeader) (*models.Post, error) {
	if pc == nil {
		err := invalidf("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}

	content := strings.TrimSpace(pc.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	post := &models.Post{
		UserID:  userID,
		Content: content,
		Status:  models.PostStatusDraft,
	}
	if tags := strings.TrimSpace(pc.Hashtags); tags != "" {
		post.Hashtags = &tags
	}

	if pc.AccountID != 0 {
		if err := s.checkAccount(ctx, pc.AccountID, userID); err != nil {
			return nil, err
		}
		post.AccountID = &pc.AccountID
	}

	if pc.ScheduledFor != "" {
		scheduledFor, err := parseSchedule(pc.ScheduledFor)
		if err != nil {
			return nil, err
		}
		if post.AccountID == nil {
			return nil, ErrMissingAccount
		}
		post.ScheduledFor = &scheduledFor
		post.Status = models.PostStatusScheduled
	}

	if image != nil {
		url, err := s.uploadImage(ctx, userID, image)
		if err != nil {
			return nil, err
		}
		post.MediaURL = &url
	}

	id, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = id

	slog.Info("post created", "post_id", id, "user_id", userID, "status", post.Status)
	return post, nil
}

func parseSchedule(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalidf("invalid scheduled_for, expected RFC 3339: %v", err)
	}
	return t.UTC(), nil
}

func (s *postService) checkAccount(ctx context.Context, accountID, userID int64) error {
	ok, err := s.ar.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccountNotFound
	}
	return nil
}

func (s *postService) uploadImage(ctx context.Context, userID int64, image *multipart.FileHeader) (string, error) {
	if image.Size > maxImageSize {
		return "", invalidf("image is larger than %d MB", maxImageSize>>20)
	}

	f, err := image.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	return s.storeImage(ctx, userID, data)
}

func (s *postService) storeImage(ctx context.Context, userID int64, data []byte) (string, error) {
	if len(data) > maxImageSize {
		return "", invalidf("image is larger than %d MB", maxImageSize>>20)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "", invalidf("unsupported file type")
	}
	if _, ok := allowedImageTypes[kind.Extension]; !ok {
		return "", invalidf("file type %s is not allowed", kind.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("posts/%d/%s.%s", userID, id, kind.Extension)

	url, err := s.media.Upload(ctx, key, data, kind.MIME.Value)
	if err != nil {
		return "", fmt.Errorf("error uploading file: %w", err)
	}
	return url, nil
}

func (s *postService) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	if status != "" && !models.ValidPostStatus(status) {
		return nil, invalidf("unknown status %q", status)
	}

	posts, err := s.pr.ListByUserID(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("Error getting posts")
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	return s.ownedPost(ctx, postID, userID)
}

// ownedPost loads a post after checking it belongs to userID.
func (s *postService) ownedPost(ctx context.Context, postID, userID int64) (*models.Post, error) {
	if userID == 0 {
		err := invalidf("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err := invalidf("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	return post, nil
}

func (s *postService) Update(ctx context.Context, userID int64, pe *transfer.PostEdit) (*models.Post, error) {
	post, err := s.ownedPost(ctx, pe.ID, userID)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusPublished {
		return nil, ErrPostPublished
	}

	update := &models.PostUpdate{}

	if pe.Content != nil {
		content := strings.TrimSpace(*pe.Content)
		if content == "" {
			return nil, ErrEmptyContent
		}
		update.Content = &content
	}
	if pe.Hashtags != nil {
		tags := strings.TrimSpace(*pe.Hashtags)
		update.Hashtags = &tags
	}

	accountID := post.AccountID
	if pe.AccountID != nil {
		if err := s.checkAccount(ctx, *pe.AccountID, userID); err != nil {
			return nil, err
		}
		update.AccountID = pe.AccountID
		accountID = pe.AccountID
	}

	if pe.ScheduledFor != nil {
		scheduledFor, err := parseSchedule(*pe.ScheduledFor)
		if err != nil {
			return nil, err
		}
		if accountID == nil {
			return nil, ErrMissingAccount
		}
		status := models.PostStatusScheduled
		update.ScheduledFor = &scheduledFor
		update.Status = &status
		update.ClearErrorMessage = true
	}

	return s.pr.Update(ctx, post.ID, update)
}

// Retry puts a failed post back on the schedule. A post whose time has
// passed goes out with the next sweep.
func (s *postService) Retry(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusFailed {
		return nil, ErrNotRetryable
	}
	if post.AccountID == nil {
		return nil, ErrMissingAccount
	}

	status := models.PostStatusScheduled
	update := &models.PostUpdate{
		Status:            &status,
		ClearErrorMessage: true,
	}
	if post.ScheduledFor == nil {
		now := s.now().UTC()
		update.ScheduledFor = &now
	}

	return s.pr.Update(ctx, post.ID, update)
}

func (s *postService) PublishNow(ctx context.Context, userID, postID int64) error {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.Status == models.PostStatusPublished {
		return ErrPostPublished
	}
	if post.AccountID == nil {
		return ErrMissingAccount
	}

	return queue.EnqueuePublish(s.tasks, queue.PublishPostPayload{
		PostID:   post.ID,
		Revision: post.UpdatedAt.UnixNano(),
	}, 0)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return err
	}

	if err := s.pr.Remove(ctx, post.ID); err != nil {
		return fmt.Errorf("Error removing post")
	}

	return nil
}
