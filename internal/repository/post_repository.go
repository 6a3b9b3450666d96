package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/linkpost/internal/models"
)

var ErrNotFound = errors.New("record not found")

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	ListScheduled(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, id int64, update *models.PostUpdate) (*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, account_id, content, prompt, tone, length, hashtags, media_url,
	status, linkedin_post_id, scheduled_for, published_at, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.AccountID, &post.Content, &post.Prompt,
		&post.Tone, &post.Length, &post.Hashtags, &post.MediaURL, &post.Status,
		&post.LinkedInPostID, &post.ScheduledFor, &post.PublishedAt, &post.ErrorMessage,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, account_id, content, prompt, tone, length, hashtags, media_url, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.UserID,
		post.AccountID,
		post.Content,
		post.Prompt,
		post.Tone,
		post.Length,
		post.Hashtags,
		post.MediaURL,
		post.Status,
		post.ScheduledFor,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
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

// ListByUserID returns the user's posts, newest first. An empty status lists all of them.
func (r *postRepository) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1`
	args := []any{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	return r.list(ctx, query, args...)
}

// ListScheduled returns every post waiting to be published, earliest first.
// Posts without a scheduled time sort last.
func (r *postRepository) ListScheduled(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 ORDER BY scheduled_for ASC NULLS LAST, id ASC`
	return r.list(ctx, query, models.PostStatusScheduled)
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

// Update applies the non-nil fields of update and returns the stored row.
func (r *postRepository) Update(ctx context.Context, id int64, update *models.PostUpdate) (*models.Post, error) {
	query, args := buildPostUpdate(id, update, time.Now())

	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func buildPostUpdate(id int64, u *models.PostUpdate, now time.Time) (string, []any) {
	var sets []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Content != nil {
		set("content", *u.Content)
	}
	if u.Hashtags != nil {
		set("hashtags", *u.Hashtags)
	}
	if u.AccountID != nil {
		set("account_id", *u.AccountID)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.LinkedInPostID != nil {
		set("linkedin_post_id", *u.LinkedInPostID)
	}
	if u.ScheduledFor != nil {
		set("scheduled_for", *u.ScheduledFor)
	}
	if u.PublishedAt != nil {
		set("published_at", *u.PublishedAt)
	}
	if u.ErrorMessage != nil {
		set("error_message", *u.ErrorMessage)
	} else if u.ClearErrorMessage {
		sets = append(sets, "error_message = NULL")
	}
	set("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), postColumns)

	return query, args
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

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
