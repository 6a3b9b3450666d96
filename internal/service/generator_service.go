package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/openrouter"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

type Generator interface {
	Generate(ctx context.Context, gr openrouter.GenerationRequest) (*openrouter.GeneratedPost, error)
}

type GeneratorService interface {
	GeneratePost(ctx context.Context, userID int64, pg *transfer.PostGeneration) (*models.Post, error)
}

type generatorService struct {
	gen Generator
	pr  repository.PostRepository
}

func NewGeneratorService(gen Generator, pr repository.PostRepository) GeneratorService {
	return &generatorService{gen: gen, pr: pr}
}

// GeneratePost writes a post from the prompt and keeps it as a draft.
func (s *generatorService) GeneratePost(ctx context.Context, userID int64, pg *transfer.PostGeneration) (*models.Post, error) {
	prompt := strings.TrimSpace(pg.Prompt)
	if prompt == "" {
		return nil, invalidf("prompt cannot be empty")
	}

	generated, err := s.gen.Generate(ctx, openrouter.GenerationRequest{
		Prompt:          prompt,
		Tone:            pg.Tone,
		Length:          pg.Length,
		IncludeHashtags: pg.IncludeHashtags,
	})
	if err != nil {
		slog.Warn("post generation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("unable to generate post: %w", err)
	}

	post := &models.Post{
		UserID:  userID,
		Content: generated.Content,
		Prompt:  &prompt,
		Status:  models.PostStatusDraft,
	}
	if pg.Tone != "" {
		post.Tone = &pg.Tone
	}
	if pg.Length != "" {
		post.Length = &pg.Length
	}
	if generated.Hashtags != "" {
		post.Hashtags = &generated.Hashtags
	}

	id, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error saving generated post: %w", err)
	}
	post.ID = id

	return post, nil
}
