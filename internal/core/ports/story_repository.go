package ports

import (
	"context"

	"github.com/zentale/story-system/internal/core/domain"
)

// StoryRepository persists story artifacts.
type StoryRepository interface {
	// Save inserts or replaces the artifact under its ID.
	Save(ctx context.Context, story *domain.Story) error

	// GetByID returns the artifact or domain.ErrStoryNotFound.
	GetByID(ctx context.Context, storyID string) (*domain.Story, error)
}
