package ports

import (
	"context"

	"github.com/zentale/story-system/internal/core/domain"
)

// GenerateStoryInput carries an authorized text-story request. Entitlement is
// the snapshot taken by the guard; the orchestrator acts on it without
// re-reading the account mid-flow.
type GenerateStoryInput struct {
	UserID string
	// StoryID is the client-supplied artifact ID; when empty the service
	// generates one.
	StoryID     string
	Language    string
	ImageURLs   []string
	Entitlement domain.Subscription
}

// GenerateAudioInput carries an authorized audio-story request for an
// existing story artifact.
type GenerateAudioInput struct {
	UserID      string
	StoryID     string
	Entitlement domain.Subscription
}

// StoryService orchestrates the generation pipelines and debits the credit
// ledger exactly once per successful billable action.
type StoryService interface {
	GenerateStory(ctx context.Context, in GenerateStoryInput) (*domain.Story, error)
	GenerateAudioStory(ctx context.Context, in GenerateAudioInput) (*domain.Story, error)
}
