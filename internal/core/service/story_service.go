package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zentale/story-system/internal/api/metrics"
	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

// Token budgets for the generation provider. Metered accounts get shorter
// stories than subscribers.
const (
	maxTokensMetered    = 1000
	maxTokensSubscriber = 4096
)

type storyService struct {
	accounts  ports.AccountRepository
	stories   ports.StoryRepository
	generator ports.StoryGenerator
	speech    ports.SpeechSynthesizer
	media     ports.MediaStore
	log       zerolog.Logger
}

// NewStoryService returns a StoryService implementation.
func NewStoryService(
	accounts ports.AccountRepository,
	stories ports.StoryRepository,
	generator ports.StoryGenerator,
	speech ports.SpeechSynthesizer,
	media ports.MediaStore,
	log zerolog.Logger,
) ports.StoryService {
	return &storyService{
		accounts:  accounts,
		stories:   stories,
		generator: generator,
		speech:    speech,
		media:     media,
		log:       log,
	}
}

// GenerateStory runs the text pipeline and persists the artifact. Stories can
// be written in any language; the voice table only constrains narration.
// Credits are debited only after a successful pipeline: a failed generation
// must never cost the user anything. The entitlement snapshot was taken by
// the guard; the balance is not re-read here, so a concurrent request can win
// the last credit. TryDebit resolves that race at write time.
func (s *storyService) GenerateStory(ctx context.Context, in ports.GenerateStoryInput) (*domain.Story, error) {
	storyID := in.StoryID
	if storyID == "" {
		storyID = uuid.NewString()
	}

	start := time.Now()
	maxTokens := maxTokensSubscriber
	if in.Entitlement.Metered() {
		maxTokens = maxTokensMetered
	}

	composed, err := s.generator.ComposeStory(ctx, in.Language, in.ImageURLs, maxTokens)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("text", "error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("user_id", in.UserID).Str("story_id", storyID).Msg("story generation failed")

		failed := &domain.Story{
			ID:          storyID,
			UserID:      in.UserID,
			Language:    in.Language,
			Status:      domain.StoryStatusError,
			ErrorReason: err.Error(),
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		if saveErr := s.stories.Save(ctx, failed); saveErr != nil {
			s.log.Warn().Err(saveErr).Str("story_id", storyID).Msg("failed to persist error artifact")
		}
		return nil, fmt.Errorf("generate story: %w", err)
	}

	now := time.Now().UTC()
	story := &domain.Story{
		ID:        storyID,
		UserID:    in.UserID,
		Language:  in.Language,
		Title:     composed.Title,
		Content:   composed.Content,
		ImageURL:  composed.ImageURL,
		Status:    domain.StoryStatusSuccess,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stories.Save(ctx, story); err != nil {
		metrics.GenerationDuration.WithLabelValues("text", "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("generate story: save: %w", err)
	}

	s.debitAfterSuccess(ctx, in.UserID, storyID, domain.PoolText, in.Entitlement)

	metrics.GenerationDuration.WithLabelValues("text", "success").Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("user_id", in.UserID).
		Str("story_id", storyID).
		Str("language", in.Language).
		Msg("story generated")

	return story, nil
}

// GenerateAudioStory synthesizes narration for an existing story and attaches
// the audio URL to the artifact. The text artifact stays intact when any
// audio step fails.
func (s *storyService) GenerateAudioStory(ctx context.Context, in ports.GenerateAudioInput) (*domain.Story, error) {
	story, err := s.stories.GetByID(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}
	if story.UserID != in.UserID {
		return nil, domain.ErrStoryNotFound
	}
	if story.Status != domain.StoryStatusSuccess || story.Content == "" {
		return nil, fmt.Errorf("generate audio: story %s has no content", in.StoryID)
	}

	voiceID, err := domain.VoiceForLanguage(story.Language)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	audio, err := s.speech.Synthesize(ctx, story.Content, voiceID)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("audio", "error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("story_id", in.StoryID).Msg("audio synthesis failed")
		return nil, fmt.Errorf("generate audio: %w", err)
	}
	defer audio.Close()

	audioURL, err := s.media.StoreAudio(ctx, in.UserID, in.StoryID, audio)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("audio", "error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("story_id", in.StoryID).Msg("audio upload failed")
		return nil, fmt.Errorf("generate audio: store: %w", err)
	}

	story.AudioURL = audioURL
	story.UpdatedAt = time.Now().UTC()
	if err := s.stories.Save(ctx, story); err != nil {
		metrics.GenerationDuration.WithLabelValues("audio", "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("generate audio: save: %w", err)
	}

	s.debitAfterSuccess(ctx, in.UserID, in.StoryID, domain.PoolAudio, in.Entitlement)

	metrics.GenerationDuration.WithLabelValues("audio", "success").Observe(time.Since(start).Seconds())
	s.log.Info().Str("user_id", in.UserID).Str("story_id", in.StoryID).Msg("audio story generated")

	return story, nil
}

// debitAfterSuccess settles the credit cost of a completed generation. The
// snapshot taken at authorization time decides whether the action is metered
// at all: a subscriber whose plan expires mid-pipeline is not charged for
// work that was authorized as unmetered. A drained balance at write time
// means a concurrent request won the race. Neither case rolls the artifact
// back; the user keeps what was generated. The work is already done, so the
// debit applies even when the caller disconnected.
func (s *storyService) debitAfterSuccess(ctx context.Context, userID, storyID string, pool domain.CreditPool, snapshot domain.Subscription) {
	if !snapshot.Metered() {
		metrics.DebitsSkippedTotal.WithLabelValues(string(pool)).Inc()
		return
	}

	outcome, err := s.accounts.TryDebit(context.WithoutCancel(ctx), userID, pool, 1)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			metrics.DebitsLostRaceTotal.WithLabelValues(string(pool)).Inc()
			s.log.Warn().
				Str("user_id", userID).
				Str("story_id", storyID).
				Str("pool", string(pool)).
				Msg("balance drained before debit, artifact kept")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Str("pool", string(pool)).Msg("debit failed")
		return
	}

	if !outcome.Debited {
		metrics.DebitsSkippedTotal.WithLabelValues(string(pool)).Inc()
		return
	}

	metrics.CreditsDebitedTotal.WithLabelValues(string(pool)).Inc()
	s.log.Debug().
		Str("user_id", userID).
		Str("pool", string(pool)).
		Int("remaining", outcome.Remaining).
		Msg("credit debited")
}
