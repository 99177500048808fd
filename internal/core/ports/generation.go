package ports

import (
	"context"
	"io"
)

// ComposedStory is the output of the text/image generation pipeline.
type ComposedStory struct {
	Title    string
	Content  string
	ImageURL string
}

// StoryGenerator runs the full text pipeline against the generation
// provider: title from the uploaded photos, an illustration, then the story
// content. Calls may take seconds and must never run inside a store
// transaction.
type StoryGenerator interface {
	ComposeStory(ctx context.Context, language string, imageURLs []string, maxTokens int) (*ComposedStory, error)
}

// SpeechSynthesizer converts story text to an audio stream. The caller owns
// closing the returned reader.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
}

// MediaStore persists generated audio and returns a client-fetchable URL.
type MediaStore interface {
	StoreAudio(ctx context.Context, userID, storyID string, audio io.Reader) (string, error)
}
