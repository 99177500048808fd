package domain

import (
	"errors"
	"time"
)

// StoryStatus is the terminal outcome of a generation attempt.
type StoryStatus string

const (
	StoryStatusSuccess StoryStatus = "success"
	StoryStatusError   StoryStatus = "error"
)

var ErrStoryNotFound = errors.New("story not found")
var ErrUnsupportedLanguage = errors.New("unsupported story language")

// Story is the artifact produced by one billable generation action. Failed
// pipelines persist a record too, so the caller can always fetch an outcome.
type Story struct {
	ID          string      `json:"id" bson:"_id"`
	UserID      string      `json:"user_id" bson:"user_id"`
	Language    string      `json:"language" bson:"language"`
	Title       string      `json:"title,omitempty" bson:"title,omitempty"`
	Content     string      `json:"content,omitempty" bson:"content,omitempty"`
	ImageURL    string      `json:"image_url,omitempty" bson:"image_url,omitempty"`
	AudioURL    string      `json:"audio_url,omitempty" bson:"audio_url,omitempty"`
	Status      StoryStatus `json:"status" bson:"status"`
	ErrorReason string      `json:"error_reason,omitempty" bson:"error_reason,omitempty"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// voiceTable maps story languages to text-to-speech voice IDs.
var voiceTable = map[string]string{
	"English":  "SoB87aL6OF4PNV53glOc",
	"Spanish":  "8ftlfIEYnEkYY6iLanUO",
	"Romanian": "3z9q8Y7plHbvhDZehEII",
}

// VoiceForLanguage resolves the synthesis voice for a story language.
func VoiceForLanguage(language string) (string, error) {
	voiceID, ok := voiceTable[language]
	if !ok {
		return "", ErrUnsupportedLanguage
	}
	return voiceID, nil
}
