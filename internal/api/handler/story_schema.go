package handler

type generateStoryRequest struct {
	Language  string   `json:"language_of_the_story" validate:"required"`
	ImageURLs []string `json:"image_url_list"        validate:"required,min=1,dive,url"`
	// StoryID is honored on /v1/generate-story; /v1/create-story ignores it
	// and always mints a server-side ID.
	StoryID string `json:"story_id"`
}

type generateAudioRequest struct {
	StoryID string `json:"story_id" validate:"required"`
}

type storyResponse struct {
	ID       string `json:"story_id"`
	Title    string `json:"story_title,omitempty"`
	Content  string `json:"story_content,omitempty"`
	ImageURL string `json:"story_image,omitempty"`
	AudioURL string `json:"story_audio_url,omitempty"`
	Language string `json:"story_language"`
	Status   string `json:"status"`
}

type billingEventRequest struct {
	Event billingEventPayload `json:"event" validate:"required"`
}

type billingEventPayload struct {
	ID        string `json:"id"`
	AppUserID string `json:"app_user_id" validate:"required"`
	ProductID string `json:"product_id"`
	Type      string `json:"type"        validate:"required"`
}

type provisionAccountRequest struct {
	Email       string `json:"email"        validate:"omitempty,email"`
	DisplayName string `json:"display_name"`
}

type errorResponse struct {
	Error string `json:"error"`
}
