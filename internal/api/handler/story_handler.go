package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

// StoryHandler handles story generation requests.
type StoryHandler struct {
	service ports.StoryService
}

// NewStoryHandler creates a StoryHandler backed by the given service.
func NewStoryHandler(service ports.StoryService) *StoryHandler {
	return &StoryHandler{service: service}
}

// Generate handles POST /v1/generate-story — runs the text pipeline.
//
// @Summary      Generate a story from uploaded photos
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateStoryRequest  true  "Story request"
// @Success      200   {object}  storyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/generate-story [post]
func (h *StoryHandler) Generate(c echo.Context) error {
	return h.generate(c, false)
}

// Create handles POST /v1/create-story — same pipeline, but the artifact ID
// is always minted server-side.
//
// @Summary      Generate a story with a server-assigned ID
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateStoryRequest  true  "Story request"
// @Success      200   {object}  storyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/create-story [post]
func (h *StoryHandler) Create(c echo.Context) error {
	return h.generate(c, true)
}

func (h *StoryHandler) generate(c echo.Context, mintID bool) error {
	userID, sub, err := ctxEntitlement(c)
	if err != nil {
		return err
	}

	var req generateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	storyID := req.StoryID
	if mintID {
		storyID = uuid.NewString()
	}

	story, err := h.service.GenerateStory(c.Request().Context(), ports.GenerateStoryInput{
		UserID:      userID,
		StoryID:     storyID,
		Language:    req.Language,
		ImageURLs:   req.ImageURLs,
		Entitlement: sub,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toStoryResponse(story))
}

// GenerateAudio handles POST /v1/generate-audio-story — narrates an existing
// story and attaches the audio URL.
//
// @Summary      Generate narration for an existing story
// @Tags         stories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateAudioRequest  true  "Audio request"
// @Success      200   {object}  storyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/generate-audio-story [post]
func (h *StoryHandler) GenerateAudio(c echo.Context) error {
	userID, sub, err := ctxEntitlement(c)
	if err != nil {
		return err
	}

	var req generateAudioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	story, err := h.service.GenerateAudioStory(c.Request().Context(), ports.GenerateAudioInput{
		UserID:      userID,
		StoryID:     req.StoryID,
		Entitlement: sub,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toStoryResponse(story))
}

// toStoryResponse maps the domain artifact to the HTTP envelope.
func toStoryResponse(s *domain.Story) storyResponse {
	return storyResponse{
		ID:       s.ID,
		Title:    s.Title,
		Content:  s.Content,
		ImageURL: s.ImageURL,
		AudioURL: s.AudioURL,
		Language: s.Language,
		Status:   string(s.Status),
	}
}
