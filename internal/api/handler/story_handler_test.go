package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/api/middleware"
	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

type stubStoryService struct {
	lastInput ports.GenerateStoryInput
	err       error
}

func (s *stubStoryService) GenerateStory(_ context.Context, in ports.GenerateStoryInput) (*domain.Story, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Story{
		ID:       in.StoryID,
		UserID:   in.UserID,
		Language: in.Language,
		Title:    "T",
		Content:  "C",
		Status:   domain.StoryStatusSuccess,
	}, nil
}

func (s *stubStoryService) GenerateAudioStory(_ context.Context, in ports.GenerateAudioInput) (*domain.Story, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Story{ID: in.StoryID, UserID: in.UserID, AudioURL: "https://media.example/a.mp3", Status: domain.StoryStatusSuccess}, nil
}

func storyContext(t *testing.T, body string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserIDKey, "u1")
	c.Set(middleware.EntitlementKey, domain.Subscription{Status: domain.StatusExpired, TextCredits: 2})
	return e, c, rec
}

func TestStoryHandler_Generate_PassesSnapshotAndClientID(t *testing.T) {
	svc := &stubStoryService{}
	body := `{"language_of_the_story":"English","image_url_list":["https://img.example/p.jpg"],"story_id":"client-id-1"}`
	e, c, rec := storyContext(t, body)

	if err := NewStoryHandler(svc).Generate(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.StoryID != "client-id-1" {
		t.Errorf("expected client story ID honored, got: %q", svc.lastInput.StoryID)
	}
	if svc.lastInput.UserID != "u1" {
		t.Errorf("expected user from context, got: %q", svc.lastInput.UserID)
	}
	if svc.lastInput.Entitlement.TextCredits != 2 {
		t.Errorf("expected snapshot forwarded, got: %+v", svc.lastInput.Entitlement)
	}
}

func TestStoryHandler_Create_MintsServerID(t *testing.T) {
	svc := &stubStoryService{}
	body := `{"language_of_the_story":"English","image_url_list":["https://img.example/p.jpg"],"story_id":"client-id-1"}`
	e, c, rec := storyContext(t, body)

	if err := NewStoryHandler(svc).Create(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastInput.StoryID == "" || svc.lastInput.StoryID == "client-id-1" {
		t.Errorf("expected server-minted ID, got: %q", svc.lastInput.StoryID)
	}
}

func TestStoryHandler_Generate_RejectsEmptyImages(t *testing.T) {
	svc := &stubStoryService{}
	body := `{"language_of_the_story":"English","image_url_list":[]}`
	e, c, rec := storyContext(t, body)

	if err := NewStoryHandler(svc).Generate(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStoryHandler_Generate_MissingEntitlementSnapshot(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserIDKey, "u1") // guard did not run

	if err := NewStoryHandler(&stubStoryService{}).Generate(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
