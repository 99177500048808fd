package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zentale/story-system/internal/api/handler"
	"github.com/zentale/story-system/internal/api/middleware"
	"github.com/zentale/story-system/internal/core/ports"
)

// RouterDeps carries the wired services the HTTP surface is built from.
type RouterDeps struct {
	Accounts ports.AccountService
	Stories  ports.StoryService
	Billing  ports.BillingService
	Verifier ports.TokenVerifier

	// WebhookToken authenticates billing webhook deliveries.
	WebhookToken string

	// Mongo and Redis are only used by the readiness probe.
	Mongo *mongo.Database
	Redis *redis.Client

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("story"))

	// --- Handlers ---
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	storyHandler := handler.NewStoryHandler(deps.Stories)
	billingHandler := handler.NewBillingHandler(deps.Billing)

	authMW := middleware.Auth(deps.Verifier)
	textMW := middleware.RequireTextEntitlement(deps.Accounts)
	audioMW := middleware.RequireAudioEntitlement(deps.Accounts)

	// --- Account routes ---
	e.POST("/v1/accounts", accountHandler.Initialize, authMW)
	e.GET("/v1/accounts/me", accountHandler.Me, authMW)

	// --- Story routes (auth + entitlement guard) ---
	e.POST("/v1/generate-story", storyHandler.Generate, authMW, textMW)
	e.POST("/v1/create-story", storyHandler.Create, authMW, textMW)
	e.POST("/v1/generate-audio-story", storyHandler.GenerateAudio, authMW, audioMW)

	// --- Billing webhooks (shared-token auth, no user identity) ---
	webhookMW := middleware.WebhookAuth(deps.WebhookToken)
	e.POST("/v1/update-subscription", billingHandler.UpdateSubscription, webhookMW)
	e.POST("/v1/purchase-created", billingHandler.PurchaseCreated, webhookMW)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
