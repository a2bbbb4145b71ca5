package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/faceverify/faceverify/internal/api/docs"
	"github.com/faceverify/faceverify/internal/api/handler"
	"github.com/faceverify/faceverify/internal/api/middleware"
	"github.com/faceverify/faceverify/internal/imageutil"
	swagger "github.com/go-swagno/swagno-fiber/swagger"
)

// multipartOverhead leaves room for form boundaries and headers around two images
const multipartOverhead = 1024 * 1024

// VerificationService is what the HTTP layer needs from the similarity service
type VerificationService interface {
	handler.Verifier
	handler.ModelStatus
}

type Dependencies struct {
	Service VerificationService
	// RateLimitMax enables the per-IP limiter on /verify_faces when > 0
	RateLimitMax int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "Face Verification API",
		BodyLimit:             2*imageutil.MaxImageSize + multipartOverhead,
		DisableStartupMessage: true,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	healthHandler := handler.NewHealthHandler(r.deps.Service)
	r.app.Get("/", healthHandler.Root)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	verifyHandler := handler.NewVerifyHandler(r.deps.Service)

	if r.deps.RateLimitMax > 0 {
		cfg := middleware.DefaultRateLimiterConfig()
		cfg.Max = r.deps.RateLimitMax
		r.rateLimiter = middleware.NewRateLimiter(cfg)
		r.app.Post("/verify_faces", r.rateLimiter.Handler(), verifyHandler.VerifyFaces)
		return
	}

	r.app.Post("/verify_faces", verifyHandler.VerifyFaces)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.ShutdownWithContext(ctx)
}
