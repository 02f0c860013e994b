package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"alfredoptarigan/resume-ats/internal/config"
	"alfredoptarigan/resume-ats/internal/repositories"
	"alfredoptarigan/resume-ats/internal/services"
	"alfredoptarigan/resume-ats/internal/web"
)

type Dependencies struct {
	Assistant   services.Assistant
	Sessions    services.SessionStore
	Archive     repositories.AnalysisRepository
	Session     config.SessionConfig
	MaxFileSize int64
}

// RegisterRoutes mounts the API under /api/v1 and the UI at the root.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	sessionMiddleware := NewSessionMiddleware(deps.Session, deps.Sessions)

	uploadHandler := NewUploadHandler(deps.Assistant, deps.MaxFileSize)
	analyzeHandler := NewAnalyzeHandler(deps.Assistant)
	sessionHandler := NewSessionHandler(deps.Assistant, sessionMiddleware)
	resultHandler := NewResultHandler(deps.Archive)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":           "healthy",
			"model_configured": deps.Assistant.ModelConfigured(),
			"archive_enabled":  deps.Archive != nil,
			"time":             time.Now(),
		})
	})

	withSession := sessionMiddleware.Handle
	api.Get("/session", withSession, sessionHandler.HandleGetSession)
	api.Delete("/session", withSession, sessionHandler.HandleDeleteSession)
	api.Post("/upload", withSession, uploadHandler.HandleUpload)
	api.Post("/analyze", withSession, analyzeHandler.HandleAnalyze)
	api.Post("/question", withSession, analyzeHandler.HandleQuestion)
	api.Get("/analyses", withSession, resultHandler.HandleListAnalyses)
	api.Get("/analyses/:id", withSession, resultHandler.HandleGetAnalysis)

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       web.FS(),
		PathPrefix: web.PathPrefix,
		Index:      "index.html",
	}))
}
