package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-ats/internal/config"
	"alfredoptarigan/resume-ats/internal/handlers"
	"alfredoptarigan/resume-ats/internal/logger"
	"alfredoptarigan/resume-ats/internal/repositories"
	"alfredoptarigan/resume-ats/internal/services"
)

// uploadOverhead leaves room for multipart framing on top of the file itself.
const uploadOverhead = 1 << 20

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Info().Msg("✅ Config loaded successfully")

	// Initialize the optional analysis archive
	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to initialize database")
	}

	var archive repositories.AnalysisRepository
	if db != nil {
		archive = repositories.NewAnalysisRepository(db)
		logger.Info().Msg("✅ Analysis archive initialized")
	}

	// Initialize Gemini AI. A missing key disables analysis but the server
	// keeps running so the UI can report it.
	ctx := context.Background()
	var model services.ModelClient
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		logger.Error().Err(err).Msg("❌ Gemini AI unavailable, analysis is disabled")
	} else {
		model = geminiService
		logger.Info().Str("model", geminiService.Model()).Msg("✅ Gemini AI initialized successfully")
	}

	assistant := services.NewAssistantService(
		model,
		services.NewPDFParserService(),
		archive,
		services.AssistantConfig{
			MaxFileSize:  cfg.Storage.MaxFileSize,
			ModelTimeout: cfg.Gemini.Timeout,
		},
	)
	sessions := services.NewSessionStore(cfg.Session.TTL)
	logger.Info().Msg("✅ Services initialized successfully")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ResumeATS Pro",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + uploadOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Assistant:   assistant,
		Sessions:    sessions,
		Archive:     archive,
		Session:     cfg.Session,
		MaxFileSize: cfg.Storage.MaxFileSize,
	})
	logger.Info().Msg("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info().Msg("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Gemini.Timeout); err != nil {
			logger.Error().Err(err).Msg("❌ Server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("🚀 Server starting")
	logger.Info().Msgf("📖 Open http://localhost%s in your browser", addr)

	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to start server")
	}
}
