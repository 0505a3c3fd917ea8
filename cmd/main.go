package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"document-intel-platform/internal/ai"
	"document-intel-platform/internal/config"
	"document-intel-platform/internal/logger"
	"document-intel-platform/internal/store"
	"document-intel-platform/internal/telemetry"
	"document-intel-platform/middleware"
	"document-intel-platform/routes"
	"document-intel-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Open SQLite database and bootstrap schema
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(db); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	// Telemetry
	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("document-intel-platform", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

	// Generative backend is optional: without it, summaries and deep
	// analysis degrade instead of blocking ingestion.
	var textGen services.TextGenerator
	var visionGen services.VisionGenerator
	gemini, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		logger.Warn("Gemini unavailable, summaries and deep analysis disabled", "error", err)
	} else {
		defer gemini.Close()
		textGen = gemini
		visionGen = gemini
	}

	// OCR fallback backend
	ocrBackend, err := services.NewOCRBackend(cfg)
	if err != nil {
		log.Fatal("Failed to initialize OCR backend:", err)
	}

	// Wire services
	documentStore := store.NewDocumentStore(db)
	ocrFallback := services.NewOCRFallbackExtractor(ocrBackend, cfg)
	orchestrator := services.NewExtractionOrchestrator(cfg.MinTextThreshold, ocrFallback, metrics)
	webExtractor := services.NewWebPageExtractor(cfg)
	summarizer := services.NewSummarizationService(textGen, cfg)
	analyzer := services.NewDeepAnalysisService(visionGen, cfg)
	documentService := services.NewDocumentService(documentStore, orchestrator, webExtractor, summarizer, analyzer, metrics)
	exportService := services.NewExportService(documentStore)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.MaxMultipartMemory = cfg.MaxFileSize

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupDocumentRoutes(router, cfg, documentService, exportService)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
