package routes

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"document-intel-platform/internal/config"
	"document-intel-platform/internal/logger"
	"document-intel-platform/internal/store"
	"document-intel-platform/models"
	"document-intel-platform/services"
	"document-intel-platform/utils"
)

// SetupDocumentRoutes registers the document ingestion and retrieval API.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, svc *services.DocumentService, exporter *services.ExportService) {
	api := router.Group("/api/documents")

	api.POST("/upload", handleUpload(cfg, svc))
	api.POST("/url", handleIngestURL(svc))
	api.GET("", handleList(svc))
	api.GET("/export", handleExport(exporter))
	api.GET("/:id", handleDetail(svc))
	api.POST("/:id/analyze", handleAnalyze(svc))
}

// handleUpload ingests an uploaded PDF file.
func handleUpload(cfg *config.Config, svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file uploaded", nil)
			return
		}

		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are supported", nil)
			return
		}
		if file.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("File exceeds maximum size of %d bytes", cfg.MaxFileSize), nil)
			return
		}

		if err := os.MkdirAll(cfg.FileStorageDir, 0o755); err != nil {
			utils.RespondWithInternalError(c, "Failed to prepare storage", nil)
			return
		}

		// Unique prefix avoids collisions between same-named uploads.
		storedName := uuid.NewString() + "_" + filepath.Base(file.Filename)
		storedPath := filepath.Join(cfg.FileStorageDir, storedName)
		if err := c.SaveUploadedFile(file, storedPath); err != nil {
			utils.RespondWithInternalError(c, "Failed to save uploaded file", nil)
			return
		}

		doc, warning, err := svc.IngestPDF(c.Request.Context(), storedPath, c.PostForm("name"))
		if err != nil {
			// No record was created; the stored file is useless.
			os.Remove(storedPath)
			respondIngestError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.IngestResponse{
			ID:      doc.ID,
			Name:    doc.Name,
			Message: fmt.Sprintf("Successfully processed %s", doc.Name),
			Warning: warning,
		})
	}
}

// handleIngestURL ingests a fetched web page.
func handleIngestURL(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.IngestURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "url is required", err.Error())
			return
		}

		doc, warning, err := svc.IngestURL(c.Request.Context(), req.URL, req.Name)
		if err != nil {
			respondIngestError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.IngestResponse{
			ID:      doc.ID,
			Name:    doc.Name,
			Message: fmt.Sprintf("Successfully processed %s", doc.Name),
			Warning: warning,
		})
	}
}

func handleList(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := svc.List(c.Request.Context(), c.Query("q"))
		if err != nil {
			logger.Error("Failed to list documents", "error", err)
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
	}
}

func handleDetail(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := svc.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}
		if err != nil {
			logger.Error("Failed to get document", "id", c.Param("id"), "error", err)
			utils.RespondWithInternalError(c, "Failed to get document", nil)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// handleAnalyze triggers the one-time deep analysis for a record.
func handleAnalyze(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		analysis, existed, err := svc.Analyze(c.Request.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.RespondWithNotFound(c, "Document not found")
			return
		case errors.Is(err, services.ErrAnalysisNotApplicable):
			utils.RespondWithError(c, http.StatusConflict, "not_applicable",
				"Deep analysis is only available for PDF documents", nil)
			return
		case err != nil:
			logger.Error("Deep analysis failed", "id", id, "error", err)
			utils.RespondWithBadGateway(c, "Deep analysis failed. Please try again later.")
			return
		}

		c.JSON(http.StatusOK, models.AnalyzeResponse{
			ID:             id,
			DeepAnalysis:   analysis,
			AlreadyExisted: existed,
		})
	}
}

func handleExport(exporter *services.ExportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		wb, err := exporter.BuildWorkbook(c.Request.Context(), c.Query("q"))
		if err != nil {
			logger.Error("Failed to build export", "error", err)
			utils.RespondWithInternalError(c, "Failed to build export", nil)
			return
		}
		defer wb.Close()

		filename := fmt.Sprintf("documents_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := wb.Write(c.Writer); err != nil {
			logger.Error("Failed to write export", "error", err)
		}
	}
}

// respondIngestError maps pipeline failures to API responses.
func respondIngestError(c *gin.Context, err error) {
	var exErr *services.ExtractionError
	switch {
	case errors.As(err, &exErr):
		switch exErr.Kind {
		case services.FailureEmptyDocument:
			utils.RespondWithUnprocessable(c, "empty_document", "Document has no pages")
		default:
			utils.RespondWithUnprocessable(c, "no_text_recovered", "Could not extract any text from the document")
		}
	case errors.Is(err, services.ErrFetchFailed):
		utils.RespondWithUnprocessable(c, "fetch_failed", "Could not retrieve source")
	default:
		logger.Error("Ingestion failed", "error", err)
		utils.RespondWithInternalError(c, "Failed to process document", nil)
	}
}
