package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/services"
)

type UploadHandler struct {
	assistant   services.Assistant
	maxFileSize int64
}

func NewUploadHandler(assistant services.Assistant, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		assistant:   assistant,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /upload with a multipart "resume" PDF. Clients
// may resend the document_id of a previous upload to reuse its extraction.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return respondKind(c, fiber.StatusBadRequest, kindValidation, "please upload your resume as a PDF in the 'resume' field")
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return respondKind(c, fiber.StatusBadRequest, kindValidation, "only PDF files are supported")
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return respondKind(c, fiber.StatusBadRequest, kindValidation,
			fmt.Sprintf("resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}

	documentID := strings.TrimSpace(c.FormValue("document_id"))
	if documentID == "" {
		documentID = uuid.New().String()
	}

	result, err := h.assistant.Upload(c.UserContext(), currentSession(c), models.Document{
		ID:       documentID,
		Filename: file.Filename,
		Data:     data,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		DocumentID:     result.DocumentID,
		OriginalName:   file.Filename,
		ExtractedChars: len(result.Text),
		Cached:         result.Cached,
	})
}
