package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/services"
)

type SessionHandler struct {
	assistant  services.Assistant
	middleware *SessionMiddleware
}

func NewSessionHandler(assistant services.Assistant, middleware *SessionMiddleware) *SessionHandler {
	return &SessionHandler{
		assistant:  assistant,
		middleware: middleware,
	}
}

// HandleGetSession handles GET /session
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	snap := currentSession(c).Snapshot()

	response := models.SessionResponse{
		ID:             snap.ID,
		State:          string(snap.State),
		DocumentID:     snap.DocumentID,
		DocumentName:   snap.DocumentName,
		ExtractedChars: len(snap.ExtractedText),
	}
	if snap.HasResponse {
		response.LastResponse = &snap.LastResponse
	}

	return c.JSON(response)
}

// HandleDeleteSession handles DELETE /session
func (h *SessionHandler) HandleDeleteSession(c *fiber.Ctx) error {
	if err := h.assistant.Reset(c.UserContext(), currentSession(c)); err != nil {
		return respondError(c, err)
	}

	if err := h.middleware.Destroy(c); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
