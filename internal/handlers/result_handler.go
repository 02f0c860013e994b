package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/repositories"
)

const sessionHistoryLimit = 20

// ResultHandler serves archived analyses. archive is nil when the archive is
// disabled.
type ResultHandler struct {
	archive repositories.AnalysisRepository
}

func NewResultHandler(archive repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{archive: archive}
}

// HandleGetAnalysis handles GET /analyses/:id. Analyses archived by another
// session are reported as not found.
func (h *ResultHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	if h.archive == nil {
		return respondKind(c, fiber.StatusNotFound, kindNotFound, "analysis archive is disabled")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondKind(c, fiber.StatusBadRequest, kindValidation, "Invalid analysis ID format")
	}

	analysis, err := h.archive.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAnalysisNotFound) {
			return respondKind(c, fiber.StatusNotFound, kindNotFound, "Analysis not found")
		}
		return err
	}
	if analysis.SessionID != currentSession(c).ID {
		return respondKind(c, fiber.StatusNotFound, kindNotFound, "Analysis not found")
	}

	return c.JSON(toRecordResponse(*analysis))
}

// HandleListAnalyses handles GET /analyses for the current session.
func (h *ResultHandler) HandleListAnalyses(c *fiber.Ctx) error {
	if h.archive == nil {
		return respondKind(c, fiber.StatusNotFound, kindNotFound, "analysis archive is disabled")
	}

	analyses, err := h.archive.FindBySession(currentSession(c).ID, sessionHistoryLimit)
	if err != nil {
		return err
	}

	responses := make([]models.AnalysisRecordResponse, 0, len(analyses))
	for _, analysis := range analyses {
		responses = append(responses, toRecordResponse(analysis))
	}

	return c.JSON(fiber.Map{"analyses": responses})
}

func toRecordResponse(analysis models.Analysis) models.AnalysisRecordResponse {
	return models.AnalysisRecordResponse{
		ID:           analysis.ID.String(),
		Mode:         string(analysis.Mode),
		DocumentName: analysis.DocumentName,
		Question:     analysis.Question,
		Response:     analysis.Response,
		CreatedAt:    analysis.CreatedAt,
	}
}
