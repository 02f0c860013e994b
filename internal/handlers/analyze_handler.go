package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/services"
)

type AnalyzeHandler struct {
	assistant services.Assistant
}

func NewAnalyzeHandler(assistant services.Assistant) *AnalyzeHandler {
	return &AnalyzeHandler{assistant: assistant}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondKind(c, fiber.StatusBadRequest, kindValidation, "Invalid request payload")
	}

	// Unknown modes are passed through so the assistant reports them.
	mode, err := models.ParseAnalysisMode(req.Mode)
	if err != nil {
		mode = models.AnalysisMode(req.Mode)
	}

	result, err := h.assistant.Analyze(c.UserContext(), currentSession(c), services.AnalysisRequest{
		Mode:           mode,
		JobDescription: req.JobDescription,
		Question:       req.Question,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toAnalyzeResponse(result))
}

// HandleQuestion handles POST /question
func (h *AnalyzeHandler) HandleQuestion(c *fiber.Ctx) error {
	var req models.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondKind(c, fiber.StatusBadRequest, kindValidation, "Invalid request payload")
	}

	result, err := h.assistant.Ask(c.UserContext(), currentSession(c), req.Question)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toAnalyzeResponse(result))
}

func toAnalyzeResponse(result *services.AnalysisResult) models.AnalyzeResponse {
	return models.AnalyzeResponse{
		Text:       result.Text,
		Mode:       string(result.Mode),
		AnalysisID: result.AnalysisID,
	}
}
