package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"alfredoptarigan/resume-ats/internal/logger"
	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/repositories"
)

// Assistant drives one session through upload, analysis and follow-up
// questions. Every method runs inside the session's single task slot.
type Assistant interface {
	Upload(ctx context.Context, sess *Session, doc models.Document) (*UploadResult, error)
	Analyze(ctx context.Context, sess *Session, req AnalysisRequest) (*AnalysisResult, error)
	Ask(ctx context.Context, sess *Session, question string) (*AnalysisResult, error)
	Reset(ctx context.Context, sess *Session) error
	ModelConfigured() bool
}

type AnalysisRequest struct {
	Mode           models.AnalysisMode `validate:"required,oneof=quick_scan detailed_analysis ats_optimization custom_question"`
	JobDescription string              `validate:"required_if=Mode ats_optimization"`
	Question       string              `validate:"required_if=Mode custom_question"`
}

type UploadResult struct {
	DocumentID string
	Text       string
	Cached     bool
}

type AnalysisResult struct {
	Text       string
	Mode       models.AnalysisMode
	AnalysisID string
}

type AssistantConfig struct {
	MaxFileSize  int64
	ModelTimeout time.Duration
}

type assistantService struct {
	model         ModelClient
	pdfParser     PDFParserService
	archive       repositories.AnalysisRepository
	promptBuilder *PromptBuilder
	validate      *validator.Validate
	cfg           AssistantConfig
}

// NewAssistantService wires the orchestrator. model may be nil when no API
// key is configured; archive may be nil when the archive is disabled.
func NewAssistantService(
	model ModelClient,
	pdfParser PDFParserService,
	archive repositories.AnalysisRepository,
	cfg AssistantConfig,
) Assistant {
	return &assistantService{
		model:         model,
		pdfParser:     pdfParser,
		archive:       archive,
		promptBuilder: NewPromptBuilder(),
		validate:      validator.New(),
		cfg:           cfg,
	}
}

func (a *assistantService) ModelConfigured() bool {
	return a.model != nil
}

func (a *assistantService) Upload(ctx context.Context, sess *Session, doc models.Document) (*UploadResult, error) {
	const op = "upload"

	if len(doc.Data) == 0 {
		return nil, newValidationError(op, "please choose a PDF file to upload")
	}
	if a.cfg.MaxFileSize > 0 && doc.Size() > a.cfg.MaxFileSize {
		return nil, newValidationError(op, fmt.Sprintf("file size exceeds maximum allowed size of %d bytes", a.cfg.MaxFileSize))
	}

	var result *UploadResult
	err := sess.worker.Run(ctx, op, func(ctx context.Context) error {
		if text, ok := sess.cachedText(doc.ID); ok {
			logger.Debug().Str("session", sess.ID).Str("document", doc.ID).Msg("♻️  Reusing extracted text")
			result = &UploadResult{DocumentID: doc.ID, Text: text, Cached: true}
			return nil
		}

		if err := sess.moveTo(StateExtracting); err != nil {
			return err
		}
		defer sess.settle()

		logger.Info().Str("session", sess.ID).Str("file", doc.Filename).Int64("bytes", doc.Size()).Msg("📄 Parsing resume...")

		text, err := a.pdfParser.ExtractText(doc.Data)
		if err != nil {
			logger.Warn().Err(err).Str("session", sess.ID).Str("file", doc.Filename).Msg("⚠️  Failed to parse resume")
			return newExtractionError(op, err)
		}

		sess.setExtracted(doc.ID, doc.Filename, text)
		result = &UploadResult{DocumentID: doc.ID, Text: text}

		logger.Info().Str("session", sess.ID).Int("chars", len(text)).Msg("✅ Resume parsed")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (a *assistantService) Analyze(ctx context.Context, sess *Session, req AnalysisRequest) (*AnalysisResult, error) {
	const op = "analyze"

	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.Question = strings.TrimSpace(req.Question)

	if req.Mode == models.ModeCustomQuestion {
		return a.Ask(ctx, sess, req.Question)
	}

	if a.model == nil {
		return nil, newConfigurationError(op, msgMissingAPIKey)
	}
	if err := a.validateRequest(op, req); err != nil {
		return nil, err
	}

	var result *AnalysisResult
	err := sess.worker.Run(ctx, op, func(ctx context.Context) error {
		text, ok := sess.ExtractedText()
		if !ok {
			return newValidationError(op, "please upload a resume PDF first")
		}

		if err := sess.moveTo(StateAnalyzing); err != nil {
			return err
		}
		defer sess.settle()

		logger.Info().Str("session", sess.ID).Str("mode", string(req.Mode)).Msg("🤖 Analyzing resume with LLM...")

		prompt := a.promptBuilder.Build(req.Mode, text, req.JobDescription, "", "")
		response, err := a.generate(ctx, prompt)
		if err != nil {
			logger.Error().Err(err).Str("session", sess.ID).Str("mode", string(req.Mode)).Msg("❌ Analysis failed")
			return newModelError(op, err)
		}

		sess.setLastResponse(response)

		result = &AnalysisResult{
			Text:       response,
			Mode:       req.Mode,
			AnalysisID: a.archiveResponse(sess, req.Mode, nil, response),
		}

		logger.Info().Str("session", sess.ID).Str("mode", string(req.Mode)).Msg("✅ Analysis completed")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Ask answers a follow-up question. The answer is returned but does not
// replace the session's last analysis.
func (a *assistantService) Ask(ctx context.Context, sess *Session, question string) (*AnalysisResult, error) {
	const op = "question"

	question = strings.TrimSpace(question)

	if a.model == nil {
		return nil, newConfigurationError(op, msgMissingAPIKey)
	}
	if question == "" {
		return nil, newValidationError(op, "please enter a question")
	}

	var result *AnalysisResult
	err := sess.worker.Run(ctx, op, func(ctx context.Context) error {
		text, ok := sess.ExtractedText()
		if !ok {
			return newValidationError(op, "please upload a resume PDF first")
		}
		prior, _ := sess.LastResponse()

		if err := sess.moveTo(StateAnswering); err != nil {
			return err
		}
		defer sess.settle()

		logger.Info().Str("session", sess.ID).Msg("💬 Answering follow-up question...")

		prompt := a.promptBuilder.BuildQuestionPrompt(question, text, prior)
		response, err := a.generate(ctx, prompt)
		if err != nil {
			logger.Error().Err(err).Str("session", sess.ID).Msg("❌ Question failed")
			return newModelError(op, err)
		}

		result = &AnalysisResult{
			Text:       response,
			Mode:       models.ModeCustomQuestion,
			AnalysisID: a.archiveResponse(sess, models.ModeCustomQuestion, &question, response),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Reset clears the session's extracted text and last response.
func (a *assistantService) Reset(ctx context.Context, sess *Session) error {
	return sess.worker.Run(ctx, "reset", func(ctx context.Context) error {
		sess.reset()
		logger.Info().Str("session", sess.ID).Msg("🧹 Session cleared")
		return nil
	})
}

func (a *assistantService) generate(ctx context.Context, prompt string) (string, error) {
	if a.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.ModelTimeout)
		defer cancel()
	}

	response, err := a.model.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("model call timed out after %s: %w", a.cfg.ModelTimeout, err)
		}
		return "", err
	}

	return response, nil
}

func (a *assistantService) validateRequest(op string, req AnalysisRequest) error {
	err := a.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return newValidationError(op, "invalid analysis request")
	}

	fe := validationErrors[0]
	switch fe.Field() {
	case "Mode":
		if req.Mode == "" {
			return newValidationError(op, "please choose an analysis type")
		}
		return newValidationError(op, fmt.Sprintf("unknown analysis type %q", req.Mode))
	case "JobDescription":
		return newValidationError(op, "please paste a job description for ATS Optimization")
	case "Question":
		return newValidationError(op, "please enter a question")
	default:
		return newValidationError(op, fmt.Sprintf("invalid field %s: %s", fe.Field(), fe.Tag()))
	}
}

// archiveResponse stores a successful response when the archive is enabled
// and returns the new row id. Archive failures never fail the action.
func (a *assistantService) archiveResponse(sess *Session, mode models.AnalysisMode, question *string, response string) string {
	if a.archive == nil {
		return ""
	}

	snapshot := sess.Snapshot()
	record := &models.Analysis{
		SessionID:    sess.ID,
		Mode:         mode,
		DocumentName: snapshot.DocumentName,
		Question:     question,
		Response:     response,
	}

	if err := a.archive.Create(record); err != nil {
		logger.Warn().Err(err).Str("session", sess.ID).Msg("⚠️  Warning: failed to archive analysis")
		return ""
	}

	return record.ID.String()
}
