package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ats/internal/config"
	"alfredoptarigan/resume-ats/internal/logger"
	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/services"
)

type analyzeOptions struct {
	file           string
	mode           string
	jobDescription string
	jobFile        string
	questions      []string
	apiKey         string
}

// newModelClient is replaced in tests.
var newModelClient = func(ctx context.Context, cfg config.GeminiConfig) (services.ModelClient, error) {
	return services.NewGeminiService(ctx, cfg)
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a PDF resume",
		Long: `Extract the text of a PDF resume, run one analysis and then answer each
--question in order against the resume and that analysis.

Modes: quick_scan, detailed_analysis, ats_optimization, custom_question.
ats_optimization needs --job-description or --job-file. custom_question skips
the analysis and only answers the questions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the resume PDF (required)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(models.ModeQuickScan), "Analysis mode")
	cmd.Flags().StringVar(&opts.jobDescription, "job-description", "", "Job description text for ats_optimization")
	cmd.Flags().StringVar(&opts.jobFile, "job-file", "", "Path to a file holding the job description")
	cmd.Flags().StringArrayVarP(&opts.questions, "question", "q", nil, "Follow-up question (repeatable)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Gemini API key (overrides GOOGLE_API_KEY env var)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	cmd.MarkFlagsMutuallyExclusive("job-description", "job-file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cfg, _ := config.Read()
	cfg.Log.Output = cmd.ErrOrStderr()
	logger.Init(cfg.Log)

	if opts.apiKey != "" {
		cfg.Gemini.APIKey = opts.apiKey
	}

	mode, err := models.ParseAnalysisMode(opts.mode)
	if err != nil {
		return err
	}

	jobDescription := opts.jobDescription
	if opts.jobFile != "" {
		raw, err := os.ReadFile(opts.jobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description file: %w", err)
		}
		jobDescription = string(raw)
	}

	if mode == models.ModeCustomQuestion && len(opts.questions) == 0 {
		return fmt.Errorf("mode custom_question needs at least one --question")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := newModelClient(ctx, cfg.Gemini)
	if err != nil {
		return describeError(err)
	}

	assistant := services.NewAssistantService(model, services.NewPDFParserService(), nil, services.AssistantConfig{
		MaxFileSize:  cfg.Storage.MaxFileSize,
		ModelTimeout: cfg.Gemini.Timeout,
	})
	sess := services.NewSession(uuid.NewString())

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	if _, err := assistant.Upload(ctx, sess, models.Document{
		ID:       uuid.NewString(),
		Filename: filepath.Base(opts.file),
		Data:     data,
	}); err != nil {
		return describeError(err)
	}

	out := cmd.OutOrStdout()

	if mode != models.ModeCustomQuestion {
		result, err := assistant.Analyze(ctx, sess, services.AnalysisRequest{
			Mode:           mode,
			JobDescription: jobDescription,
		})
		if err != nil {
			return describeError(err)
		}
		printSection(out, mode.Label(), result.Text)
	}

	for _, question := range opts.questions {
		result, err := assistant.Ask(ctx, sess, question)
		if err != nil {
			return describeError(err)
		}
		printSection(out, "Q: "+strings.TrimSpace(question), result.Text)
	}

	return nil
}

func printSection(w io.Writer, title, body string) {
	fmt.Fprintf(w, "## %s\n\n%s\n\n", title, strings.TrimRight(body, "\n"))
}

// describeError prefixes an assistant error with its kind.
func describeError(err error) error {
	return fmt.Errorf("%s: %w", services.ErrorKindOf(err), err)
}
