package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/resume-ats/internal/models"
)

func TestBuildAnalysisPrompt_QuickScan(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.Build(models.ModeQuickScan, "X", "", "", "")
	assert.Equal(t, "Analyze this resume for Quick Scan:\n\nX", prompt)
}

func TestBuildAnalysisPrompt_DetailedAnalysis(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.Build(models.ModeDetailedAnalysis, "resume", "ignored", "ignored", "ignored")
	assert.Equal(t, "Analyze this resume for Detailed Analysis:\n\nresume", prompt)
}

func TestBuildATSOptimizationPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildATSOptimizationPrompt("Resume body", "Backend engineer, Go, Postgres")

	want := "\n" +
		"    You are ResumeChecker, an expert in ATS optimization. Analyze the following resume and provide optimization suggestions:\n" +
		"    \n" +
		"    1. Identify keywords from the job description that should be included in the resume.\n" +
		"    2. Suggest reformatting or restructuring to improve ATS readability.\n" +
		"    3. Recommend changes to improve keyword density without keyword stuffing.\n" +
		"    4. Provide 3-5 bullet points on how to tailor this resume for the specific job description.\n" +
		"    5. Give an ATS compatibility score out of 100 and explain how to improve it.\n" +
		"    \n" +
		"    Resume text: Resume body\n" +
		"    Job description: Backend engineer, Go, Postgres\n" +
		"    "
	assert.Equal(t, want, prompt)
	assert.Equal(t, prompt, pb.Build(models.ModeATSOptimization, "Resume body", "Backend engineer, Go, Postgres", "", ""))
}

func TestBuildQuestionPrompt_EmbedsContext(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildQuestionPrompt("Which skills are missing?", "Resume body", "Prior analysis")

	assert.True(t, strings.HasPrefix(prompt, "Analyze this resume for Custom Question:\n\n"))
	assert.Contains(t, prompt, "Which skills are missing?")
	assert.Contains(t, prompt, "Resume text: Resume body\n")
	assert.Contains(t, prompt, "Previous analysis: Prior analysis\n")
}

func TestBuildQuestionPrompt_MissingPriorResponse(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildQuestionPrompt("Is it one page?", "Resume body", "")
	assert.Contains(t, prompt, "Previous analysis: None\n")
}

func TestBuild_Deterministic(t *testing.T) {
	pb := NewPromptBuilder()

	for _, mode := range models.AnalysisModes {
		t.Run(string(mode), func(t *testing.T) {
			first := pb.Build(mode, "text 100% match", "jd", "q", "prior")
			second := pb.Build(mode, "text 100% match", "jd", "q", "prior")
			assert.Equal(t, first, second)
			assert.Contains(t, first, "text 100% match")
		})
	}
}

func TestBuild_NoTruncation(t *testing.T) {
	pb := NewPromptBuilder()
	long := strings.Repeat("experience ", 20000)

	assert.Contains(t, pb.Build(models.ModeQuickScan, long, "", "", ""), long)
	assert.Contains(t, pb.Build(models.ModeATSOptimization, long, "jd", "", ""), long)
	assert.Contains(t, pb.Build(models.ModeCustomQuestion, long, "", "q", ""), long)
}
