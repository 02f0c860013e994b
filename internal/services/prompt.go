package services

import (
	"fmt"

	"alfredoptarigan/resume-ats/internal/models"
)

// noPriorAnalysis stands in for a missing previous response in follow-up
// prompts.
const noPriorAnalysis = "None"

// The ATS and question templates must stay byte-identical, indentation
// included: archived analyses were produced from exactly this wording.
const atsOptimizationTemplate = `
    You are ResumeChecker, an expert in ATS optimization. Analyze the following resume and provide optimization suggestions:
    
    1. Identify keywords from the job description that should be included in the resume.
    2. Suggest reformatting or restructuring to improve ATS readability.
    3. Recommend changes to improve keyword density without keyword stuffing.
    4. Provide 3-5 bullet points on how to tailor this resume for the specific job description.
    5. Give an ATS compatibility score out of 100 and explain how to improve it.
    
    Resume text: %s
    Job description: %s
    `

const questionTemplate = `
        Based on the resume and analysis above, answer the following question:
        %s
        
        Resume text: %s
        Previous analysis: %s
        `

// PromptBuilder turns session data into model prompts. All methods are pure.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the generic "analyze for <mode>" prompt used by
// Quick Scan and Detailed Analysis.
func (pb *PromptBuilder) BuildAnalysisPrompt(text, modeLabel string) string {
	return fmt.Sprintf("Analyze this resume for %s:\n\n%s", modeLabel, text)
}

// BuildATSOptimizationPrompt embeds the resume and job description in the
// five-point ATS instructions.
func (pb *PromptBuilder) BuildATSOptimizationPrompt(text, jobDescription string) string {
	return fmt.Sprintf(atsOptimizationTemplate, text, jobDescription)
}

// BuildQuestionPrompt answers a follow-up question against the resume and the
// previous analysis. The question block is sent through the Custom Question
// analysis wrapper.
func (pb *PromptBuilder) BuildQuestionPrompt(question, text, priorResponse string) string {
	if priorResponse == "" {
		priorResponse = noPriorAnalysis
	}
	chat := fmt.Sprintf(questionTemplate, question, text, priorResponse)
	return pb.BuildAnalysisPrompt(chat, models.ModeCustomQuestion.Label())
}

// Build dispatches on mode. Inputs a mode does not use are ignored.
func (pb *PromptBuilder) Build(mode models.AnalysisMode, text, jobDescription, question, priorResponse string) string {
	switch mode {
	case models.ModeATSOptimization:
		return pb.BuildATSOptimizationPrompt(text, jobDescription)
	case models.ModeCustomQuestion:
		return pb.BuildQuestionPrompt(question, text, priorResponse)
	default:
		return pb.BuildAnalysisPrompt(text, mode.Label())
	}
}
