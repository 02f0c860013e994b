package models

import "time"

type UploadResponse struct {
	DocumentID     string `json:"document_id"`
	OriginalName   string `json:"original_name"`
	ExtractedChars int    `json:"extracted_chars"`
	Cached         bool   `json:"cached"`
}

type AnalyzeRequest struct {
	Mode           string `json:"mode"`
	JobDescription string `json:"job_description"`
	Question       string `json:"question"`
}

type QuestionRequest struct {
	Question string `json:"question"`
}

type AnalyzeResponse struct {
	Text       string `json:"text"`
	Mode       string `json:"mode"`
	AnalysisID string `json:"analysis_id,omitempty"`
}

type ErrorResponse struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

type SessionResponse struct {
	ID             string  `json:"id"`
	State          string  `json:"state"`
	DocumentID     string  `json:"document_id,omitempty"`
	DocumentName   string  `json:"document_name,omitempty"`
	ExtractedChars int     `json:"extracted_chars"`
	LastResponse   *string `json:"last_response,omitempty"`
}

type AnalysisRecordResponse struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	DocumentName string    `json:"document_name"`
	Question     *string   `json:"question,omitempty"`
	Response     string    `json:"response"`
	CreatedAt    time.Time `json:"created_at"`
}
