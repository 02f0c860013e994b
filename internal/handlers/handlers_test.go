package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ats/internal/config"
	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/repositories"
	"alfredoptarigan/resume-ats/internal/services"
	"alfredoptarigan/resume-ats/internal/testutil"
)

const testCookie = "resumeats_session"

type stubModel struct {
	response string
	err      error
	prompts  []string
}

func (m *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *stubModel) Model() string { return "stub" }

type memoryArchive struct {
	records []models.Analysis
}

func (a *memoryArchive) Create(analysis *models.Analysis) error {
	analysis.ID = uuid.New()
	analysis.CreatedAt = time.Now()
	a.records = append(a.records, *analysis)
	return nil
}

func (a *memoryArchive) FindByID(id uuid.UUID) (*models.Analysis, error) {
	for i := range a.records {
		if a.records[i].ID == id {
			return &a.records[i], nil
		}
	}
	return nil, repositories.ErrAnalysisNotFound
}

func (a *memoryArchive) FindBySession(sessionID string, limit int) ([]models.Analysis, error) {
	var out []models.Analysis
	for _, r := range a.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	app      *fiber.App
	sessions services.SessionStore
}

func newTestServer(t *testing.T, model services.ModelClient, archive repositories.AnalysisRepository) *testServer {
	t.Helper()

	sessions := services.NewSessionStore(time.Hour)
	assistant := services.NewAssistantService(model, services.NewPDFParserService(), archive, services.AssistantConfig{
		MaxFileSize:  1 << 20,
		ModelTimeout: 5 * time.Second,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Dependencies{
		Assistant:   assistant,
		Sessions:    sessions,
		Archive:     archive,
		Session:     config.SessionConfig{CookieName: testCookie, TTL: time.Hour},
		MaxFileSize: 1 << 20,
	})

	return &testServer{app: app, sessions: sessions}
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	srv    *testServer
	cookie string
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s}
}

func (c *client) do(req *http.Request) (int, []byte) {
	c.t.Helper()

	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: c.cookie})
	}

	resp, err := c.srv.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == testCookie {
			if ck.Value == "" || ck.MaxAge < 0 {
				c.cookie = ""
			} else {
				c.cookie = ck.Value
			}
		}
	}

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, body
}

func (c *client) getJSON(path string, out any) int {
	status, body := c.do(httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(body, out), string(body))
	}
	return status
}

func (c *client) postJSON(path string, payload any, out any) int {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	status, body := c.do(req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(body, out), string(body))
	}
	return status
}

func (c *client) upload(filename string, data []byte, documentID string, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", filename)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	if documentID != "" {
		require.NoError(c.t, writer.WriteField("document_id", documentID))
	}
	require.NoError(c.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	status, body := c.do(req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(body, out), string(body))
	}
	return status
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)

	var body map[string]any
	status := srv.client(t).getJSON("/api/v1/health", &body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["model_configured"])
	assert.Equal(t, false, body["archive_enabled"])
}

func TestUploadAnalyzeAndAsk(t *testing.T) {
	model := &stubModel{response: "Strong Go background."}
	srv := newTestServer(t, model, nil)
	c := srv.client(t)

	var uploaded models.UploadResponse
	status := c.upload("resume.pdf", testutil.BuildPDF([]string{"Hello", "World"}), "", &uploaded)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "resume.pdf", uploaded.OriginalName)
	assert.Equal(t, len("HelloWorld"), uploaded.ExtractedChars)
	assert.NotEmpty(t, uploaded.DocumentID)
	assert.False(t, uploaded.Cached)
	require.NotEmpty(t, c.cookie)

	var analysis models.AnalyzeResponse
	status = c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "Quick Scan"}, &analysis)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Strong Go background.", analysis.Text)
	assert.Equal(t, "quick_scan", analysis.Mode)
	assert.Equal(t, "Analyze this resume for Quick Scan:\n\nHelloWorld", model.prompts[0])

	model.response = "Add metrics."
	var answer models.AnalyzeResponse
	status = c.postJSON("/api/v1/question", models.QuestionRequest{Question: "How can I improve?"}, &answer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Add metrics.", answer.Text)
	assert.Contains(t, model.prompts[1], "Previous analysis: Strong Go background.")

	var sess models.SessionResponse
	status = c.getJSON("/api/v1/session", &sess)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", sess.State)
	assert.Equal(t, "resume.pdf", sess.DocumentName)
	assert.Equal(t, len("HelloWorld"), sess.ExtractedChars)
	require.NotNil(t, sess.LastResponse)
	assert.Equal(t, "Strong Go background.", *sess.LastResponse)
}

func TestUpload_ReusesExtractionForSameDocumentID(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)
	c := srv.client(t)
	pdf := testutil.BuildPDF([]string{"Resume"})

	var first models.UploadResponse
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", pdf, "", &first))

	var second models.UploadResponse
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", pdf, first.DocumentID, &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.DocumentID, second.DocumentID)

	var third models.UploadResponse
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", pdf, "", &third))
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.DocumentID, third.DocumentID)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		status   int
		kind     string
	}{
		{"not a pdf extension", "resume.docx", []byte("PK"), fiber.StatusBadRequest, "validation"},
		{"broken pdf", "resume.pdf", []byte("this is not a PDF"), fiber.StatusUnprocessableEntity, "extraction"},
		{"encrypted pdf", "resume.pdf", testutil.BuildPDF([]string{"Secret"}, testutil.WithEncryptDict()), fiber.StatusUnprocessableEntity, "extraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubModel{}, nil)
			c := srv.client(t)

			var body models.ErrorResponse
			status := c.upload(tt.filename, tt.data, "", &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, body.ErrorKind)
			assert.NotEmpty(t, body.Message)

			var sess models.SessionResponse
			c.getJSON("/api/v1/session", &sess)
			assert.Equal(t, "idle", sess.State)
			assert.Zero(t, sess.ExtractedChars)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", strings.NewReader(""))
	status, raw := srv.client(t).do(req)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation", body.ErrorKind)
}

func TestAnalyze_ATSWithoutJobDescription(t *testing.T) {
	model := &stubModel{response: "unused"}
	srv := newTestServer(t, model, nil)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var body models.ErrorResponse
	status := c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "ats_optimization", JobDescription: "  "}, &body)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation", body.ErrorKind)
	assert.Contains(t, body.Message, "job description")
	assert.Empty(t, model.prompts)
}

func TestAnalyze_UnknownMode(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var body models.ErrorResponse
	status := c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "haiku"}, &body)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation", body.ErrorKind)
	assert.Contains(t, body.Message, "haiku")
}

func TestAnalyze_ModelFailure(t *testing.T) {
	model := &stubModel{err: errors.New("googleapi: Error 429: quota exceeded")}
	srv := newTestServer(t, model, nil)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var body models.ErrorResponse
	status := c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "detailed_analysis"}, &body)

	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "model", body.ErrorKind)
	assert.Contains(t, body.Message, "quota exceeded")

	var sess models.SessionResponse
	c.getJSON("/api/v1/session", &sess)
	assert.Equal(t, "ready", sess.State)
	assert.Nil(t, sess.LastResponse)
}

func TestAnalyze_WithoutModelConfigured(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var body models.ErrorResponse
	status := c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "quick_scan"}, &body)

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "configuration", body.ErrorKind)
	assert.Contains(t, body.Message, "API key not found")
}

func TestSessions_AreIsolated(t *testing.T) {
	model := &stubModel{response: "analysis"}
	srv := newTestServer(t, model, nil)
	alice := srv.client(t)
	bob := srv.client(t)

	require.Equal(t, fiber.StatusCreated, alice.upload("alice.pdf", testutil.BuildPDF([]string{"Alice"}), "", nil))

	var body models.ErrorResponse
	status := bob.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "quick_scan"}, &body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body.Message, "upload a resume")
	assert.Empty(t, model.prompts)

	assert.NotEqual(t, alice.cookie, bob.cookie)
	assert.Equal(t, 2, srv.sessions.Len())
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, &stubModel{response: "analysis"}, nil)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))
	require.Equal(t, fiber.StatusOK, c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "quick_scan"}, nil))

	status, _ := c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))
	assert.Equal(t, fiber.StatusNoContent, status)

	var sess models.SessionResponse
	c.getJSON("/api/v1/session", &sess)
	assert.Equal(t, "idle", sess.State)
	assert.Zero(t, sess.ExtractedChars)
	assert.Nil(t, sess.LastResponse)
}

func TestAnalyses_ArchiveDisabled(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)

	var body models.ErrorResponse
	status := srv.client(t).getJSON("/api/v1/analyses/"+uuid.NewString(), &body)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body.ErrorKind)
}

func TestAnalyses_Archived(t *testing.T) {
	archive := &memoryArchive{}
	srv := newTestServer(t, &stubModel{response: "archived analysis"}, archive)
	c := srv.client(t)
	require.Equal(t, fiber.StatusCreated, c.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var analysis models.AnalyzeResponse
	require.Equal(t, fiber.StatusOK, c.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "quick_scan"}, &analysis))
	require.NotEmpty(t, analysis.AnalysisID)

	var record models.AnalysisRecordResponse
	status := c.getJSON("/api/v1/analyses/"+analysis.AnalysisID, &record)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "archived analysis", record.Response)
	assert.Equal(t, "quick_scan", record.Mode)
	assert.Equal(t, "resume.pdf", record.DocumentName)

	var list struct {
		Analyses []models.AnalysisRecordResponse `json:"analyses"`
	}
	require.Equal(t, fiber.StatusOK, c.getJSON("/api/v1/analyses", &list))
	require.Len(t, list.Analyses, 1)
	assert.Equal(t, analysis.AnalysisID, list.Analyses[0].ID)

	var body models.ErrorResponse
	assert.Equal(t, fiber.StatusBadRequest, c.getJSON("/api/v1/analyses/not-a-uuid", &body))
	assert.Equal(t, fiber.StatusNotFound, c.getJSON("/api/v1/analyses/"+uuid.NewString(), &body))
}

func TestAnalyses_ScopedToSession(t *testing.T) {
	archive := &memoryArchive{}
	srv := newTestServer(t, &stubModel{response: "private analysis"}, archive)
	owner := srv.client(t)
	require.Equal(t, fiber.StatusCreated, owner.upload("resume.pdf", testutil.BuildPDF([]string{"Resume"}), "", nil))

	var analysis models.AnalyzeResponse
	require.Equal(t, fiber.StatusOK, owner.postJSON("/api/v1/analyze", models.AnalyzeRequest{Mode: "quick_scan"}, &analysis))
	require.NotEmpty(t, analysis.AnalysisID)

	other := srv.client(t)
	var body models.ErrorResponse
	assert.Equal(t, fiber.StatusNotFound, other.getJSON("/api/v1/analyses/"+analysis.AnalysisID, &body))
	assert.Equal(t, "not_found", body.ErrorKind)

	var list struct {
		Analyses []models.AnalysisRecordResponse `json:"analyses"`
	}
	require.Equal(t, fiber.StatusOK, other.getJSON("/api/v1/analyses", &list))
	assert.Empty(t, list.Analyses)

	var record models.AnalysisRecordResponse
	assert.Equal(t, fiber.StatusOK, owner.getJSON("/api/v1/analyses/"+analysis.AnalysisID, &record))
	assert.Equal(t, "private analysis", record.Response)
}

func TestUIServedAtRoot(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)

	status, body := srv.client(t).do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "<title>ResumeATS Pro</title>")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &stubModel{}, nil)

	var body models.ErrorResponse
	status := srv.client(t).getJSON("/api/v1/nope", &body)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body.ErrorKind)
}
