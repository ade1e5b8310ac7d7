package documents_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/bootstrap"
	"studyvault-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func signUp(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"correct-horse","displayName":"Test User"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("signup returned no token")
	}
	return out.Token
}

func createSubject(t *testing.T, router *gin.Engine, token, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q}`, name)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("create subject: expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode subject response: %v", err)
	}
	return out.ID
}

func uploadDocument(t *testing.T, router *gin.Engine, token, subjectID, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects/"+subjectID+"/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadLifecycle(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "upload@example.com")
	subjectID := createSubject(t, router, token, "Biology")

	resp := uploadDocument(t, router, token, subjectID, "cells.txt", "The cell is the basic unit of life. It divides by mitosis.")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatal("expected documentId")
	}
	if created.Status != "processing" {
		t.Fatalf("expected status processing, got %q", created.Status)
	}

	// Inline summarization runs off the request path; poll briefly for ready.
	docURL := "/api/v1/subjects/" + subjectID + "/documents/" + created.DocumentID
	deadline := time.Now().Add(5 * time.Second)
	var fetched struct {
		Status  string `json:"status"`
		Summary string `json:"summary"`
	}
	for {
		req := httptest.NewRequest(http.MethodGet, docURL, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		getResp := httptest.NewRecorder()
		router.ServeHTTP(getResp, req)
		if getResp.Code != http.StatusOK {
			t.Fatalf("get document: expected 200, got %d", getResp.Code)
		}
		if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
			t.Fatalf("decode document: %v", err)
		}
		if fetched.Status == "ready" || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if fetched.Status != "ready" {
		t.Fatalf("document never became ready: %+v", fetched)
	}
	if fetched.Summary == "" {
		t.Fatal("expected a summary once ready")
	}
}

func TestUploadQuotaPerSubject(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "quota@example.com")
	subjectID := createSubject(t, router, token, "History")

	for i := 0; i < 4; i++ {
		resp := uploadDocument(t, router, token, subjectID, fmt.Sprintf("doc-%d.txt", i), "some study notes")
		if resp.Code != http.StatusCreated {
			t.Fatalf("upload %d: expected 201, got %d body=%s", i, resp.Code, resp.Body.String())
		}
	}

	resp := uploadDocument(t, router, token, subjectID, "extra.txt", "one too many")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if out.Error.Code != "quota_exceeded" {
		t.Fatalf("expected quota_exceeded, got %q", out.Error.Code)
	}
	if out.Error.Message != "Maximum limit of 4 documents reached" {
		t.Fatalf("unexpected message %q", out.Error.Message)
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "reject@example.com")
	subjectID := createSubject(t, router, token, "Art")

	resp := uploadDocument(t, router, token, subjectID, "pic.png", "\x89PNG\r\n\x1a\nfakeimagedata")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Violations []string `json:"violations"`
				FileSize   string   `json:"fileSize"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if out.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", out.Error.Code)
	}
	if out.Error.Details.FileSize != "21 Bytes" {
		t.Fatalf("expected readable file size, got %q", out.Error.Details.FileSize)
	}
}

func TestDocumentRoutesRequireAuth(t *testing.T) {
	router := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects/some-id/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
