package subjects_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

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
	return out.Token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSubjectQuotaEnforced(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "subjects@example.com")

	for i := 0; i < 5; i++ {
		resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", token, fmt.Sprintf(`{"name":"Subject %d"}`, i))
		if resp.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d body=%s", i, resp.Code, resp.Body.String())
		}
	}

	resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", token, `{"name":"One Too Many"}`)
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
	if out.Error.Message != "Maximum limit of 5 subjects reached" {
		t.Fatalf("unexpected message %q", out.Error.Message)
	}
}

func TestSubjectDeleteFreesQuotaSlot(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "delete@example.com")

	var firstID string
	for i := 0; i < 5; i++ {
		resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", token, fmt.Sprintf(`{"name":"Subject %d"}`, i))
		if resp.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d", i, resp.Code)
		}
		if i == 0 {
			var created struct {
				ID string `json:"id"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
				t.Fatalf("decode subject: %v", err)
			}
			firstID = created.ID
		}
	}

	if resp := doJSON(t, router, http.MethodDelete, "/api/v1/subjects/"+firstID, token, ""); resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}

	if resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", token, `{"name":"Replacement"}`); resp.Code != http.StatusCreated {
		t.Fatalf("create after delete: expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestSubjectRename(t *testing.T) {
	router := buildTestApp(t)
	token := signUp(t, router, "rename@example.com")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", token, `{"name":"Chem"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode subject: %v", err)
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/subjects/"+created.ID, token, `{"name":"Chemistry"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var renamed struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&renamed); err != nil {
		t.Fatalf("decode renamed subject: %v", err)
	}
	if renamed.Name != "Chemistry" {
		t.Fatalf("expected renamed subject, got %q", renamed.Name)
	}
}

func TestSubjectsAreOwnerScoped(t *testing.T) {
	router := buildTestApp(t)
	alice := signUp(t, router, "alice@example.com")
	bob := signUp(t, router, "bob@example.com")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/subjects", alice, `{"name":"Private"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode subject: %v", err)
	}

	if resp := doJSON(t, router, http.MethodGet, "/api/v1/subjects/"+created.ID, bob, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign subject, got %d", resp.Code)
	}
}
