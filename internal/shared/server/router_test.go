package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/shared/config"
)

func TestOperationalEndpointsNeedNoToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterDeps{Config: config.Config{Env: "dev"}})

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s without token: expected 200, got %d body=%s", path, resp.Code, resp.Body.String())
		}
	}
}

type stubRegistrar struct{}

func (stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subjects", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func TestProtectedRoutesStillRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterDeps{Config: config.Config{Env: "dev"}, SubjectsHandler: stubRegistrar{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
