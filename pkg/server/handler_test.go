package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/website-researcher/pkg/config"
	"github.com/mikeboe/website-researcher/pkg/research"
)

func testRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		OutputDir:      t.TempDir(),
		MaxPages:       3,
		BrowserCommand: "/nonexistent-browser-command",
	}
	svc := NewService(research.New(cfg, nil, nil), nil)

	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r)
	return r, svc
}

func TestCreateJobValidation(t *testing.T) {
	r, _ := testRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "missing topic", body: `{"url": "https://example.com"}`},
		{name: "missing url", body: `{"topic": "testing"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetJobInvalidID(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/research/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/research/00000000-0000-0000-0000-000000000000", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListJobsEmpty(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/research", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestJobLifecycle(t *testing.T) {
	_, svc := testRouter(t)

	// The browser command does not exist, so the worker fails fast.
	job := svc.CreateJob(CreateJobRequest{URL: "https://example.com", Topic: "testing"})
	if job.Status != StatusPending && job.Status != StatusRunning {
		t.Fatalf("initial status = %q", job.Status)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := svc.GetJob(job.ID)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if got.Status == StatusFailed {
			if got.Error == "" {
				t.Error("failed job carries no error message")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not fail in time, status %q", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	jobs := svc.ListJobs()
	if len(jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(jobs))
	}
}
