package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/pkg/config"
)

func TestRequestLogsGoToInjectedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	m := NewMiddleware(nil, nil, config.IdempotencyConfig{}, zerolog.New(&buf))

	router := gin.New()
	m.SetupMiddleware(router)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	var entry struct {
		Message string `json:"message"`
		Path    string `json:"path"`
		Status  int    `json:"status"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if entry.Message != "HTTP Request" || entry.Path != "/ping" || entry.Status != http.StatusNoContent {
		t.Errorf("log entry = %+v", entry)
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMiddleware(nil, nil, config.IdempotencyConfig{}, zerolog.Nop())
	router := gin.New()
	m.SetupMiddleware(router)
	router.POST("/payments/send", func(c *gin.Context) { t.Error("handler reached on preflight") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/payments/send", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("missing CORS headers")
	}
}
