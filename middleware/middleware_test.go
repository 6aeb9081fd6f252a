package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/health-checker/backend/logging"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(), CORS())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logging.RequestIDKey))
	})
	return r
}

func TestErrorHandler(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body: %v", err)
	}
	if body["error"] == "" {
		t.Error("Expected error message in body")
	}
}

func TestRequestID(t *testing.T) {
	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

		id := w.Header().Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Expected generated uuid, got %q", id)
		}
		if w.Body.String() != id {
			t.Errorf("Context id %q does not match header %q", w.Body.String(), id)
		}
	})

	t.Run("Reused", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(requestIDHeader, incoming)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Header().Get(requestIDHeader) != incoming {
			t.Errorf("Expected incoming id to be reused")
		}
	})

	t.Run("MalformedReplaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(requestIDHeader, "<script>")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		if w.Header().Get(requestIDHeader) == "<script>" {
			t.Error("Malformed id should be replaced")
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/id", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS origin header")
	}
}
