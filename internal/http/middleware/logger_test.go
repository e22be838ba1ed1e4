package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestLoggerEmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(l))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var line struct {
		RequestID string `json:"request_id"`
		Method    string `json:"method"`
		Path      string `json:"path"`
		Status    int    `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line.Method != "GET" || line.Path != "/ping" || line.Status != http.StatusOK {
		t.Fatalf("unexpected log line: %+v", line)
	}
	if line.RequestID == "" {
		t.Fatalf("request id missing from log line: %s", buf.String())
	}
}

func TestLoggerServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	r := gin.New()
	r.Use(Logger(l))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Level  string `json:"level"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line.Level != "error" || line.Status != http.StatusInternalServerError {
		t.Fatalf("expected error-level 500 line, got %+v", line)
	}
}
