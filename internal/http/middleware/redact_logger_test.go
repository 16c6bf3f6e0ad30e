package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactingLogger_QueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}, MaskParams: []string{"sig"}}))
	r.GET("/admin/approve-download", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "id=01HZX3&action=approve&token=eyJhbGciOi.abc.def&sig=s3cr3t&email=jane.doe%40example.com&note=call+212-555-1212"
	req := httptest.NewRequest(http.MethodGet, "/admin/approve-download?"+q, nil)
	req.Header.Set("Authorization", "Basic YWRtaW46cGFzcw==")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "from bob@example.org")
	req.Header.Set(requestIDHeader, "rid-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/admin/approve-download"`,
		`"request_id":"rid-1"`,
		`id=01HZX3&action=approve&token=[REDACTED]&sig=[REDACTED]&email=j***@example.com&note=call [REDACTED:phone]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"from b***@example.org"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in logs, got: %s", want, logs)
		}
	}
	for _, leak := range []string{"eyJhbGciOi", "s3cr3t", "jane.doe", "topsecret", "shhh", "bob@"} {
		if strings.Contains(logs, leak) {
			t.Fatalf("log leaked %q: %s", leak, logs)
		}
	}
}

func TestRedactingLogger_LevelsAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	// No RequestID middleware; the logger falls back to the header.
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, rid := range map[string]string{"/warn": "rid-warn", "/error": "rid-err"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(requestIDHeader, rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log not found or missing request_id fallback: %s", logs)
	}
}

func TestRedactQuery(t *testing.T) {
	mask := lowerSet([]string{"token"}, nil)
	tests := map[string]string{
		"":                        "",
		"status=pending":          "status=pending",
		"email=":                  "email=",
		"EMAIL=A%40B.io":          "EMAIL=A***@B.io",
		"flag":                    "flag",
		"Token=abc":               "Token=[REDACTED]",
		"q=write+to+x%40y.dev":    "q=write to x***@y.dev",
		"bad=%zz":                 "bad=%zz",
	}
	for in, want := range tests {
		if got := redactQuery(in, mask); got != want {
			t.Errorf("redactQuery(%q) = %q; want %q", in, got, want)
		}
	}
}
