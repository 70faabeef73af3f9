package logging

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID the middleware assigned to a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HTTPLogger writes one entry per request.
type HTTPLogger struct {
	logger    *Logger
	bodyLimit int64
}

// NewHTTPLogger returns an HTTPLogger that records request bodies up to
// bodyLimit bytes, 10 KB when zero.
func NewHTTPLogger(logger *Logger, bodyLimit int) *HTTPLogger {
	if bodyLimit <= 0 {
		bodyLimit = 10 << 10
	}
	return &HTTPLogger{logger: logger, bodyLimit: int64(bodyLimit)}
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware assigns a request ID and logs method, path, status and timing.
// An upstream X-Request-ID is reused when it is a UUID. Password values are
// redacted from logged bodies; multipart bodies are never read.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
		w.Header().Set(requestIDHeader, id)

		body := h.captureBody(r)
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		level := levelForStatus(sw.status)
		if !h.logger.Enabled(level) {
			return
		}
		fields := map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"bytes":      sw.written,
			"remote":     r.RemoteAddr,
			"user_agent": r.UserAgent(),
		}
		if r.URL.RawQuery != "" {
			fields["query"] = r.URL.RawQuery
		}
		if body != "" {
			fields["body"] = body
		}
		elapsed := time.Since(started).Milliseconds()
		h.logger.emit(Entry{
			Level:      level.String(),
			Category:   "http",
			Message:    r.Method + " " + r.URL.Path,
			RequestID:  id,
			DurationMS: &elapsed,
			Fields:     fields,
		})
	})
}

// captureBody reads a small non-multipart body and puts it back for the
// handler.
func (h *HTTPLogger) captureBody(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > h.bodyLimit || strings.HasPrefix(contentType, "multipart/") {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return redactBody(string(raw), contentType)
}

func levelForStatus(status int) Level {
	switch {
	case status >= 500:
		return ERROR
	case status >= 400:
		return WARN
	default:
		return INFO
	}
}

var jsonPasswordPattern = regexp.MustCompile(`("(?i:password[a-z]*)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

func redactBody(body, contentType string) string {
	if !strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return jsonPasswordPattern.ReplaceAllString(body, `${1}"[redacted]"`)
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return "[unparseable form body]"
	}
	for key := range values {
		if strings.Contains(strings.ToLower(key), "password") {
			values.Set(key, "[redacted]")
		}
	}
	return values.Encode()
}
