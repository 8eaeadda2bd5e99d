package request

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcard/pkg/platform/httputil"
	"idcard/pkg/requestcontext"
)

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("mints a uuid when absent", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(headerRequestID))
	})

	t.Run("keeps a well-formed client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerRequestID, "trace.span_1234")
		rec := serve(h, req)
		assert.Equal(t, "trace.span_1234", seen)
		assert.Equal(t, "trace.span_1234", rec.Header().Get(headerRequestID))
	})

	for name, raw := range map[string]string{
		"too long":  strings.Repeat("a", MaxRequestIDLength+1),
		"newline":   "ok\ninjected",
		"space":     "request id",
		"quote":     `request"id`,
		"null byte": "request\x00id",
	} {
		t.Run("replaces "+name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(headerRequestID, raw)
			rec := serve(h, req)
			assert.NotEqual(t, raw, seen)
			assert.Len(t, rec.Header().Get(headerRequestID), 36)
		})
	}
}

func TestIsValidRequestID(t *testing.T) {
	assert.True(t, isValidRequestID(strings.Repeat("x", MaxRequestIDLength)))
	assert.True(t, isValidRequestID("ABC-123"))
	assert.False(t, isValidRequestID(""))
	assert.False(t, isValidRequestID("has;semicolon"))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/citizens", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env httputil.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, "internal_error", env.Error)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestTime(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var got time.Time
	h := RequestTime(func() time.Time { return fixed })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.Now(r.Context())
	}))

	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fixed, got)
}

func TestTimeout(t *testing.T) {
	t.Run("sets a deadline", func(t *testing.T) {
		var ok bool
		h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = r.Context().Deadline()
		}))
		serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, ok)
	})

	t.Run("zero disables the deadline", func(t *testing.T) {
		ok := true
		h := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = r.Context().Deadline()
		}))
		serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)
	})
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		method, contentType string
		want                int
	}{
		{http.MethodPost, "application/json", http.StatusNoContent},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{http.MethodPut, "", http.StatusNoContent},
		{http.MethodPatch, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodPost, "not a media type;;", http.StatusUnsupportedMediaType},
		{http.MethodGet, "text/plain", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/", strings.NewReader("{}"))
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		rec := serve(h, req)
		assert.Equal(t, tc.want, rec.Code, "%s %q", tc.method, tc.contentType)
		if tc.want == http.StatusUnsupportedMediaType {
			assert.Contains(t, rec.Body.String(), `"unsupported_media_type"`)
		}
	}
}

func TestLoggerAndInstrumentUseRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithClientIP(r.Context(), "192.168.10.42")))
		})
	})
	r.Use(Logger(logger), Instrument(m))
	r.Get("/api/citizens/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/citizens/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, `"route":"/api/citizens/{id}"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"client_ip":"192.168.10.0"`)
	assert.NotContains(t, out, "192.168.10.42")
	assert.Equal(t, 1, strings.Count(out, "http request"), "healthy probes are not logged")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/citizens/{id}", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/health", "200")))
}
