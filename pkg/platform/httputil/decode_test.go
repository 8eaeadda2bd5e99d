package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "idcard/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneRequest struct {
	Phone string `json:"phone"`
}

type preparedRequest struct {
	CitizenID  string `json:"citizen_id"`
	sanitized  bool
	normalized bool
}

func (r *preparedRequest) Sanitize() {
	r.sanitized = true
	r.CitizenID = strings.TrimSpace(r.CitizenID)
}

func (r *preparedRequest) Normalize() {
	r.normalized = true
	r.CitizenID = strings.ToUpper(r.CitizenID)
}

func (r *preparedRequest) Validate() error {
	if r.CitizenID == "" {
		return errors.New("citizen_id is required")
	}
	return nil
}

type domainValidatedRequest struct {
	IDs []string `json:"ids"`
}

func (r *domainValidatedRequest) Validate() error {
	if len(r.IDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "ids must not be empty")
	}
	return nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"phone":"+251911000000"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[phoneRequest](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "+251911000000", result.Phone)
	})

	t.Run("malformed json writes bad_request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{phone}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[phoneRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "bad_request", env.Error)
	})

	t.Run("oversized body writes payload_too_large", func(t *testing.T) {
		body := `{"phone":"` + strings.Repeat("9", 64) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 16)

		_, ok := DecodeJSON[phoneRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "payload_too_large", decodeEnvelope(t, w).Error)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("runs sanitize normalize validate in order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"citizen_id":"  et-123456 "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.True(t, result.sanitized)
		assert.True(t, result.normalized)
		assert.Equal(t, "ET-123456", result.CitizenID)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"citizen_id":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w)
		assert.Equal(t, "validation_error", env.Error)
		assert.Contains(t, env.Message, "citizen_id is required")
	})

	t.Run("domain validation error keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"ids":[]}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[domainValidatedRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)

		env := decodeEnvelope(t, w)
		assert.Equal(t, "bad_request", env.Error)
		assert.Equal(t, "ids must not be empty", env.Message)
	})
}

func TestDecodeJSONMessages(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "request body is required"},
		{"trailing value", `{"phone":"1"}{"phone":"2"}`, "request body must contain a single JSON value"},
		{"wrong type", `{"phone":12}`, "phone must be a string"},
		{"syntax", `{"phone":}`, "malformed JSON at offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			_, ok := DecodeJSON[phoneRequest](w, req, logger, context.Background(), "req-1")
			require.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, "bad_request", env.Error)
			assert.Contains(t, env.Message, tt.want)
		})
	}
}
