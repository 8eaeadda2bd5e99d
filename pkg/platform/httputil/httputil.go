// Package httputil writes the JSON envelope every endpoint answers with and
// maps domain error codes onto it.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/requestcontext"
)

// Envelope is the response shape shared by every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type codeMapping struct {
	status int
	label  string
}

// Input codes collapse to bad_request except struct validation, which keeps
// its own label so clients can tell a schema problem from a semantic one.
var codeMappings = map[dErrors.Code]codeMapping{
	dErrors.CodeBadRequest:        {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:      {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:        {http.StatusBadRequest, "validation_error"},
	dErrors.CodeNotFound:          {http.StatusNotFound, "not_found"},
	dErrors.CodeDuplicateKey:      {http.StatusConflict, "duplicate_key"},
	dErrors.CodeConflict:          {http.StatusConflict, "conflict"},
	dErrors.CodeInvalidTransition: {http.StatusUnprocessableEntity, "invalid_transition"},
	dErrors.CodeUnauthorized:      {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:         {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:           {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeStorageFailure:    {http.StatusInternalServerError, "storage_failure"},
	dErrors.CodeInternal:          {http.StatusInternalServerError, "internal_error"},
}

func mappingFor(code dErrors.Code) codeMapping {
	if m, ok := codeMappings[code]; ok {
		return m
	}
	return codeMappings[dErrors.CodeInternal]
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already out; an encode failure has nowhere to go
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	WriteJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// WriteError answers with the status for err's code. Plain errors become a
// bare internal_error so causes never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		m := mappingFor(dErrors.CodeInternal)
		WriteJSON(w, m.status, Envelope{Error: m.label})
		return
	}
	m := mappingFor(domainErr.Code)
	WriteJSON(w, m.status, Envelope{Error: m.label, Message: domainErr.Message})
}

func DomainCodeToHTTPStatus(code dErrors.Code) int { return mappingFor(code).status }

// DomainCodeToHTTPCode is the envelope "error" label for code.
func DomainCodeToHTTPCode(code dErrors.Code) string { return mappingFor(code).label }

// RequireActor returns the principal set by the auth middleware. Its absence
// on an authenticated route means the route was mounted outside the auth group.
func RequireActor(ctx context.Context, logger *slog.Logger, requestID string) (id.Actor, error) {
	actor := requestcontext.Actor(ctx)
	if !actor.IsZero() {
		return actor, nil
	}
	if logger != nil {
		logger.ErrorContext(ctx, "no actor on an authenticated route", "request_id", requestID)
	}
	return id.Actor{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
}
