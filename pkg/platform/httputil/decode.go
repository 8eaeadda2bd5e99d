package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "idcard/pkg/domain-errors"
)

// Request DTOs opt into preparation steps by implementing these. They run in
// the order Sanitize, Normalize, Validate.
type (
	Sanitizable  interface{ Sanitize() }
	Normalizable interface{ Normalize() }
	Validatable  interface{ Validate() error }
)

var errTooLarge = errors.New("request body too large")

// decodeBody reads exactly one JSON value. The returned error is either
// errTooLarge or a bad_request domain error with a client-facing message.
func decodeBody(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON value")
	}

	var (
		tooLarge  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return errTooLarge
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	case errors.As(err, &syntaxErr):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()))
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
}

// DecodeJSON decodes the body into a new T. On failure it has already written
// the error envelope (413 for bodies cut off by request.BodyLimit, 400
// otherwise) and returns false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	err := decodeBody(r.Body, req)
	if err == nil {
		return req, true
	}

	logger.WarnContext(ctx, "request body rejected", "request_id", requestID, "error", err)
	if errors.Is(err, errTooLarge) {
		WriteJSON(w, http.StatusRequestEntityTooLarge, Envelope{Error: "payload_too_large", Message: err.Error()})
	} else {
		WriteError(w, err)
	}
	return nil, false
}

// PrepareRequest runs whichever preparation steps req implements. A plain
// (non-domain) validation error is reported as validation_failed.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	var domainErr *dErrors.Error
	if err != nil && !errors.As(err, &domainErr) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

// DecodeAndPrepare is DecodeJSON followed by PrepareRequest.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "request failed validation", "request_id", requestID, "error", err)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
