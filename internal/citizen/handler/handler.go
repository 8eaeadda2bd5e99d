package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"idcard/internal/citizen/models"
	"idcard/internal/citizen/service"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/httputil"
	"idcard/pkg/platform/privacy"
	"idcard/pkg/requestcontext"
)

// Service defines the citizen operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, actor id.Actor, cmd service.CreateCommand) (*models.Citizen, error)
	Get(ctx context.Context, actor id.Actor, recordID id.CitizenID) (*models.Citizen, error)
	GetBiometrics(ctx context.Context, actor id.Actor, recordID id.CitizenID) (models.Biometrics, error)
	List(ctx context.Context, actor id.Actor, filter models.Filter) ([]*models.Citizen, error)
	Update(ctx context.Context, actor id.Actor, recordID id.CitizenID, patch models.Patch, opts ...service.TransitionOption) (*models.Citizen, error)
	Delete(ctx context.Context, actor id.Actor, recordID id.CitizenID) error
	TransitionStatus(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.Status, opts ...service.TransitionOption) (*models.Citizen, error)
	SetPrintStatus(ctx context.Context, actor id.Actor, recordID id.CitizenID, target models.PrintStatus) (*models.Citizen, error)
	BulkTransition(ctx context.Context, actor id.Actor, ids []string, target models.Status) (*models.BulkResult, error)
	SendForProcessing(ctx context.Context, actor id.Actor, ids []string) (*models.BulkResult, error)
	BulkPrintStatusUpdate(ctx context.Context, actor id.Actor, ids []string, target models.PrintStatus) (*models.BulkResult, error)
	DashboardStats(ctx context.Context, actor id.Actor) (*models.Stats, error)
	FindByFuzzyBusinessID(ctx context.Context, input string) (*models.Citizen, error)
}

// Handler serves the citizen endpoints.
type Handler struct {
	logger *slog.Logger
	svc    Service
}

// New creates a citizen Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, svc: svc}
}

// Register mounts the authenticated routes. Static segments are matched
// before {id}.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/citizens", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
		r.Post("/send", h.handleSend)
		r.Post("/approve", h.handleBulkDecision(models.StatusApproved))
		r.Post("/reject", h.handleBulkDecision(models.StatusRejected))
		r.Post("/transition", h.handleBulkTransition)
		r.Patch("/print-status", h.handleBulkPrintStatus)

		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/biometrics", h.handleGetBiometrics)
		r.Patch("/{id}/status", h.handleTransition)
		r.Patch("/{id}/print", h.handlePrintMark(models.PrintStatusPrinted))
		r.Patch("/{id}/deliver", h.handlePrintMark(models.PrintStatusDelivered))
		r.Patch("/{id}/fail", h.handlePrintMark(models.PrintStatusFailed))
	})
}

// RegisterPublic mounts the unauthenticated self-service status check.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/api/status/{citizenID}", h.handleStatusCheck)
}

// begin resolves the request id and the authenticated actor.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (context.Context, string, id.Actor, bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return ctx, requestID, id.Actor{}, false
	}
	return ctx, requestID, actor, true
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request, requestID string) (id.CitizenID, bool) {
	recordID, err := id.ParseCitizenID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid citizen record id",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return id.CitizenID{}, false
	}
	return recordID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, event, requestID string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeStorageFailure, dErrors.CodeInternal, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, event, "request_id", requestID, "error", err)
	default:
		h.logger.WarnContext(ctx, event, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateCitizenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.svc.Create(ctx, actor, req.ToCommand())
	if err != nil {
		h.fail(ctx, w, "failed to create citizen", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, toCitizenResponse(c), "citizen registered")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid citizen list filter", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	citizens, err := h.svc.List(ctx, actor, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list citizens", requestID, err)
		return
	}
	res := ListResponse{Citizens: make([]CitizenResponse, len(citizens)), Count: len(citizens)}
	for i, c := range citizens {
		res.Citizens[i] = toCitizenResponse(c)
	}
	httputil.WriteSuccess(w, http.StatusOK, res, "")
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.DashboardStats(ctx, actor)
	if err != nil {
		h.fail(ctx, w, "failed to compute dashboard stats", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, stats, "")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r, requestID)
	if !ok {
		return
	}
	c, err := h.svc.Get(ctx, actor, recordID)
	if err != nil {
		h.fail(ctx, w, "failed to get citizen", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, toCitizenResponse(c), "")
}

func (h *Handler) handleGetBiometrics(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r, requestID)
	if !ok {
		return
	}
	bio, err := h.svc.GetBiometrics(ctx, actor, recordID)
	if err != nil {
		h.fail(ctx, w, "failed to get citizen biometrics", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, toBiometricsResponse(bio), "")
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r, requestID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateCitizenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.svc.Update(ctx, actor, recordID, req.ToPatch(), versionOpts(req.ExpectedVersion)...)
	if err != nil {
		h.fail(ctx, w, "failed to update citizen", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, toCitizenResponse(c), "citizen updated")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r, requestID)
	if !ok {
		return
	}
	if err := h.svc.Delete(ctx, actor, recordID); err != nil {
		h.fail(ctx, w, "failed to delete citizen", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, nil, "citizen deleted")
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r, requestID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	target := models.Status(req.Status)
	c, err := h.svc.TransitionStatus(ctx, actor, recordID, target, versionOpts(req.ExpectedVersion)...)
	if err != nil {
		h.fail(ctx, w, "failed to transition citizen", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, toCitizenResponse(c), fmt.Sprintf("status changed to %s", target))
}

func (h *Handler) handlePrintMark(target models.PrintStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, requestID, actor, ok := h.begin(w, r)
		if !ok {
			return
		}
		recordID, ok := h.recordID(w, r, requestID)
		if !ok {
			return
		}
		c, err := h.svc.SetPrintStatus(ctx, actor, recordID, target)
		if err != nil {
			h.fail(ctx, w, "failed to update print status", requestID, err)
			return
		}
		httputil.WriteSuccess(w, http.StatusOK, toCitizenResponse(c), fmt.Sprintf("print status changed to %s", target))
	}
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkIDsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.svc.SendForProcessing(ctx, actor, req.IDs)
	if err != nil {
		h.fail(ctx, w, "failed to send citizens for processing", requestID, err)
		return
	}
	writeBulk(w, result, "sent")
}

func (h *Handler) handleBulkDecision(target models.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, requestID, actor, ok := h.begin(w, r)
		if !ok {
			return
		}
		req, ok := httputil.DecodeAndPrepare[BulkIDsRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		result, err := h.svc.BulkTransition(ctx, actor, req.IDs, target)
		if err != nil {
			h.fail(ctx, w, "failed to apply bulk decision", requestID, err)
			return
		}
		writeBulk(w, result, string(target))
	}
}

func (h *Handler) handleBulkTransition(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkTransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target := models.Status(req.Status)
	result, err := h.svc.BulkTransition(ctx, actor, req.IDs, target)
	if err != nil {
		h.fail(ctx, w, "failed to apply bulk transition", requestID, err)
		return
	}
	writeBulk(w, result, fmt.Sprintf("moved to %s", target))
}

func (h *Handler) handleBulkPrintStatus(w http.ResponseWriter, r *http.Request) {
	ctx, requestID, actor, ok := h.begin(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkPrintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target := models.PrintStatus(req.PrintStatus)
	result, err := h.svc.BulkPrintStatusUpdate(ctx, actor, req.IDs, target)
	if err != nil {
		h.fail(ctx, w, "failed to apply bulk print status", requestID, err)
		return
	}
	writeBulk(w, result, fmt.Sprintf("marked %s", target))
}

func (h *Handler) handleStatusCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	lookup := chi.URLParam(r, "citizenID")
	h.logger.DebugContext(ctx, "citizen_status_check",
		"request_id", requestID,
		"lookup", privacy.MaskIdentifier(lookup),
	)
	c, err := h.svc.FindByFuzzyBusinessID(ctx, lookup)
	if err != nil {
		h.fail(ctx, w, "citizen status check failed", requestID, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, toStatusCheckResponse(c), "")
}

// writeBulk reports per-item outcomes with 200 even on partial failure; the
// envelope's success flag is set only when every item succeeded.
func writeBulk(w http.ResponseWriter, result *models.BulkResult, verb string) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Envelope{
		Success: result.AllSucceeded(),
		Data:    toBulkResponse(result),
		Message: result.Summary(verb),
	})
}

func versionOpts(expected int64) []service.TransitionOption {
	if expected <= 0 {
		return nil
	}
	return []service.TransitionOption{service.WithExpectedVersion(expected)}
}

func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	var f models.Filter
	if raw := q.Get("status"); raw != "" {
		st, err := models.ParseStatus(strings.ToLower(raw))
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if raw := q.Get("print_status"); raw != "" {
		ps, err := models.ParsePrintStatus(strings.ToLower(raw))
		if err != nil {
			return f, err
		}
		f.PrintStatus = &ps
	}
	f.Gender = strings.TrimSpace(q.Get("gender"))
	if raw := q.Get("include_biometrics"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return f, dErrors.New(dErrors.CodeInvalidInput, "include_biometrics must be a boolean")
		}
		f.IncludeBiometrics = include
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, dErrors.New(dErrors.CodeInvalidInput, name+" must be a non-negative integer")
		}
		*dst = n
	}
	return f, nil
}
