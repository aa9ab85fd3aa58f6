package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flagdesk/internal/activity"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/platform/httputil"
	"flagdesk/pkg/requestcontext"
)

// Service defines the interface for activity log queries.
type Service interface {
	List(ctx context.Context, req activity.ListRequest) (*activity.Page, error)
}

// Handler wires the activity log endpoint to the lister.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an activity handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the activity endpoint on the router. The caller applies
// the operator gate before mounting.
func (h *Handler) Register(r chi.Router) {
	r.Get("/activity", h.HandleList)
}

// HandleList handles GET /admin/activity requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseListRequest(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.List(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

func parseListRequest(values url.Values) (activity.ListRequest, error) {
	var req activity.ListRequest

	req.Action = strings.TrimSpace(values.Get("action"))
	req.Search = strings.TrimSpace(values.Get("search"))

	var err error
	if req.From, err = parseTimeParam(values, "from"); err != nil {
		return req, err
	}
	if req.To, err = parseTimeParam(values, "to"); err != nil {
		return req, err
	}
	if req.Page, err = parseIntParam(values, "page"); err != nil {
		return req, err
	}
	if req.Limit, err = parseIntParam(values, "limit"); err != nil {
		return req, err
	}

	return req, nil
}

func parseTimeParam(values url.Values, name string) (*time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, name+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func parseIntParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" must be an integer")
	}
	return n, nil
}
