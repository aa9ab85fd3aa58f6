package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/service"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
	"flagdesk/pkg/platform/httputil"
	"flagdesk/pkg/requestcontext"
)

// Service defines the interface for blacklist entry operations.
type Service interface {
	Create(ctx context.Context, principalID id.UserID, sub models.Submission) (*models.Entry, error)
	List(ctx context.Context, principalID id.UserID, req service.ListRequest) (*service.Page, error)
	Get(ctx context.Context, principalID id.UserID, entryID id.EntryID) (*models.Entry, error)
	Update(ctx context.Context, principalID id.UserID, entryID id.EntryID, patch models.Patch) (*models.Entry, error)
	Delete(ctx context.Context, principalID id.UserID, entryID id.EntryID) error
	ToggleStatus(ctx context.Context, principalID id.UserID, entryID id.EntryID, blacklisted bool) (*models.Entry, error)
}

// Handler wires blacklist endpoints to the blacklist service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a blacklist handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts blacklist endpoints on the router. The caller applies the
// authentication gate before mounting.
func (h *Handler) Register(r chi.Router) {
	r.Post("/blacklist", h.HandleCreate)
	r.Get("/blacklist", h.HandleList)
	r.Get("/blacklist/{entryID}", h.HandleGet)
	r.Patch("/blacklist/{entryID}", h.HandleUpdate)
	r.Delete("/blacklist/{entryID}", h.HandleDelete)
	r.Post("/blacklist/{entryID}/status", h.HandleToggleStatus)
}

// HandleCreate handles POST /api/blacklist requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateEntryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Create(ctx, userID, req.Submission())
	if err != nil {
		h.logger.ErrorContext(ctx, "entry creation failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "entry created",
		"request_id", requestID,
		"user_id", userID,
		"entry_id", entry.ID,
		"blacklist_score", entry.BlacklistScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleList handles GET /api/blacklist requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, err := parseListRequest(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.List(ctx, userID, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "entry listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleGet handles GET /api/blacklist/{entryID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, ok := parseEntryID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Get(ctx, userID, entryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleUpdate handles PATCH /api/blacklist/{entryID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, ok := parseEntryID(w, r)
	if !ok {
		return
	}

	patch, ok := httputil.DecodeAndPrepare[models.Patch](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Update(ctx, userID, entryID, *patch)
	if err != nil {
		h.logger.ErrorContext(ctx, "entry update failed",
			"request_id", requestID,
			"user_id", userID,
			"entry_id", entryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleDelete handles DELETE /api/blacklist/{entryID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, ok := parseEntryID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, entryID); err != nil {
		h.logger.ErrorContext(ctx, "entry deletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"entry_id", entryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleStatus handles POST /api/blacklist/{entryID}/status requests.
func (h *Handler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, ok := parseEntryID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ToggleStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.ToggleStatus(ctx, userID, entryID, *req.IsBlacklisted)
	if err != nil {
		h.logger.ErrorContext(ctx, "entry status toggle failed",
			"request_id", requestID,
			"user_id", userID,
			"entry_id", entryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func parseEntryID(w http.ResponseWriter, r *http.Request) (id.EntryID, bool) {
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.EntryID{}, false
	}
	return entryID, true
}
