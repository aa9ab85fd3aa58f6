package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	companymodels "flagdesk/internal/company/models"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/platform/httputil"
	"flagdesk/pkg/requestcontext"
)

// Service defines the interface for company operations.
type Service interface {
	Create(ctx context.Context, actor id.UserID, name string) (*companymodels.Company, error)
	Get(ctx context.Context, companyID id.CompanyID) (*companymodels.Company, error)
	GetByName(ctx context.Context, name string) (*companymodels.Company, error)
	Deactivate(ctx context.Context, actor id.UserID, companyID id.CompanyID) (*companymodels.Company, error)
	Reactivate(ctx context.Context, actor id.UserID, companyID id.CompanyID) (*companymodels.Company, error)
}

// Handler wires company registry endpoints to the company service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a company handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts company endpoints on the router. The caller applies the
// operator gate before mounting.
func (h *Handler) Register(r chi.Router) {
	r.Post("/companies", h.HandleCreate)
	r.Get("/companies", h.HandleGetByName)
	r.Get("/companies/{companyID}", h.HandleGet)
	r.Post("/companies/{companyID}/deactivate", h.HandleDeactivate)
	r.Post("/companies/{companyID}/reactivate", h.HandleReactivate)
}

// HandleCreate handles POST /admin/companies requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateCompanyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	company, err := h.service.Create(ctx, requestcontext.UserID(ctx), req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "company creation failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "company created",
		"request_id", requestID,
		"company_id", company.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, company)
}

// HandleGet handles GET /admin/companies/{companyID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := id.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	company, err := h.service.Get(ctx, companyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, company)
}

// HandleGetByName handles GET /admin/companies?name= requests.
func (h *Handler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	company, err := h.service.GetByName(ctx, r.URL.Query().Get("name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, company)
}

// HandleDeactivate handles POST /admin/companies/{companyID}/deactivate requests.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "company deactivation failed", h.service.Deactivate)
}

// HandleReactivate handles POST /admin/companies/{companyID}/reactivate requests.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "company reactivation failed", h.service.Reactivate)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, failureMsg string, op func(context.Context, id.UserID, id.CompanyID) (*companymodels.Company, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, err := id.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	company, err := op(ctx, requestcontext.UserID(ctx), companyID)
	if err != nil {
		h.logger.ErrorContext(ctx, failureMsg,
			"request_id", requestID,
			"company_id", companyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, company)
}
