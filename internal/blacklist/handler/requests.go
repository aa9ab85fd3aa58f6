package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"flagdesk/internal/blacklist/models"
	"flagdesk/internal/blacklist/service"
	id "flagdesk/pkg/domain"
	dErrors "flagdesk/pkg/domain-errors"
)

// CreateEntryRequest is the HTTP request body for POST /api/blacklist.
type CreateEntryRequest struct {
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	IDNumber       string   `json:"id_number"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email"`
	FaceImageURL   *string  `json:"face_image_url"`
	IDDocumentURLs []string `json:"id_document_urls"`
	Reason         string   `json:"reason"`
}

// Validate normalizes and validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateEntryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	r.Reason = strings.TrimSpace(r.Reason)

	for _, f := range []struct {
		name  string
		value string
	}{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"id_number", r.IDNumber},
		{"reason", r.Reason},
	} {
		if f.value == "" {
			return dErrors.New(dErrors.CodeInvalidInput, f.name+" is required")
		}
	}

	return nil
}

// Submission converts the request into the domain submission.
func (r *CreateEntryRequest) Submission() models.Submission {
	return models.Submission{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		IDNumber:       r.IDNumber,
		Phone:          r.Phone,
		Email:          r.Email,
		FaceImageURL:   r.FaceImageURL,
		IDDocumentURLs: r.IDDocumentURLs,
		Reason:         r.Reason,
	}
}

// ToggleStatusRequest is the HTTP request body for POST /api/blacklist/{entryID}/status.
type ToggleStatusRequest struct {
	IsBlacklisted *bool `json:"is_blacklisted"`
}

// Validate checks the toggle flag is present.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ToggleStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.IsBlacklisted == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "is_blacklisted is required")
	}
	return nil
}

// parseListRequest decodes list filters and pagination from query parameters.
func parseListRequest(values url.Values) (service.ListRequest, error) {
	var req service.ListRequest

	if raw := values.Get("company_id"); raw != "" {
		companyID, err := id.ParseCompanyID(raw)
		if err != nil {
			return req, err
		}
		req.Company = &companyID
	}
	req.Status = strings.TrimSpace(values.Get("status"))
	req.Search = strings.TrimSpace(values.Get("search"))

	var err error
	if req.From, err = parseTimeParam(values, "from"); err != nil {
		return req, err
	}
	if req.To, err = parseTimeParam(values, "to"); err != nil {
		return req, err
	}
	if req.MinScore, err = parseIntParam(values, "min_score"); err != nil {
		return req, err
	}
	if req.MaxScore, err = parseIntParam(values, "max_score"); err != nil {
		return req, err
	}

	if page, err := parseIntParam(values, "page"); err != nil {
		return req, err
	} else if page != nil {
		req.Page = *page
	}
	if limit, err := parseIntParam(values, "limit"); err != nil {
		return req, err
	} else if limit != nil {
		req.Limit = *limit
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

func parseIntParam(values url.Values, name string) (*int, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, name+" must be an integer")
	}
	return &n, nil
}
