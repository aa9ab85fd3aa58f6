package handler

import (
	"strings"

	dErrors "flagdesk/pkg/domain-errors"
)

// CreateCompanyRequest is the HTTP request body for POST /admin/companies.
type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// Validate normalizes and validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateCompanyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 128 characters")
	}

	return nil
}
