package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/storefront/internal/contact"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// ContactHandler forwards contact and quote requests to the backend.
type ContactHandler struct {
	submitter *contact.Submitter
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(s *contact.Submitter) *ContactHandler {
	return &ContactHandler{submitter: s}
}

// --- Input/Output types ---

// SubmitContactInput is a contact or quote request.
type SubmitContactInput struct {
	Body struct {
		Nom       string `json:"nom"                 doc:"Sender name"                   required:"false"`
		Email     string `json:"email"               doc:"Sender email"                  required:"false"`
		Telephone string `json:"telephone,omitempty" doc:"Sender phone number"`
		Message   string `json:"message"             doc:"Request body"                  required:"false"`
		Type      string `json:"type"                doc:"Request type, e.g. contact or devis" required:"false"`
		ServiceID string `json:"serviceId,omitempty" doc:"Service the request is about"`
	}
}

// SubmitContactOutput is the response for a submitted request.
type SubmitContactOutput struct {
	Body struct {
		Sent    bool   `json:"sent"`
		Message string `json:"message"`
	}
}

// --- Handlers ---

// Submit validates and forwards a contact request. Field errors are
// reported as 422 with one detail per field.
func (h *ContactHandler) Submit(
	ctx context.Context,
	input *SubmitContactInput,
) (*SubmitContactOutput, error) {
	req := domain.ContactRequest{
		Nom:       input.Body.Nom,
		Email:     input.Body.Email,
		Telephone: input.Body.Telephone,
		Message:   input.Body.Message,
		Type:      input.Body.Type,
		ServiceID: input.Body.ServiceID,
	}

	if err := h.submitter.Validate(&req); err != nil {
		var verr *contact.ValidationError
		if !errors.As(err, &verr) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error422UnprocessableEntity("validation failed", fieldDetails(verr)...)
	}

	if !h.submitter.Submit(ctx, &req) {
		return nil, huma.Error502BadGateway(contact.MsgFailed)
	}

	resp := &SubmitContactOutput{}
	resp.Body.Sent = true
	resp.Body.Message = contact.MsgSent
	return resp, nil
}

func fieldDetails(verr *contact.ValidationError) []error {
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make([]error, 0, len(names))
	for _, name := range names {
		details = append(details, &huma.ErrorDetail{
			Location: "body." + name,
			Message:  verr.Fields[name],
		})
	}
	return details
}

// RegisterContactRoutes registers contact endpoints with the Huma API.
func RegisterContactRoutes(api huma.API, h *ContactHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-contact",
		Method:        http.MethodPost,
		Path:          "/api/v1/contact",
		Summary:       "Submit a contact request",
		Description:   "Validates a contact or quote request and forwards it to the backend.",
		Tags:          []string{"contact"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.Submit)
}
