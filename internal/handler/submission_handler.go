package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/servicedesk/backend/internal/model"
	"github.com/servicedesk/backend/internal/service"
)

// SubmissionHandler handles the public form and the admin dashboard API.
type SubmissionHandler struct {
	submissionService service.SubmissionService
}

// NewSubmissionHandler creates a SubmissionHandler with the given service.
func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

type submitData struct {
	ID int64 `json:"id"`
}

type submitResponse struct {
	Message string     `json:"message"`
	Data    submitData `json:"data"`
}

type validationResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit handles POST /api/form. All four fields are required.
// Responds 201 as soon as the row is stored; the admin email is sent afterwards.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in model.SubmissionInput
	if err := readJSON(w, r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), in)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{Message: "All fields are required.", Fields: ve.Fields})
		return
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "Internal server error during database operation.")
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		Message: "Submission successful. You will be contacted soon.",
		Data:    submitData{ID: sub.ID},
	})
}

// List handles GET /api/forms (admin only). Newest first.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.List(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal server error fetching data.")
		return
	}

	// Return [] not null for empty lists
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// Resend handles POST /api/forms/{id}/resend (admin only). Waits for the
// email provider and reports its outcome.
func (h *SubmissionHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid submission id.")
		return
	}
	// ids start at 1
	if id <= 0 {
		writeMessage(w, http.StatusNotFound, "Submission not found.")
		return
	}

	err = h.submissionService.Resend(r.Context(), id)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Email successfully resent.")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Submission not found.")
	case errors.Is(err, service.ErrNotify):
		writeJSON(w, http.StatusInternalServerError, resendErrorResponse{Message: err.Error(), Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, resendErrorResponse{
			Message: "Failed to resend email. Check backend logs for details.",
			Error:   service.ErrStoreUnavailable.Error(),
		})
	}
}
