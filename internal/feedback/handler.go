package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taqdeer/taqdeer-api/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) Handler {
	return Handler{service: service}
}

func (h *Handler) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	_, err := h.service.Submit(r.Context(), req)
	switch {
	case errors.Is(err, ErrMissingFields):
		response.Error(w, http.StatusBadRequest, "Missing required fields", nil)
	case errors.Is(err, ErrInvalidFeedbackType):
		response.Error(w, http.StatusBadRequest, "Invalid feedback type", map[string]interface{}{
			"feedbackType": Types,
		})
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "Failed to submit feedback", nil)
	default:
		response.Created(w, "Feedback submitted successfully")
	}
}
