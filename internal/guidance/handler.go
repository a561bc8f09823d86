package guidance

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

func (h *Handler) GenerateDuaHandler(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, ModeDua)
}

func (h *Handler) SearchRulingHandler(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, ModeRuling)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, mode Mode) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	res, err := h.service.Resolve(r.Context(), req.Query, mode)
	if err != nil {
		var rerr *ResolutionError
		if errors.As(err, &rerr) {
			response.Error(w, rerr.HTTPStatus(), rerr.Message, nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to process request", nil)
		return
	}

	response.Success(w, res.Payload())
}
