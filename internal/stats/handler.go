package stats

import (
	"net/http"

	"github.com/taqdeer/taqdeer-api/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) Handler {
	return Handler{service: service}
}

func (h *Handler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.Snapshot(r.Context()))
}

// Tracking endpoints always report success so the UI never surfaces a
// counter failure.
func (h *Handler) TrackVisitorHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RecordVisitor(r.Context()); err != nil {
		h.service.log.Warn("visitor not tracked", "error", err)
		response.Success(w, response.MessageBody{Success: true, Message: "Error tracking visitor, but request successful"})
		return
	}
	response.Success(w, response.MessageBody{Success: true})
}

func (h *Handler) TrackShareHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RecordShare(r.Context()); err != nil {
		h.service.log.Warn("share not tracked", "error", err)
		response.Success(w, response.MessageBody{Success: true, Message: "Error tracking share, but request successful"})
		return
	}
	response.Success(w, response.MessageBody{Success: true})
}
