package reference

import (
	"net/http"
	"strings"

	"github.com/taqdeer/taqdeer-api/pkg/response"
)

type Resolution struct {
	Source    string `json:"source"`
	Link      *Link  `json:"link"`
	Grade     string `json:"grade,omitempty"`
	GradeTier Tier   `json:"gradeTier"`
}

func Resolve(source string) Resolution {
	grade := ExtractGrade(source)
	return Resolution{
		Source:    source,
		Link:      LinkFor(source),
		Grade:     grade,
		GradeTier: GradeTier(grade),
	}
}

// LinkHandler serves GET /api/reference?source=...
func LinkHandler(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		response.Error(w, http.StatusBadRequest, "Source is required", nil)
		return
	}
	response.Success(w, Resolve(source))
}
