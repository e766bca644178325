package handler

import (
	"net/http"

	"github.com/capitalize-ai/feedback-simulator/internal/catalog"
)

// ActionsResponse lists the predefined actions a client can offer.
type ActionsResponse struct {
	Actions []catalog.Action `json:"actions"`
}

// Actions handles GET /api/actions
func Actions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &ActionsResponse{Actions: catalog.Actions()})
}
