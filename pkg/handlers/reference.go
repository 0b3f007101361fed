package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	facore "github.com/xhn-ccc/fat-analysis-tool"
)

// ReferenceHandler exposes the active reference table.
type ReferenceHandler struct {
	table *facore.ReferenceTable
}

func NewReferenceHandler(table *facore.ReferenceTable) *ReferenceHandler {
	return &ReferenceHandler{table: table}
}

// Reference handles GET /reference.
func (h *ReferenceHandler) Reference(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"entries": h.table.All(),
		"count":   h.table.Len(),
	})
}
