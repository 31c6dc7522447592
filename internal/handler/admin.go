package handler

import (
	"net/http"

	"github.com/actuallystonmai/course-recommender/internal/logging"
)

// GET /dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// POST /admin/catalog/reload
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReloadCatalog(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("courses", res.Courses).Str("hash", res.Hash).
		Bool("changed", res.Changed).Msg("catalog reloaded")
	writeJSON(w, http.StatusOK, res)
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health()
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
