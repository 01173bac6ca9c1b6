package handlers

import "net/http"

// HealthHandler answers GET /api with the storefront's liveness probe.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"mensaje": "¡API funcionando!",
			"status":  http.StatusOK,
		})
	}
}
