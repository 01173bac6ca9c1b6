package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the error envelope every endpoint uses:
// {"error": "...", "detalle": "..."}.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detalle,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServerError reports a store or transaction failure. The detail
// string mirrors what the client already relied on.
func writeServerError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:  "Error del servidor",
		Detail: err.Error(),
	})
}
