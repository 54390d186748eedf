package controllers

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeInvalid(w http.ResponseWriter, details []FieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid data", Details: details})
}
