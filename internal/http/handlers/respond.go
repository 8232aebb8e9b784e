package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON writes v as the JSON response body
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// respondMessage sends a {"message": ...} body, the shape the login flow
// renders directly to the user
func respondMessage(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"message": message})
}
