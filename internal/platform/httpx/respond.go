// Package httpx carries the JSON request and response helpers shared by
// every HTTP handler, with errors rendered as RFC7807 problem documents.
package httpx

import (
	"encoding/json"
	"net/http"
)

// problemBase prefixes the slug identifying each problem class, so API
// consumers can switch on Type instead of parsing Detail text.
const problemBase = "https://foundry-erp.dev/problems/"

// ProblemDetail is the RFC7807 body returned for every failed request.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem writes an RFC7807 response for the given problem slug.
func Problem(w http.ResponseWriter, status int, slug, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Type:   problemBase + slug,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON reads the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
