// Package httpx writes the API's response envelope. Every response is
// either {"data": ...} or {"errors": [...]}; the two shapes are built
// by separate constructors so a response can never carry both.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Meta carries pagination information alongside a list's data.
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSON writes an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"errors":[{"type":"EncodeError","status":500,"message":"failed to encode response"}]}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// Data writes a success envelope.
func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, map[string]any{"data": payload})
}

// Page writes a success envelope for a paginated listing.
func Page(w http.ResponseWriter, items any, meta Meta) {
	JSON(w, http.StatusOK, map[string]any{"data": items, "meta": meta})
}

// OK writes a 200 success envelope carrying only a confirmation message.
func OK(w http.ResponseWriter, message string) {
	Data(w, http.StatusOK, map[string]string{"message": message})
}

// Errors writes an error envelope with the given transport status.
func Errors(w http.ResponseWriter, status int, errs any) {
	JSON(w, status, map[string]any{"errors": errs})
}
