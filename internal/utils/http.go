package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// internalErrorBody is sent when a response value cannot be marshalled.
const internalErrorBody = `{"error":"Internal Server Error"}`

// WriteJSON answers with data marshalled as JSON and statusCode. The body is
// marshalled before any header is written, so a marshalling failure still
// produces a clean 500 with a JSON error body.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) error {
	body, err := json.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(internalErrorBody)
		err = fmt.Errorf("marshal response body: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)

	if _, werr := w.Write(body); werr != nil && err == nil {
		err = fmt.Errorf("write response body: %w", werr)
	}
	return err
}
