package rest

import (
	"encoding/json"
	"fmt"
	"io"
)

// RequestError is a non-success HTTP response from the backend. Detail carries
// the human-readable message to surface to the user.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// extractDetail reads an error body and pulls the backend's `detail` field out
// of it. When the body is not an object, the field is absent, or it is not a
// plain string, the fallback message is returned instead of the raw error.
func extractDetail(r io.Reader, fallback string) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return fallback
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	return fallback
}
