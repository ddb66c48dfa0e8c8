package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"issue-blog-cms/models"
)

var (
	// ErrTimeout is returned when a request exceeds the client timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrMalformed is returned when a 2xx body is not valid JSON for the target type.
	ErrMalformed = errors.New("malformed response")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error: %d %s - %s", e.Status, http.StatusText(e.Status), e.Body)
}

// Is makes a GET 404 match models.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == models.ErrNotFound && e.Status == http.StatusNotFound && e.Method == http.MethodGet
}

// Message returns the "error" field of a JSON body when present, else the raw body.
func (e *StatusError) Message() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(e.Body)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
