package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the nutrition service cannot resolve a food
	ErrNotFound = errors.New("food not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyRecipe is returned when every ingredient name is blank
	ErrEmptyRecipe = errors.New("please add at least one ingredient")

	// ErrAPIUnavailable is returned when the nutrition service cannot be reached
	ErrAPIUnavailable = errors.New("nutrition service unavailable")

	// ErrSuperseded is returned when a newer search from the same session cancelled this one
	ErrSuperseded = errors.New("superseded by a newer search")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// APIError is a non-success response from the nutrition service.
// Message is the service's own error text and is shown to the user as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("nutrition service returned status %d", e.Status)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrNotFound) match a 404 from the service.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
