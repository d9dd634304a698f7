package fetcher

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned when the server answers with a non-success status
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// ErrBodyTooLarge is returned when a response body reaches the configured size cap
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch issues a single GET for url and returns the response body
	Fetch(ctx context.Context, url string) ([]byte, error)
}
