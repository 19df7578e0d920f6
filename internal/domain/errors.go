package domain

import "errors"

// Sentinel errors for cross-source error classification.
// Sources should wrap these so the CLI can handle error categories
// uniformly without importing source-specific client code.
//
//	return fmt.Errorf("failed to fetch series: %w", domain.ErrRateLimited)
var (
	// ErrNotFound indicates the requested network, metric, or remote
	// resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the source throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the source is unreachable or returned a
	// server-side failure; callers may try a fallback source.
	ErrUnavailable = errors.New("source unavailable")

	// ErrNoCredentials indicates a source requires an API key that has
	// not been stored. Checked once per fetch cycle and surfaced as a
	// static message rather than a network failure.
	ErrNoCredentials = errors.New("no credentials configured")
)
