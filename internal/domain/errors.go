package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnsupportedCountry is returned when no retailers are registered for a country
	ErrUnsupportedCountry = errors.New("country not supported")

	// ErrInterpretationFailed is returned when the language service response cannot be used
	ErrInterpretationFailed = errors.New("query interpretation failed")

	// ErrProviderUnavailable is returned when no language provider can serve a request
	ErrProviderUnavailable = errors.New("language provider unavailable")

	// ErrAdapterTimeout is recorded when a retailer adapter exceeds its time budget
	ErrAdapterTimeout = errors.New("retailer adapter timed out")

	// ErrAdapterFailure is recorded when a retailer adapter errors or panics
	ErrAdapterFailure = errors.New("retailer adapter failed")

	// ErrRetailerRequest is returned when a retailer page cannot be fetched
	ErrRetailerRequest = errors.New("retailer request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
