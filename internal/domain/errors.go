package domain

import (
	"errors"
	"fmt"
)

// Upstream failure kinds. Clients wrap these so callers can classify with
// errors.Is without caring which provider or transport produced the failure.
var (
	// ErrStationNotFound means the provider does not know the station. Not
	// retried, but the coordinator still tries the next provider since the
	// networks cover different station sets.
	ErrStationNotFound = errors.New("station not found")

	// ErrRateLimited means the provider signaled throttling. Retried with
	// backoff inside the client before surfacing.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrUnavailable covers network failures, timeouts, and 5xx responses.
	// Retried with backoff inside the client before surfacing.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrBadRequest means the provider rejected the request as malformed.
	// Permanent for this attempt; never retried.
	ErrBadRequest = errors.New("provider rejected request")

	// ErrNoData means the provider answered but had nothing for the
	// requested station or window.
	ErrNoData = errors.New("no data for request")
)

// MissingFieldError is the transformer's precondition failure: a required
// observation field (temperature, humidity, or wind speed) was absent and
// cannot be estimated.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
