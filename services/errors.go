package services

import (
	"errors"
)

// Sentinel errors for the reconciliation core. HTTP handlers translate
// these to status codes; the webhook handler additionally downgrades
// everything except signature failures to a 200 acknowledgement.
var (
	// ErrOrderNotFound means no local transaction exists for the order id.
	// Caller error, not retried.
	ErrOrderNotFound = errors.New("transaction not found for order")

	// ErrProviderUnavailable means the gateway could not be queried. The
	// transaction stays PENDING and a later sweep retries it.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrPersistence means a store write failed. It must surface to the
	// caller; a reconciliation that hit it has not been applied.
	ErrPersistence = errors.New("persistence failure")
)
