package achievement

import "errors"

var (
	// ErrNotFound means the referenced achievement id is not in the
	// catalog. Unlock records should never point at a missing definition,
	// so hitting this from ledger data is a data-integrity fault.
	ErrNotFound = errors.New("achievement not found")

	// ErrThresholdNotMet means an unlock was requested with a progress
	// value below the definition's threshold. The engine never unlocks
	// early, so the request is rejected outright.
	ErrThresholdNotMet = errors.New("progress threshold not met")

	// ErrStorageUnavailable wraps database failures on the ledger path.
	// Callers should retry on their next poll tick rather than treat a
	// previously unlocked achievement as locked.
	ErrStorageUnavailable = errors.New("achievement storage unavailable")
)
