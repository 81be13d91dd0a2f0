package providerapi

import "errors"

var (
	// ErrFetchFailed wraps network and server failures. Callers show a retry
	// affordance; no automatic retry is performed and draft state is kept.
	ErrFetchFailed = errors.New("provider api request failed")

	// ErrSlotTaken means the backend rejected a booking because the slot was
	// taken between slot-list fetch and submission. The availability snapshot
	// should be refetched before the user retries.
	ErrSlotTaken = errors.New("slot no longer available")

	// ErrValidationRejected carries a backend validation message verbatim,
	// e.g. a cancellation-window violation. There is no local recovery beyond
	// informing the user.
	ErrValidationRejected = errors.New("rejected by provider")
)
