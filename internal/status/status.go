package status

import "errors"

// Error taxonomy of the ticket-asset engine. Handlers map these with
// errors.Is; services wrap them with fmt.Errorf("...: %w", ...) so the
// reason string travels with the class.
var (
	// ErrNotFound covers unknown events, ticket assets and configs.
	ErrNotFound = errors.New("record not found")

	// ErrPolicyViolation covers organizer policy rejections: NFTs disabled
	// for the event, transfers disallowed, burning disallowed, and every
	// resale-policy rejection.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrInvalidState marks a lifecycle operation requested from a status
	// that does not permit it (e.g. retrying a non-failed asset). Also
	// returned when a concurrent request won the status transition race.
	ErrInvalidState = errors.New("invalid lifecycle state")

	// ErrPlatformFailure marks an adapter error or timeout during
	// mint/transfer/burn. The asset stays retryable.
	ErrPlatformFailure = errors.New("platform operation failed")

	// ErrMetadataInvalid marks generated metadata failing validation.
	// Treated like a platform failure for the mint pipeline, but callers
	// should fix configuration before retrying.
	ErrMetadataInvalid = errors.New("invalid asset metadata")
)
