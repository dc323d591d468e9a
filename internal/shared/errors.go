package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	ErrTimeout = fmt.Errorf("operation timed out")

	// Catalog errors
	ErrPlaylistNotFound       = fmt.Errorf("playlist not found")
	ErrSourceUnavailable      = fmt.Errorf("source unavailable")
	ErrDestinationUnavailable = fmt.Errorf("destination unavailable")
	ErrInvalidOwner           = fmt.Errorf("invalid playlist owner")
	ErrAppendRejected         = fmt.Errorf("append rejected")

	// Per-record outcomes, counted and never fatal
	ErrNoMatch         = fmt.Errorf("no match")
	ErrMissingMetadata = fmt.Errorf("missing artist or title")

	// Engine errors
	ErrInvalidState = fmt.Errorf("invalid engine state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AppendRejectedError is returned when the destination answers an append with a non-success status.
//
// Body keeps the raw response for diagnostics.
type AppendRejectedError struct {
	StatusCode int
	Body       []byte
}

func (e *AppendRejectedError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", ErrAppendRejected, e.StatusCode, string(e.Body))
}

func (e *AppendRejectedError) Unwrap() error {
	return ErrAppendRejected
}
