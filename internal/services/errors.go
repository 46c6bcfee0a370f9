package services

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// UnavailableError is returned when a dependency failed to initialize at
// startup and the request cannot be served at all.
type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }

// UpstreamError wraps a failure of a managed AI service on the critical path.
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }
