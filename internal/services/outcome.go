package services

// Outcome is the result of an analysis helper that never fails the turn:
// either a computed Value, or a documented default with Fallback set and the
// swallowed error kept in Err.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

func succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func fellBack[T any](v T, err error) Outcome[T] {
	return Outcome[T]{Value: v, Fallback: true, Err: err}
}
