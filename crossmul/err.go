package crossmul

import "errors"

var (
	// ErrSidMismatch signifies that a residual frame arrived with a session
	// id different from the one assigned by the dealer for the current
	// read. The exchange cannot be correlated and the read must abort.
	ErrSidMismatch = errors.New("residual sid mismatch")

	// ErrTagMismatch signifies that a residual frame arrived for a
	// different cross-term than the one currently being evaluated.
	ErrTagMismatch = errors.New("residual tag mismatch")

	// ErrDimensionMismatch signifies that a residual frame carried vectors
	// of a dimension different from the memory dimension.
	ErrDimensionMismatch = errors.New("residual dimension mismatch")
)
