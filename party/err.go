package party

import "errors"

var (
	// ErrDimensionMismatch signifies that a client request carried a
	// vector whose dimension does not match the party's memory dimension.
	// The request is fatal for its connection.
	ErrDimensionMismatch = errors.New("request dimension != rows")
)
