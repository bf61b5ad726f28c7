package dealer

import "errors"

var (
	// ErrBadOp signifies that the first byte of a triple reply was not the
	// expected response opcode.
	ErrBadOp = errors.New("bad op")

	// ErrDimensionMismatch signifies that the dimension echoed in a triple
	// reply does not match the dimension that was requested.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
