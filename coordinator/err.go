package coordinator

import "errors"

var (
	// ErrIndexOutOfRange signifies that the requested index is not smaller
	// than the memory dimension.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrBadWriteReply signifies that a party acknowledged a write with
	// something other than the literal "OK".
	ErrBadWriteReply = errors.New("bad write reply")
)
