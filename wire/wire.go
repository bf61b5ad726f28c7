// Package wire implements the big-endian framing primitives shared by the
// dealer, the parties and the coordinator. Three integer widths appear on
// the wire: u8, u32 and i64. Vectors are encoded as a u32 element count
// followed by that many i64 elements, which is exactly the surge encoding
// of an []int64, so both directions go through surge buffers.
//
// All reads are exact: a short read or an EOF in the middle of a frame is
// an error, and the caller is expected to treat it as fatal for the
// connection.
package wire

import (
	"fmt"
	"io"

	"github.com/renproject/duoram/ring"
	"github.com/renproject/surge"
)

// MaxVecLen bounds the element count accepted for a single vector frame. A
// length prefix above this bound is treated as a framing error rather than
// an allocation request.
const MaxVecLen = 1 << 20

// WriteU8 writes a single byte.
func WriteU8(w io.Writer, v uint8) error {
	buf := make([]byte, 1)
	if _, _, err := surge.MarshalU8(v, buf, len(buf)); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// ReadU8 reads a single byte.
func ReadU8(r io.Reader) (uint8, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint8
	if _, _, err := surge.UnmarshalU8(&v, buf, len(buf)); err != nil {
		return 0, err
	}
	return v, nil
}

// WriteU32 writes a big-endian u32.
func WriteU32(w io.Writer, v uint32) error {
	buf := make([]byte, 4)
	if _, _, err := surge.MarshalU32(v, buf, len(buf)); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// ReadU32 reads a big-endian u32.
func ReadU32(r io.Reader) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint32
	if _, _, err := surge.UnmarshalU32(&v, buf, len(buf)); err != nil {
		return 0, err
	}
	return v, nil
}

// WriteI64 writes a big-endian i64.
func WriteI64(w io.Writer, v int64) error {
	buf := make([]byte, 8)
	if _, _, err := surge.MarshalI64(v, buf, len(buf)); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// ReadI64 reads a big-endian i64.
func ReadI64(r io.Reader) (int64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v int64
	if _, _, err := surge.UnmarshalI64(&v, buf, len(buf)); err != nil {
		return 0, err
	}
	return v, nil
}

// WriteVec writes a length-prefixed vector: u32 element count followed by
// the big-endian i64 elements.
func WriteVec(w io.Writer, v ring.Vec) error {
	size := surge.SizeHint([]int64(v))
	buf := make([]byte, size)
	if _, _, err := surge.Marshal([]int64(v), buf, size); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// ReadVec reads a length-prefixed vector.
func ReadVec(r io.Reader) (ring.Vec, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	var dim uint32
	if _, _, err := surge.UnmarshalU32(&dim, head, len(head)); err != nil {
		return nil, err
	}
	if dim > MaxVecLen {
		return nil, fmt.Errorf("vector length %v exceeds limit %v", dim, MaxVecLen)
	}
	buf := make([]byte, 4+8*int(dim))
	copy(buf, head)
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, err
	}
	var v []int64
	if _, _, err := surge.Unmarshal(&v, buf, surge.MaxBytes); err != nil {
		return nil, err
	}
	return ring.Vec(v), nil
}

// WriteElems writes exactly len(v) big-endian i64 elements with no length
// prefix. It is used by frames whose element count is carried elsewhere in
// the frame header.
func WriteElems(w io.Writer, v ring.Vec) error {
	buf := make([]byte, 8*len(v))
	rem := len(buf)
	tail := buf
	var err error
	for i := range v {
		tail, rem, err = surge.MarshalI64(v[i], tail, rem)
		if err != nil {
			return err
		}
	}
	_, err = w.Write(buf)
	return err
}

// ReadElems reads exactly dim big-endian i64 elements with no length
// prefix.
func ReadElems(r io.Reader, dim int) (ring.Vec, error) {
	if dim > MaxVecLen {
		return nil, fmt.Errorf("vector length %v exceeds limit %v", dim, MaxVecLen)
	}
	buf := make([]byte, 8*dim)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	v := make(ring.Vec, dim)
	tail := buf
	rem := len(buf)
	var err error
	for i := range v {
		tail, rem, err = surge.UnmarshalI64(&v[i], tail, rem)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}
