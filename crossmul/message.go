package crossmul

import (
	"bufio"
	"io"

	"github.com/renproject/duoram/ring"
	"github.com/renproject/duoram/wire"
)

// Tags identifying the two cross-terms of one read. Both cross-terms
// consume the same triple and are distinguished on the wire only by tag.
const (
	TagFirst  = uint8(0x01)
	TagSecond = uint8(0x10)
)

// A Residual is one party's half of the public residual vectors for a
// single cross-term: U is its additive part of u = x - a and V its part of
// v = y - b. The frame layout is
// [sid:i64][tag:u8][|u|:u32][u...][|v|:u32][v...].
type Residual struct {
	Sid int64
	Tag uint8
	U   ring.Vec
	V   ring.Vec
}

// Encode writes the residual frame to w.
func (res Residual) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := wire.WriteI64(bw, res.Sid); err != nil {
		return err
	}
	if err := wire.WriteU8(bw, res.Tag); err != nil {
		return err
	}
	if err := wire.WriteVec(bw, res.U); err != nil {
		return err
	}
	if err := wire.WriteVec(bw, res.V); err != nil {
		return err
	}
	return bw.Flush()
}

// Decode reads a residual frame from r.
func (res *Residual) Decode(r io.Reader) error {
	sid, err := wire.ReadI64(r)
	if err != nil {
		return err
	}
	tag, err := wire.ReadU8(r)
	if err != nil {
		return err
	}
	u, err := wire.ReadVec(r)
	if err != nil {
		return err
	}
	v, err := wire.ReadVec(r)
	if err != nil {
		return err
	}
	res.Sid, res.Tag, res.U, res.V = sid, tag, u, v
	return nil
}

// Check validates the residual header and dimensions against the
// expectation for the current cross-term. Any mismatch is fatal for the
// read that the exchange belongs to.
func (res Residual) Check(sid int64, tag uint8, dim int) error {
	if res.Sid != sid {
		return ErrSidMismatch
	}
	if res.Tag != tag {
		return ErrTagMismatch
	}
	if len(res.U) != dim || len(res.V) != dim {
		return ErrDimensionMismatch
	}
	return nil
}
