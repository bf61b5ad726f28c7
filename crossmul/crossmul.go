// Package crossmul implements the Du-Atallah cross-term multiplication of
// additively shared vectors. The two parties hold shares X = X_A + X_B of
// the memory vector and Y = Y_A + Y_B of the requested basis vector and
// want additive shares of X·Y. Expanding,
//
//	X·Y = X_A·Y_A + X_A·Y_B + X_B·Y_A + X_B·Y_B
//
// the self-terms are local; the two cross-terms are each evaluated with a
// single Beaver-triple-assisted multiplication. Both cross-terms of one
// read consume the same triple, applied with swapped sides, and are
// distinguished on the wire only by their tag.
//
// For one cross-term, the party playing the X side contributes the
// residual parts (x - a_i, -b_i) and the party playing the Y side
// contributes (-a_i, y - b_i). Summing both contributions opens the public
// residuals u = x - (a0+a1) and v = y - (b0+b1), which reveal nothing
// because a and b are uniform. Each party then combines
//
//	A: u·b_i + a_i·v + c_i
//	B: u·b_i + a_i·v + u·v + c_i
//
// and the u·v term is credited to exactly one role so that the two output
// shares sum to x·y in the ring.
package crossmul

import (
	"fmt"

	"github.com/renproject/duoram/ring"
	"github.com/renproject/duoram/triple"
)

// Role is the fixed party label chosen at startup. It decides which side
// of the combine equation a party computes; it is independent of the order
// in which the parties reached the dealer.
type Role uint8

const (
	RoleA = Role(iota)
	RoleB
)

// String implements the Stringer interface.
func (role Role) String() string {
	switch role {
	case RoleA:
		return "A"
	case RoleB:
		return "B"
	default:
		return fmt.Sprintf("Unknown(%v)", uint8(role))
	}
}

// Side is the position a party plays within one cross-term. Each party
// plays the X side in exactly one of the two cross-terms of a read.
type Side uint8

const (
	// SideX holds the memory-vector input x of the cross-term.
	SideX = Side(iota)
	// SideY holds the basis-vector input y of the cross-term.
	SideY
)

// A Transport carries residual frames between the two parties for the
// duration of one read. Implementations must deliver frames reliably and
// in order for a given (sid, tag) pair.
type Transport interface {
	// Send delivers the local residual parts to the peer.
	Send(Residual) error
	// Recv blocks for the peer's residual parts and validates the frame
	// header against the expected sid, tag and dimension.
	Recv(sid int64, tag uint8, dim int) (Residual, error)
}

// Parts returns the local additive parts of the public residuals for one
// cross-term: the X side contributes (x - a_i, -b_i), the Y side
// contributes (-a_i, y - b_i).
func Parts(side Side, input ring.Vec, share triple.Share) (ring.Vec, ring.Vec) {
	if side == SideX {
		u := input.Clone()
		u.Sub(share.A)
		return u, share.B.Neg()
	}
	v := input.Clone()
	v.Sub(share.B)
	return share.A.Neg(), v
}

// Combine computes the local output share from the opened residuals. Role
// B is credited the u·v term.
func Combine(role Role, u, v ring.Vec, share triple.Share) int64 {
	z := u.Dot(share.B) + share.A.Dot(v) + share.C
	if role == RoleB {
		z += u.Dot(v)
	}
	return z
}

// CrossTerm evaluates one cross-term over the given transport and returns
// this party's additive share of the product. The X side sends its
// residual parts before receiving, the Y side receives before sending;
// the opposing orders break the symmetric deadlock without any further
// synchronisation.
func CrossTerm(
	role Role, side Side, tag uint8,
	input ring.Vec, share triple.Share, transport Transport,
) (int64, error) {
	dim := len(input)
	uPart, vPart := Parts(side, input, share)
	mine := Residual{Sid: share.Sid, Tag: tag, U: uPart, V: vPart}

	var theirs Residual
	var err error
	if side == SideX {
		if err = transport.Send(mine); err != nil {
			return 0, fmt.Errorf("sending residual: %v", err)
		}
		if theirs, err = transport.Recv(share.Sid, tag, dim); err != nil {
			return 0, fmt.Errorf("receiving residual: %v", err)
		}
	} else {
		if theirs, err = transport.Recv(share.Sid, tag, dim); err != nil {
			return 0, fmt.Errorf("receiving residual: %v", err)
		}
		if err = transport.Send(mine); err != nil {
			return 0, fmt.Errorf("sending residual: %v", err)
		}
	}

	u := mine.U.Clone()
	u.Add(theirs.U)
	v := mine.V.Clone()
	v.Add(theirs.V)

	return Combine(role, u, v, share), nil
}
