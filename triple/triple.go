// Package triple implements sampling and additive splitting of Beaver
// multiplication triples, the correlated randomness consumed by the secure
// read protocol. A triple is a pair of vectors a, b and a scalar c = a·b in
// the wrapping i64 ring. The dealer never hands the triple itself to
// anyone: it is split into two additive shares, one per party, and the
// shares are correlated so that
//
//	(a0 + a1) · (b0 + b1) = c0 + c1
//
// holds in the ring.
package triple

import (
	"math/rand"

	"github.com/renproject/duoram/ring"
)

// A Share is one party's half of a triple. Sid is the dealer-assigned
// session id that the two parties use to correlate their halves; it is the
// same on both shares of a split and is a 63-bit non-negative integer.
type Share struct {
	Sid int64
	A   ring.Vec
	B   ring.Vec
	C   int64
}

// Dim returns the dimension of the share's vectors.
func (share Share) Dim() int {
	return len(share.A)
}

// Generate samples a fresh triple of the given dimension and returns its
// two additive shares. The a and b inputs are sampled directly in split
// form, c is computed from the reconstructed vectors and then split with a
// random offset.
func Generate(dim int) (Share, Share) {
	a0, a1 := ring.Random(dim), ring.Random(dim)
	b0, b1 := ring.Random(dim), ring.Random(dim)

	a := a0.Clone()
	a.Add(a1)
	b := b0.Clone()
	b.Add(b1)

	c := a.Dot(b)
	c0 := ring.RandomElem()
	c1 := c - c0

	sid := rand.Int63()

	return Share{Sid: sid, A: a0, B: b0, C: c0},
		Share{Sid: sid, A: a1, B: b1, C: c1}
}

// Verify reports whether two shares reconstruct to a consistent triple:
// same sid, same dimension, and (a0+a1)·(b0+b1) = c0+c1 in the ring.
func Verify(s0, s1 Share) bool {
	if s0.Sid != s1.Sid {
		return false
	}
	if s0.Dim() != s1.Dim() || len(s0.B) != len(s1.B) {
		return false
	}
	a := s0.A.Clone()
	a.Add(s1.A)
	b := s0.B.Clone()
	b.Add(s1.B)
	return a.Dot(b) == s0.C+s1.C
}
