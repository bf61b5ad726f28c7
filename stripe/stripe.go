// Package stripe layers fixed-width string storage on top of the integer
// read/write service. A string slot occupies Width consecutive logical
// rows, one codepoint per row, so a memory of n slots is backed by a
// vector of n*Width integers. Storing a string is a read-merge-write:
// the current codepoints are read first and the single write carries the
// delta that moves each row to its new value.
package stripe

import (
	"strings"

	"github.com/renproject/duoram/coordinator"
	"github.com/renproject/duoram/ring"
)

// Width is the number of rows backing one string slot. Longer strings are
// truncated, shorter ones are zero-padded.
const Width = 10

// A Store adapts a coordinator client to string slots.
type Store struct {
	client coordinator.Client
	slots  int
}

// NewStore returns a Store over the given parties backed by slots*Width
// rows of integer memory.
func NewStore(client coordinator.Client, slots int) Store {
	return Store{client: client, slots: slots}
}

// Dim returns the backing memory dimension.
func (s Store) Dim() int {
	return s.slots * Width
}

// Put stores val in the given slot, truncating it to Width codepoints.
// The per-row reads run sequentially: two in-flight reads on the same
// party pair could cross-pair at the dealer, and the striping layer has
// no sid of its own to tell the exchanges apart.
func (s Store) Put(idx int, val string) error {
	if idx >= s.slots {
		return coordinator.ErrIndexOutOfRange
	}

	current, err := s.readSlot(idx)
	if err != nil {
		return err
	}

	target := make([]int64, Width)
	for i, r := range []rune(val) {
		if i >= Width {
			break
		}
		target[i] = int64(r)
	}

	dim := s.Dim()
	v0, v1 := ring.NewVec(dim), ring.NewVec(dim)
	for i := 0; i < Width; i++ {
		e, f := ring.Split(ring.Basis(dim, Width*idx+i, target[i]-current[i]))
		v0.Add(e)
		v1.Add(f)
	}
	return s.client.WriteShares(v0, v1)
}

// Get loads the string stored in the given slot. Decoding stops at the
// first zero row, which is taken as the start of the padding.
func (s Store) Get(idx int) (string, error) {
	if idx >= s.slots {
		return "", coordinator.ErrIndexOutOfRange
	}

	rows, err := s.readSlot(idx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, r := range rows {
		if r == 0 {
			break
		}
		b.WriteRune(rune(r))
	}
	return b.String(), nil
}

// readSlot reads the Width codepoints backing one slot, one secure read
// per row.
func (s Store) readSlot(idx int) ([]int64, error) {
	dim := s.Dim()
	rows := make([]int64, Width)
	for i := 0; i < Width; i++ {
		e, f := ring.Split(ring.Basis(dim, Width*idx+i, 1))
		s0, s1, err := s.client.ReadShares(e, f)
		if err != nil {
			return nil, err
		}
		rows[i] = s0 + s1
	}
	return rows, nil
}
