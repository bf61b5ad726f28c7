// Package coordinator implements the client side of the oblivious
// read/write service. The coordinator trusts neither party individually:
// every request is split into two additive shares and one share is
// dispatched to each party, so that neither the index nor the value is
// visible to a party in isolation.
package coordinator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/renproject/duoram/party"
	"github.com/renproject/duoram/ring"
	"github.com/renproject/duoram/wire"
)

// A Client coordinates requests against a fixed pair of parties.
type Client struct {
	// C0 and C1 are the user-request addresses of the two parties. Which
	// party plays role A and which plays role B is irrelevant to the
	// coordinator; the shares are symmetric.
	C0, C1 string
}

// Write stores val at idx: both parties accumulate their share of the
// sparse vector val*e_idx. The two sends run in parallel and the write
// succeeds only when both parties have acknowledged.
func (client Client) Write(dim, idx int, val int64) error {
	if idx >= dim {
		return ErrIndexOutOfRange
	}
	e, f := ring.Split(ring.Basis(dim, idx, val))
	return client.WriteShares(e, f)
}

// Read recovers the value stored at idx by summing the two parties'
// shares of the inner product memory . e_idx.
func (client Client) Read(dim, idx int) (int64, error) {
	if idx >= dim {
		return 0, ErrIndexOutOfRange
	}
	e, f := ring.Split(ring.Basis(dim, idx, 1))
	s0, s1, err := client.ReadShares(e, f)
	if err != nil {
		return 0, err
	}
	return s0 + s1, nil
}

// WriteShares sends one prepared share vector to each party in parallel
// and awaits both acknowledgements. The vectors must already sum to the
// intended sparse update.
func (client Client) WriteShares(v0, v1 ring.Vec) error {
	g := new(errgroup.Group)
	g.Go(func() error { return writeVec(client.C0, v0) })
	g.Go(func() error { return writeVec(client.C1, v1) })
	return g.Wait()
}

// ReadShares sends one prepared basis-vector share to each party in
// parallel and returns the two scalar shares. Parallelism is required for
// liveness: each party blocks inside the read protocol until its peer has
// also received a request.
func (client Client) ReadShares(e0, e1 ring.Vec) (int64, int64, error) {
	var s0, s1 int64
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		s0, err = readShare(client.C0, e0)
		return err
	})
	g.Go(func() error {
		var err error
		s1, err = readShare(client.C1, e1)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return s0, s1, nil
}

// writeVec performs one WRITE round-trip: op, vector, then the two-byte
// acknowledgement.
func writeVec(addr string, vec ring.Vec) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %v: %v", addr, err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := wire.WriteU8(w, party.OpWrite); err != nil {
		return err
	}
	if err := wire.WriteVec(w, vec); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ok := make([]byte, 2)
	if _, err := io.ReadFull(conn, ok); err != nil {
		return fmt.Errorf("awaiting write ack: %v", err)
	}
	if !bytes.Equal(ok, []byte("OK")) {
		return ErrBadWriteReply
	}
	return nil
}

// readShare performs one READ round-trip: op, basis-vector share, then
// the party's scalar share of the result.
func readShare(addr string, vec ring.Vec) (int64, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("dialing %v: %v", addr, err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := wire.WriteU8(w, party.OpRead); err != nil {
		return 0, err
	}
	if err := wire.WriteVec(w, vec); err != nil {
		return 0, err
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}

	share, err := wire.ReadI64(conn)
	if err != nil {
		return 0, fmt.Errorf("awaiting read share: %v", err)
	}
	return share, nil
}
