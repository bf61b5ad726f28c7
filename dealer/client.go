package dealer

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/renproject/duoram/triple"
	"github.com/renproject/duoram/wire"
)

// Fetch requests one triple share of the given dimension from the dealer
// at addr and blocks until the dealer has paired the request and replied.
// A non-zero timeout bounds both the dial and the wait for a peer; when it
// expires the connection is torn down and the fetch fails, which the
// caller must treat as dealer starvation.
func Fetch(addr string, dim int, timeout time.Duration) (triple.Share, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return triple.Share{}, fmt.Errorf("dialing dealer: %v", err)
	}
	defer conn.Close()
	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return triple.Share{}, err
		}
	}

	w := bufio.NewWriter(conn)
	if err := wire.WriteU8(w, OpRequest); err != nil {
		return triple.Share{}, err
	}
	if err := wire.WriteU32(w, uint32(dim)); err != nil {
		return triple.Share{}, err
	}
	if err := w.Flush(); err != nil {
		return triple.Share{}, err
	}

	op, err := wire.ReadU8(conn)
	if err != nil {
		return triple.Share{}, fmt.Errorf("reading reply: %v", err)
	}
	if op != OpResponse {
		return triple.Share{}, ErrBadOp
	}
	rdim, err := wire.ReadU32(conn)
	if err != nil {
		return triple.Share{}, err
	}
	if rdim != uint32(dim) {
		return triple.Share{}, ErrDimensionMismatch
	}
	sid, err := wire.ReadI64(conn)
	if err != nil {
		return triple.Share{}, err
	}
	a, err := wire.ReadElems(conn, dim)
	if err != nil {
		return triple.Share{}, err
	}
	b, err := wire.ReadElems(conn, dim)
	if err != nil {
		return triple.Share{}, err
	}
	c, err := wire.ReadI64(conn)
	if err != nil {
		return triple.Share{}, err
	}

	return triple.Share{Sid: sid, A: a, B: b, C: c}, nil
}
