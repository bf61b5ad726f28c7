// Package dealer implements the correlated-randomness service. Parties
// connect, request a triple for a given dimension, and block until a
// second request for the same dimension arrives. The dealer then samples
// one fresh Beaver triple, hands one additive share to each of the two
// connections, and closes them. Beyond the transient waiting table the
// dealer keeps no state between pairings, so recovery from any failure is
// bounded to reconnect-and-retry.
package dealer

import (
	"bufio"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/renproject/duoram/triple"
	"github.com/renproject/duoram/wire"
)

// Opcodes for the triple request protocol.
const (
	OpRequest  = uint8(0x31)
	OpResponse = uint8(0x33)
)

// Options configure a Dealer.
type Options struct {
	// WaitTimeout bounds how long a lone request may sit in the waiting
	// table before it is dropped and its connection closed. Zero means
	// wait forever: a lone request whose requester keeps the connection
	// open stays in the table until a peer arrives.
	WaitTimeout time.Duration

	Logger *zap.Logger
}

// A Dealer pairs triple requests and serves correlated randomness.
type Dealer struct {
	table       *Table
	waitTimeout time.Duration
	logger      *zap.Logger
}

// New returns a Dealer with the given options.
func New(opts Options) *Dealer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dealer{
		table:       NewTable(),
		waitTimeout: opts.WaitTimeout,
		logger:      logger,
	}
}

// Serve accepts connections on the given listener until the listener is
// closed. Each connection is handled on its own goroutine.
func (d *Dealer) Serve(ls net.Listener) error {
	d.logger.Info("dealer listening", zap.String("addr", ls.Addr().String()))
	for {
		conn, err := ls.Accept()
		if err != nil {
			return err
		}
		go d.handle(conn)
	}
}

// handle reads one triple request from conn. A malformed request closes
// the connection silently. A well-formed request either pairs with a
// waiter, in which case both sides are served and closed, or becomes the
// waiter for its dimension.
func (d *Dealer) handle(conn net.Conn) {
	op, err := wire.ReadU8(conn)
	if err != nil || op != OpRequest {
		conn.Close()
		return
	}
	dim, err := wire.ReadU32(conn)
	if err != nil || dim == 0 || dim > wire.MaxVecLen {
		conn.Close()
		return
	}

	peer, paired := d.table.Rendezvous(dim, conn)
	if !paired {
		d.logger.Debug("waiting for peer", zap.Uint32("dim", dim))
		if d.waitTimeout > 0 {
			time.AfterFunc(d.waitTimeout, func() {
				if d.table.Remove(dim, conn) {
					d.logger.Warn("dropping stale waiter", zap.Uint32("dim", dim))
					conn.Close()
				}
			})
		}
		// The requester sends nothing after its request, so this read
		// returns only once the connection is closed by either end.
		go func() {
			if _, err := conn.Read(make([]byte, 1)); err != nil && d.table.Remove(dim, conn) {
				d.logger.Debug("dropping disconnected waiter", zap.Uint32("dim", dim))
				conn.Close()
			}
		}()
		return
	}

	// Generation and I/O happen outside the table's critical region.
	s0, s1 := triple.Generate(int(dim))
	d.logger.Debug("paired", zap.Uint32("dim", dim), zap.Int64("sid", s0.Sid))

	if err := sendShare(peer, dim, s0); err != nil {
		d.logger.Error("sending first share", zap.Error(err))
	}
	peer.Close()

	if err := sendShare(conn, dim, s1); err != nil {
		d.logger.Error("sending second share", zap.Error(err))
	}
	conn.Close()
}

// sendShare writes a triple reply frame:
// [op][dim:u32][sid:i64][a: dim x i64][b: dim x i64][c: i64].
func sendShare(conn net.Conn, dim uint32, share triple.Share) error {
	w := bufio.NewWriter(conn)
	if err := wire.WriteU8(w, OpResponse); err != nil {
		return err
	}
	if err := wire.WriteU32(w, dim); err != nil {
		return err
	}
	if err := wire.WriteI64(w, share.Sid); err != nil {
		return err
	}
	if err := wire.WriteElems(w, share.A); err != nil {
		return err
	}
	if err := wire.WriteElems(w, share.B); err != nil {
		return err
	}
	if err := wire.WriteI64(w, share.C); err != nil {
		return err
	}
	return w.Flush()
}
