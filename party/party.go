// Package party implements one of the two share-holding parties of the
// oblivious read/write service. A party owns one additive share of the
// memory vector and listens on two endpoints: one for client requests and
// one for residual exchanges with its peer. Client requests are processed
// strictly serially; a write between the two rounds of a read would
// corrupt the computation, so the serial accept loop is part of the
// correctness argument and not an optimisation opportunity.
package party

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/renproject/duoram/crossmul"
	"github.com/renproject/duoram/dealer"
	"github.com/renproject/duoram/ring"
	"github.com/renproject/duoram/triple"
	"github.com/renproject/duoram/wire"
)

// Opcodes for the client request protocol.
const (
	OpWrite = uint8(0x40)
	OpRead  = uint8(0x41)
)

// okReply is the literal write acknowledgement.
var okReply = []byte("OK")

// Options configure a Party.
type Options struct {
	// Role is the fixed A/B label. It decides the combine equation and
	// which side of each cross-term this party plays.
	Role crossmul.Role

	// Rows is the memory dimension. Every client request must carry a
	// vector of exactly this dimension.
	Rows int

	// PeerAddr is the peer party's residual listener address.
	PeerAddr string

	// DealerAddr is the triple dealer's address.
	DealerAddr string

	// DealerTimeout bounds the dial and the pairing wait of every triple
	// fetch. Zero means block indefinitely.
	DealerTimeout time.Duration

	Logger *zap.Logger
}

// A Party serves oblivious reads and writes over its share of the memory
// vector.
type Party struct {
	role   crossmul.Role
	rows   int
	share  ring.Vec
	peer   string
	dealer string

	dealerTimeout time.Duration
	logger        *zap.Logger
}

// New returns a Party with a zeroed share vector.
func New(opts Options) *Party {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Party{
		role:          opts.Role,
		rows:          opts.Rows,
		share:         ring.NewVec(opts.Rows),
		peer:          opts.PeerAddr,
		dealer:        opts.DealerAddr,
		dealerTimeout: opts.DealerTimeout,
		logger:        logger,
	}
}

// Serve processes client connections from userLs serially until the
// listener is closed. peerLs is the residual listener handed to the peer
// transport; it must stay open for the party's lifetime. A request that
// fails closes its own connection and the loop moves on; only a listener
// error ends the loop.
func (p *Party) Serve(userLs, peerLs net.Listener) error {
	transport := &peerTransport{ls: peerLs, peerAddr: p.peer}
	p.logger.Info("party listening",
		zap.String("role", p.role.String()),
		zap.Int("rows", p.rows),
		zap.String("user", userLs.Addr().String()),
		zap.String("peer", peerLs.Addr().String()),
	)
	for {
		conn, err := userLs.Accept()
		if err != nil {
			return err
		}
		p.handle(conn, transport)
	}
}

// handle serves one client connection: a single request, a single reply,
// then close. Malformed requests are logged and dropped without a reply.
func (p *Party) handle(conn net.Conn, transport crossmul.Transport) {
	defer conn.Close()

	op, err := wire.ReadU8(conn)
	if err != nil {
		p.logger.Debug("reading op", zap.Error(err))
		return
	}

	switch op {
	case OpWrite:
		if err := p.handleWrite(conn); err != nil {
			p.logger.Error("write failed", zap.Error(err))
		}
	case OpRead:
		if err := p.handleRead(conn, transport); err != nil {
			p.logger.Error("read failed", zap.Error(err))
		}
	default:
		p.logger.Debug("unknown op", zap.Uint8("op", op))
	}
}

// handleWrite accumulates the client's share of val*e_idx into the memory
// share. No inter-party traffic is needed for a write.
func (p *Party) handleWrite(conn net.Conn) error {
	vec, err := wire.ReadVec(conn)
	if err != nil {
		return err
	}
	if len(vec) != p.rows {
		return ErrDimensionMismatch
	}

	p.share.Add(vec)
	p.logger.Debug("write accumulated", zap.String("role", p.role.String()))

	_, err = conn.Write(okReply)
	return err
}

// handleRead executes the secure inner-product sub-protocol and replies
// with this party's scalar share of memory[idx]. One triple is fetched
// from the dealer and consumed by both cross-terms; role A plays the X
// side for the first tag and the Y side for the second, role B the
// reverse.
func (p *Party) handleRead(conn net.Conn, transport crossmul.Transport) error {
	eShare, err := wire.ReadVec(conn)
	if err != nil {
		return err
	}
	if len(eShare) != p.rows {
		return ErrDimensionMismatch
	}

	share, err := dealer.Fetch(p.dealer, p.rows, p.dealerTimeout)
	if err != nil {
		return err
	}
	p.logger.Debug("triple fetched", zap.Int64("sid", share.Sid))

	z01, err := p.crossTerm(crossmul.TagFirst, crossmul.RoleA, eShare, share, transport)
	if err != nil {
		return err
	}
	z10, err := p.crossTerm(crossmul.TagSecond, crossmul.RoleB, eShare, share, transport)
	if err != nil {
		return err
	}

	myShare := p.share.Dot(eShare) + z01 + z10
	return wire.WriteI64(conn, myShare)
}

// crossTerm runs one of the two cross-terms. xRole names the role that
// plays the X side for this tag; the X side's input is its memory share,
// the Y side's input is the client's basis-vector share.
func (p *Party) crossTerm(
	tag uint8, xRole crossmul.Role,
	eShare ring.Vec, share triple.Share, transport crossmul.Transport,
) (int64, error) {
	side := crossmul.SideY
	input := eShare
	if p.role == xRole {
		side = crossmul.SideX
		input = p.share
	}
	return crossmul.CrossTerm(p.role, side, tag, input, share, transport)
}
