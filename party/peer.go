package party

import (
	"fmt"
	"net"

	"github.com/renproject/duoram/crossmul"
)

// peerTransport carries residual frames between the two parties. Every
// send opens a fresh connection to the peer's residual listener and closes
// it after the frame; every receive accepts exactly one connection from
// the listener, reads one frame and closes it. The listener itself lives
// for the whole party lifetime.
type peerTransport struct {
	ls       net.Listener
	peerAddr string
}

// Send implements the crossmul.Transport interface.
func (t *peerTransport) Send(res crossmul.Residual) error {
	conn, err := net.Dial("tcp", t.peerAddr)
	if err != nil {
		return fmt.Errorf("dialing peer: %v", err)
	}
	defer conn.Close()
	return res.Encode(conn)
}

// Recv implements the crossmul.Transport interface.
func (t *peerTransport) Recv(sid int64, tag uint8, dim int) (crossmul.Residual, error) {
	conn, err := t.ls.Accept()
	if err != nil {
		return crossmul.Residual{}, fmt.Errorf("accepting peer: %v", err)
	}
	defer conn.Close()

	var res crossmul.Residual
	if err := res.Decode(conn); err != nil {
		return crossmul.Residual{}, err
	}
	if err := res.Check(sid, tag, dim); err != nil {
		return crossmul.Residual{}, err
	}
	return res, nil
}
