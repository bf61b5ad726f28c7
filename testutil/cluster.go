// Package testutil provides an in-process cluster of the three service
// roles for end-to-end tests: one dealer and two parties wired together
// over loopback TCP on ephemeral ports.
package testutil

import (
	"net"
	"time"

	"github.com/renproject/duoram/crossmul"
	"github.com/renproject/duoram/dealer"
	"github.com/renproject/duoram/party"
)

// A Cluster is a running dealer plus two parties. All listeners are bound
// to ephemeral loopback ports; closing the cluster closes the listeners,
// which ends every serve loop.
type Cluster struct {
	// DealerAddr is the dealer's listen address.
	DealerAddr string

	// PartyA and PartyB are the user-request addresses of the two parties.
	PartyA, PartyB string

	listeners []net.Listener
}

// NewCluster starts a dealer and two parties with the given memory
// dimension. The dealer is given a wait timeout large enough to never
// fire in a healthy test but small enough to unstick a deadlocked one.
func NewCluster(rows int) (*Cluster, error) {
	listeners := make([]net.Listener, 0, 5)
	listen := func() (net.Listener, error) {
		ls, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			for _, open := range listeners {
				open.Close()
			}
			return nil, err
		}
		listeners = append(listeners, ls)
		return ls, nil
	}

	dealerLs, err := listen()
	if err != nil {
		return nil, err
	}
	userA, err := listen()
	if err != nil {
		return nil, err
	}
	peerA, err := listen()
	if err != nil {
		return nil, err
	}
	userB, err := listen()
	if err != nil {
		return nil, err
	}
	peerB, err := listen()
	if err != nil {
		return nil, err
	}

	d := dealer.New(dealer.Options{WaitTimeout: 5 * time.Second})
	go d.Serve(dealerLs)

	partyA := party.New(party.Options{
		Role:          crossmul.RoleA,
		Rows:          rows,
		PeerAddr:      peerB.Addr().String(),
		DealerAddr:    dealerLs.Addr().String(),
		DealerTimeout: 5 * time.Second,
	})
	go partyA.Serve(userA, peerA)

	partyB := party.New(party.Options{
		Role:          crossmul.RoleB,
		Rows:          rows,
		PeerAddr:      peerA.Addr().String(),
		DealerAddr:    dealerLs.Addr().String(),
		DealerTimeout: 5 * time.Second,
	})
	go partyB.Serve(userB, peerB)

	return &Cluster{
		DealerAddr: dealerLs.Addr().String(),
		PartyA:     userA.Addr().String(),
		PartyB:     userB.Addr().String(),
		listeners:  listeners,
	}, nil
}

// Close shuts down every listener in the cluster.
func (c *Cluster) Close() {
	for _, ls := range c.listeners {
		ls.Close()
	}
}
