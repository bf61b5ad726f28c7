package dealer

import (
	"net"
	"sync"
)

// A Table is the rendezvous state machine that pairs triple requests of
// equal dimension. For every dimension the table is in one of two states:
//
//	1. Empty: no waiter for this dimension. A new arrival is stored as
//	the waiter and nothing is sent on its connection.
//	2. Waiting(conn): one or more waiters. A new arrival is paired with
//	the oldest waiter, which is removed from the table.
//
// When more than two requests for the same dimension race, pairs are
// formed in FIFO order and any odd survivor remains waiting until it is
// paired, times out or disconnects.
//
// The table's mutex is held only across queue mutation. Triple generation
// and all socket I/O happen outside the critical region, so a slow peer
// can never block an unrelated pairing.
type Table struct {
	mu      sync.Mutex
	waiting map[uint32][]net.Conn
}

// NewTable returns an empty rendezvous table.
func NewTable() *Table {
	return &Table{waiting: map[uint32][]net.Conn{}}
}

// Rendezvous either pairs conn with the oldest waiter for the given
// dimension, returning that waiter, or stores conn as a new waiter and
// returns false. In the latter case the caller must not respond on conn:
// the connection now belongs to the table until it is paired or removed.
func (t *Table) Rendezvous(dim uint32, conn net.Conn) (net.Conn, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := t.waiting[dim]
	if len(queue) == 0 {
		t.waiting[dim] = append(queue, conn)
		return nil, false
	}

	peer := queue[0]
	if len(queue) == 1 {
		delete(t.waiting, dim)
	} else {
		t.waiting[dim] = queue[1:]
	}
	return peer, true
}

// Remove deletes the given waiter from the queue for the given dimension,
// if it is still there, and reports whether it was removed. It is used to
// drop stale waiters on timeout or disconnect; if the waiter has already
// been paired, Remove returns false and the caller must leave the
// connection alone.
func (t *Table) Remove(dim uint32, conn net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := t.waiting[dim]
	for i := range queue {
		if queue[i] == conn {
			queue = append(queue[:i], queue[i+1:]...)
			if len(queue) == 0 {
				delete(t.waiting, dim)
			} else {
				t.waiting[dim] = queue
			}
			return true
		}
	}
	return false
}

// NumWaiting returns the number of waiters currently stored for the given
// dimension.
func (t *Table) NumWaiting(dim uint32) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiting[dim])
}
