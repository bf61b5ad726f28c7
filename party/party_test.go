package party_test

import (
	"io"
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/renproject/duoram/coordinator"
	"github.com/renproject/duoram/crossmul"
	"github.com/renproject/duoram/dealer"
	"github.com/renproject/duoram/party"
	"github.com/renproject/duoram/ring"
	"github.com/renproject/duoram/testutil"
	"github.com/renproject/duoram/wire"
)

func TestParty(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "party")
}

var _ = Describe("Party request handling", func() {
	Context("when a request has a bad op byte", func() {
		It("should close the connection and keep serving", func() {
			cluster, err := testutil.NewCluster(4)
			Expect(err).ToNot(HaveOccurred())
			defer cluster.Close()

			conn, err := net.Dial("tcp", cluster.PartyA)
			Expect(err).ToNot(HaveOccurred())
			Expect(wire.WriteU8(conn, 0x77)).To(Succeed())
			conn.SetReadDeadline(time.Now().Add(time.Second))
			_, err = wire.ReadU8(conn)
			Expect(err).To(Equal(io.EOF))
			conn.Close()

			// Subsequent well-formed requests succeed.
			client := coordinator.Client{C0: cluster.PartyA, C1: cluster.PartyB}
			Expect(client.Write(4, 2, 7)).To(Succeed())
			got, err := client.Read(4, 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(int64(7)))
		})
	})

	Context("when a write has the wrong dimension", func() {
		It("should close the connection without acknowledging", func() {
			cluster, err := testutil.NewCluster(4)
			Expect(err).ToNot(HaveOccurred())
			defer cluster.Close()

			conn, err := net.Dial("tcp", cluster.PartyA)
			Expect(err).ToNot(HaveOccurred())
			defer conn.Close()
			Expect(wire.WriteU8(conn, party.OpWrite)).To(Succeed())
			Expect(wire.WriteVec(conn, ring.NewVec(3))).To(Succeed())

			conn.SetReadDeadline(time.Now().Add(time.Second))
			_, err = wire.ReadU8(conn)
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("when only one party receives a read", func() {
		It("should abort on dealer starvation and recover", func() {
			// A dedicated cluster with an aggressive dealer timeout, so
			// that the lone read fails quickly instead of blocking the
			// suite.
			listen := func() net.Listener {
				ls, err := net.Listen("tcp", "127.0.0.1:0")
				Expect(err).ToNot(HaveOccurred())
				return ls
			}
			dealerLs, userA, peerA, userB, peerB := listen(), listen(), listen(), listen(), listen()
			defer func() {
				for _, ls := range []net.Listener{dealerLs, userA, peerA, userB, peerB} {
					ls.Close()
				}
			}()

			d := dealer.New(dealer.Options{WaitTimeout: 150 * time.Millisecond})
			go d.Serve(dealerLs)

			partyA := party.New(party.Options{
				Role: crossmul.RoleA, Rows: 4,
				PeerAddr:   peerB.Addr().String(),
				DealerAddr: dealerLs.Addr().String(),
			})
			go partyA.Serve(userA, peerA)

			partyB := party.New(party.Options{
				Role: crossmul.RoleB, Rows: 4,
				PeerAddr:   peerA.Addr().String(),
				DealerAddr: dealerLs.Addr().String(),
			})
			go partyB.Serve(userB, peerB)

			// A read sent to party A alone starves at the dealer: the
			// reply socket closes without ever carrying a share.
			e, _ := ring.Split(ring.Basis(4, 1, 1))
			conn, err := net.Dial("tcp", userA.Addr().String())
			Expect(err).ToNot(HaveOccurred())
			Expect(wire.WriteU8(conn, party.OpRead)).To(Succeed())
			Expect(wire.WriteVec(conn, e)).To(Succeed())
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, err = wire.ReadI64(conn)
			Expect(err).To(HaveOccurred())
			conn.Close()

			// Both parties still serve complete requests afterwards.
			client := coordinator.Client{
				C0: userA.Addr().String(),
				C1: userB.Addr().String(),
			}
			Expect(client.Write(4, 0, 42)).To(Succeed())
			got, err := client.Read(4, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(int64(42)))
		})
	})
})
