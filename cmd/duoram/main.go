// Command duoram runs the three roles of the oblivious read/write
// service: the correlated-randomness dealer, a share-holding party, and
// the client coordinator.
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renproject/duoram/coordinator"
	"github.com/renproject/duoram/crossmul"
	"github.com/renproject/duoram/dealer"
	"github.com/renproject/duoram/party"
	"github.com/renproject/duoram/stripe"
)

var (
	// Global flags
	verbose bool

	// Dealer flags
	dealerListen string
	waitTimeout  time.Duration

	// Party flags
	partyRole     string
	partyRows     int
	partyListen   string
	peerListen    int
	peerAddr      string
	shareAddr     string
	dealerTimeout time.Duration

	// Coordinator flags
	coordOp  string
	coordDim int
	coordIdx int
	coordVal int64
	coordC0  string
	coordC1  string

	// Stripe flags
	stripeOp    string
	stripeSlots int
	stripeIdx   int
	stripeVal   string
	stripeC0    string
	stripeC1    string

	rootCmd = &cobra.Command{
		Use:   "duoram",
		Short: "Two-party oblivious read/write service over secret-shared memory",
		// main prints the error as a single line.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	dealerCmd = &cobra.Command{
		Use:   "dealer",
		Short: "Run the correlated-randomness dealer",
		RunE:  runDealer,
	}

	partyCmd = &cobra.Command{
		Use:   "party",
		Short: "Run one share-holding party",
		RunE:  runParty,
	}

	coordinatorCmd = &cobra.Command{
		Use:   "coordinator",
		Short: "Issue a write or a read against the two parties",
		RunE:  runCoordinator,
	}

	stripeCmd = &cobra.Command{
		Use:   "stripe",
		Short: "Store or load fixed-width strings striped over the integer memory",
		RunE:  runStripe,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	dealerCmd.Flags().StringVar(&dealerListen, "listen", "0.0.0.0:9300", "address to listen on")
	dealerCmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 0, "drop unpaired requests after this long (0 waits forever)")

	partyCmd.Flags().StringVar(&partyRole, "role", "", "party role, A or B")
	partyCmd.Flags().IntVar(&partyRows, "rows", 0, "memory dimension")
	partyCmd.Flags().StringVar(&partyListen, "listen", "0.0.0.0:9700", "address to listen on for client requests")
	partyCmd.Flags().IntVar(&peerListen, "peer-listen", 9701, "port to listen on for peer residuals")
	partyCmd.Flags().StringVar(&peerAddr, "peer", "127.0.0.1:9801", "peer party's residual listener address")
	partyCmd.Flags().StringVar(&shareAddr, "share", "127.0.0.1:9300", "dealer address")
	partyCmd.Flags().DurationVar(&dealerTimeout, "dealer-timeout", 0, "abort a read if the dealer has not paired it after this long (0 waits forever)")
	cobra.CheckErr(partyCmd.MarkFlagRequired("role"))
	cobra.CheckErr(partyCmd.MarkFlagRequired("rows"))

	coordinatorCmd.Flags().StringVar(&coordOp, "op", "", "operation, write or read")
	coordinatorCmd.Flags().IntVar(&coordDim, "dim", 0, "memory dimension")
	coordinatorCmd.Flags().IntVar(&coordIdx, "idx", 0, "index")
	coordinatorCmd.Flags().Int64Var(&coordVal, "val", 0, "value (write only)")
	coordinatorCmd.Flags().StringVar(&coordC0, "c0", "", "first party address")
	coordinatorCmd.Flags().StringVar(&coordC1, "c1", "", "second party address")
	cobra.CheckErr(coordinatorCmd.MarkFlagRequired("op"))
	cobra.CheckErr(coordinatorCmd.MarkFlagRequired("dim"))
	cobra.CheckErr(coordinatorCmd.MarkFlagRequired("idx"))
	cobra.CheckErr(coordinatorCmd.MarkFlagRequired("c0"))
	cobra.CheckErr(coordinatorCmd.MarkFlagRequired("c1"))

	stripeCmd.Flags().StringVar(&stripeOp, "op", "", "operation, write or read")
	stripeCmd.Flags().IntVar(&stripeSlots, "slots", 0, "number of string slots")
	stripeCmd.Flags().IntVar(&stripeIdx, "idx", 0, "slot index")
	stripeCmd.Flags().StringVar(&stripeVal, "val", "", "value (write only)")
	stripeCmd.Flags().StringVar(&stripeC0, "c0", "", "first party address")
	stripeCmd.Flags().StringVar(&stripeC1, "c1", "", "second party address")
	cobra.CheckErr(stripeCmd.MarkFlagRequired("op"))
	cobra.CheckErr(stripeCmd.MarkFlagRequired("slots"))
	cobra.CheckErr(stripeCmd.MarkFlagRequired("idx"))
	cobra.CheckErr(stripeCmd.MarkFlagRequired("c0"))
	cobra.CheckErr(stripeCmd.MarkFlagRequired("c1"))

	rootCmd.AddCommand(dealerCmd, partyCmd, coordinatorCmd, stripeCmd)
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runDealer(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ls, err := net.Listen("tcp", dealerListen)
	if err != nil {
		return err
	}
	d := dealer.New(dealer.Options{WaitTimeout: waitTimeout, Logger: logger})
	return d.Serve(ls)
}

func runParty(cmd *cobra.Command, args []string) error {
	var role crossmul.Role
	switch partyRole {
	case "A":
		role = crossmul.RoleA
	case "B":
		role = crossmul.RoleB
	default:
		return fmt.Errorf("role must be A or B, got %q", partyRole)
	}
	if partyRows < 1 {
		return fmt.Errorf("rows must be at least 1, got %v", partyRows)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	userLs, err := net.Listen("tcp", partyListen)
	if err != nil {
		return err
	}
	host, _, err := net.SplitHostPort(partyListen)
	if err != nil {
		return err
	}
	peerLs, err := net.Listen("tcp", fmt.Sprintf("%v:%v", host, peerListen))
	if err != nil {
		return err
	}

	p := party.New(party.Options{
		Role:          role,
		Rows:          partyRows,
		PeerAddr:      peerAddr,
		DealerAddr:    shareAddr,
		DealerTimeout: dealerTimeout,
		Logger:        logger,
	})
	return p.Serve(userLs, peerLs)
}

func runCoordinator(cmd *cobra.Command, args []string) error {
	if coordIdx >= coordDim {
		return fmt.Errorf("idx < dim required")
	}

	client := coordinator.Client{C0: coordC0, C1: coordC1}
	switch coordOp {
	case "write":
		if err := client.Write(coordDim, coordIdx, coordVal); err != nil {
			return err
		}
		fmt.Printf("WRITE idx=%v value=%v\n", coordIdx, coordVal)
	case "read":
		val, err := client.Read(coordDim, coordIdx)
		if err != nil {
			return err
		}
		fmt.Printf("READ idx=%v -> %v\n", coordIdx, val)
	default:
		return fmt.Errorf("op must be write or read, got %q", coordOp)
	}
	return nil
}

func runStripe(cmd *cobra.Command, args []string) error {
	if stripeIdx >= stripeSlots {
		return fmt.Errorf("idx < slots required")
	}

	store := stripe.NewStore(coordinator.Client{C0: stripeC0, C1: stripeC1}, stripeSlots)
	switch stripeOp {
	case "write":
		if err := store.Put(stripeIdx, stripeVal); err != nil {
			return err
		}
		fmt.Printf("WRITE idx=%v value=%q\n", stripeIdx, stripeVal)
	case "read":
		val, err := store.Get(stripeIdx)
		if err != nil {
			return err
		}
		fmt.Printf("READ idx=%v -> %q\n", stripeIdx, val)
	default:
		return fmt.Errorf("op must be write or read, got %q", stripeOp)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
