package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/transferleague/auctionhouse/auction"
	"github.com/transferleague/auctionhouse/config"
	"github.com/transferleague/auctionhouse/journal"
	"github.com/transferleague/auctionhouse/ledger"
	"github.com/transferleague/auctionhouse/roster"
	"github.com/transferleague/auctionhouse/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an auction session from a config file",
	Long: `Run an auction session using settings from a configuration file.

The config file specifies the seed roster, bid durations, the journal for
drained bids, and optionally a scripted session of list/bid/withdraw/drain
steps to replay.

Example:
  auctionhouse run -f examples/configs/session.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.Log)

	bidTTL, _ := cfg.Auction.ParseBidTTL()
	nominalTTL, _ := cfg.Auction.ParseNominalTTL()
	if cfg.Auction.TTLMismatch() {
		slog.Warn("bid_ttl and nominal_ttl disagree; bids expire on the earlier of the two",
			"bid_ttl", bidTTL, "nominal_ttl", nominalTTL)
	}

	led, err := roster.Load(cfg.Seed.TeamsFile, cfg.Seed.PlayersFile)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	var j journal.Journal
	if cfg.Journal.Type == "csv" {
		j, err = journal.NewCSV(cfg.Journal.ExportDir)
	} else {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	engine := auction.New(led, j, auction.Options{
		BidTTL:        bidTTL,
		NominalTTL:    nominalTTL,
		FreeAgentTeam: cfg.Auction.FreeAgentTeam,
		Policy: auction.Policy{
			AllowRelistAfterHistory: cfg.Auction.AllowRelistAfterHistory,
		},
	})
	defer engine.Close()
	engine.SetBidClosedListener(consoleListener{})

	runner := session.New(engine, os.Stdout)
	if err := runner.Run(context.Background(), cfg.Session); err != nil {
		return err
	}

	printListed(engine)
	printActiveBids(engine)
	printAccounts(led)

	return nil
}

// consoleListener prints terminal bid transitions as they happen, including
// expirations fired by the scheduler.
type consoleListener struct{}

func (consoleListener) OnBidClosed(b auction.Bid, reason string) {
	fmt.Printf("bid %s on player %s by team %s closed: %s\n", b.ID, b.PlayerID, b.BidderID, reason)
}

func printListed(e *auction.Engine) {
	players := e.ListedPlayers()
	fmt.Printf("\nListed players (%d):\n", len(players))
	if len(players) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Player", "Name", "Team", "Starting Price", "Type")
	for _, p := range players {
		price := "-"
		if p.StartingPrice != nil {
			price = strconv.FormatInt(*p.StartingPrice, 10)
		}
		table.Append(p.ID, p.Name, p.TeamID, price, p.Type.String())
	}
	table.Render()
}

func printActiveBids(e *auction.Engine) {
	bids := e.ActiveBids()
	fmt.Printf("\nActive bids (%d):\n", len(bids))
	if len(bids) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Bid", "Player", "Bidder", "Amount", "Wage", "Type", "Expires")
	for _, b := range bids {
		table.Append(
			b.ID,
			b.PlayerID,
			b.BidderID,
			strconv.FormatInt(b.Amount, 10),
			strconv.FormatInt(b.Wage, 10),
			b.Type.String(),
			b.ExpiresAt.Format(time.RFC3339),
		)
	}
	table.Render()
}

func printAccounts(l *ledger.Ledger) {
	teams := l.Teams()
	fmt.Printf("\nAccounts (%d):\n", len(teams))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Team", "Name", "Budget", "Wage")
	for _, t := range teams {
		table.Append(t.ID, t.Name, strconv.FormatInt(t.Budget, 10), strconv.FormatInt(t.Wage, 10))
	}
	table.Render()
}

func setupLogger(lc config.LogConfig) {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
