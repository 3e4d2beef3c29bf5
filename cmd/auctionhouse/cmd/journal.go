package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/transferleague/auctionhouse/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the drained-bid history",
	Long: `Query and display drained bids from the SQLite journal.

Subcommands:
  bid    - Get one drained bid by ID
  today  - List bids drained today
  day    - List bids drained on a specific day

Examples:
  auctionhouse journal bid <bid-id>
  auctionhouse journal today
  auctionhouse journal day 2026-08-15`,
}

var journalBidCmd = &cobra.Command{
	Use:   "bid <bid-id>",
	Short: "Get one drained bid",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalBid,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List bids drained today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List bids drained on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalBidCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./auctionhouse.sqlite", "path to SQLite journal DB")
}

func runJournalBid(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetBid(args[0])
	if err != nil {
		return fmt.Errorf("get bid: %w", err)
	}

	printDrained([]journal.DrainedBid{rec})
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(time.Now().Local().Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(args[0])
}

func listDay(day string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListDrainedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query drained bids: %w", err)
	}

	printDrained(recs)
	return nil
}

func printDrained(recs []journal.DrainedBid) {
	if len(recs) == 0 {
		fmt.Println("no drained bids")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Bid", "Player", "Bidder", "Seller", "Amount", "Wage", "Type", "Drained")
	for _, r := range recs {
		table.Append(
			r.BidID,
			r.PlayerID,
			r.BidderTeamID,
			r.SellerTeamID,
			strconv.FormatInt(r.Amount, 10),
			strconv.FormatInt(r.Wage, 10),
			r.ListingType,
			r.DrainedAt.Format(time.RFC3339),
		)
	}
	table.Render()
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
