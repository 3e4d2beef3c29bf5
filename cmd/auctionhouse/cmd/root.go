package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auctionhouse",
	Short: "A transfer-market auction engine with budget and wage accounting",
	Long: `Auctionhouse runs a live sealed-duration auction over a roster of players
owned by competing teams.

It provides tools for:
  - Listing players for bidding with a starting price and listing type
  - Placing bids that reserve budget and wage room until superseded,
    withdrawn, or expired
  - Draining expired bids into timestamped export batches
  - Querying the drained-bid history`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
