package main

import (
	"os"

	"github.com/transferleague/auctionhouse/cmd/auctionhouse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
