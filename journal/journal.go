// Package journal persists drained (expired) bids. Two implementations:
// timestamped CSV batch files and a SQLite history database.
package journal

import "time"

// DrainedBid is the export record for one expired bid. Downstream consumers
// depend on the CSV field set and order; see csv.go.
type DrainedBid struct {
	BidID        string
	PlayerID     string
	BidderTeamID string
	SellerTeamID string
	Amount       int64
	Wage         int64
	CreatedAt    time.Time
	ExpiresAt    time.Time
	DrainedAt    time.Time
	ListingType  string
}

// Journal receives one batch per drain call.
type Journal interface {
	RecordDrain(batch []DrainedBid) error
	Close() error
}
