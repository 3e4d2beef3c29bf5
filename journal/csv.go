package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// header is the contract with downstream consumers: field set and order must
// not change.
var header = []string{
	"player_id", "bidder_team_id", "seller_team_id",
	"amount", "wage",
	"created_at", "expires_at", "drained_at",
	"listing_type",
}

// CSVJournal writes one file per drain call into a directory, named
// expired_bids_YYYYMMDD_HHMMSS.csv.
type CSVJournal struct {
	dir string
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %q: %w", dir, err)
	}
	return &CSVJournal{dir: dir}, nil
}

func (j *CSVJournal) RecordDrain(batch []DrainedBid) error {
	if len(batch) == 0 {
		return nil
	}

	// Batches are stamped with the drain time, which the engine sets
	// uniformly across the batch.
	name := fmt.Sprintf("expired_bids_%s.csv", batch[0].DrainedAt.Format("20060102_150405"))
	path := filepath.Join(j.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create batch file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, b := range batch {
		if err := w.Write([]string{
			b.PlayerID,
			b.BidderTeamID,
			b.SellerTeamID,
			strconv.FormatInt(b.Amount, 10),
			strconv.FormatInt(b.Wage, 10),
			b.CreatedAt.Format(time.RFC3339),
			b.ExpiresAt.Format(time.RFC3339),
			b.DrainedAt.Format(time.RFC3339),
			b.ListingType,
		}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (j *CSVJournal) Close() error { return nil }
