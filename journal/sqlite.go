package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps the full drained-bid history in one database, queryable by
// the CLI.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordDrain(batch []DrainedBid) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO drained_bids
		(bid_id, player_id, bidder_team_id, seller_team_id, amount, wage, created_at, expires_at, drained_at, listing_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range batch {
		if _, err := stmt.Exec(
			b.BidID, b.PlayerID, b.BidderTeamID, b.SellerTeamID,
			b.Amount, b.Wage, b.CreatedAt, b.ExpiresAt, b.DrainedAt, b.ListingType,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
