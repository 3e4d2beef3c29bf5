package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetBid returns a single drained bid by ID.
func (j *SQLite) GetBid(bidID string) (DrainedBid, error) {
	var rec DrainedBid

	row := j.db.QueryRow(`
		SELECT bid_id, player_id, bidder_team_id, seller_team_id, amount, wage, created_at, expires_at, drained_at, listing_type
		FROM drained_bids
		WHERE bid_id = ?`, bidID)

	err := row.Scan(
		&rec.BidID,
		&rec.PlayerID,
		&rec.BidderTeamID,
		&rec.SellerTeamID,
		&rec.Amount,
		&rec.Wage,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.DrainedAt,
		&rec.ListingType,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return DrainedBid{}, fmt.Errorf("bid %q not found", bidID)
		}
		return DrainedBid{}, err
	}
	return rec, nil
}

// ListDrainedBetween returns bids drained within [start, end), oldest first.
func (j *SQLite) ListDrainedBetween(start, end time.Time) ([]DrainedBid, error) {
	rows, err := j.db.Query(`
		SELECT bid_id, player_id, bidder_team_id, seller_team_id, amount, wage, created_at, expires_at, drained_at, listing_type
		FROM drained_bids
		WHERE drained_at >= ? AND drained_at < ?
		ORDER BY drained_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DrainedBid
	for rows.Next() {
		var rec DrainedBid
		if err := rows.Scan(
			&rec.BidID,
			&rec.PlayerID,
			&rec.BidderTeamID,
			&rec.SellerTeamID,
			&rec.Amount,
			&rec.Wage,
			&rec.CreatedAt,
			&rec.ExpiresAt,
			&rec.DrainedAt,
			&rec.ListingType,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
