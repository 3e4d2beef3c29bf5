package journal

const Schema = `
CREATE TABLE IF NOT EXISTS drained_bids (
	bid_id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	bidder_team_id TEXT NOT NULL,
	seller_team_id TEXT NOT NULL,
	amount INTEGER NOT NULL,
	wage INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	drained_at DATETIME NOT NULL,
	listing_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drained_bids_drained_at ON drained_bids(drained_at);
CREATE INDEX IF NOT EXISTS idx_drained_bids_player ON drained_bids(player_id);
`
