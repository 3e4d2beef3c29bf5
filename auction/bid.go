package auction

import (
	"time"

	"github.com/transferleague/auctionhouse/ledger"
)

// Bid is a time-boxed reservation of funds against one player. SellerID is
// the owning team at creation time; ExpiresAt is the nominal deadline shown
// to users, while the expiry timer may fire earlier (both are configured, see
// Options). Fields are guarded by the engine mutex; callers only ever see
// copies.
type Bid struct {
	ID        string
	PlayerID  string
	BidderID  string
	SellerID  string
	Amount    int64
	Wage      int64
	Type      ledger.ListingType
	CreatedAt time.Time
	ExpiresAt time.Time

	// Active flips to false exactly once: on the expiry timer, on manual
	// withdrawal, or on supersession. It never flips back.
	Active bool
}

// IsActive is the source of truth for liveness. A bid can be dead by wall
// clock before its timer callback has run, so the flag alone is not enough.
func (b *Bid) IsActive(now time.Time) bool {
	return b.Active && now.Before(b.ExpiresAt)
}

// TimeRemaining reports how long until the nominal deadline, clamped at zero.
func (b *Bid) TimeRemaining(now time.Time) time.Duration {
	rem := b.ExpiresAt.Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}
