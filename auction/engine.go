// Package auction implements the bid lifecycle engine: legality checks,
// ledger mutation on bid creation and removal, the prior-bidder lock, and
// autonomous expiry of outstanding bids.
package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/transferleague/auctionhouse/internal/id"
	"github.com/transferleague/auctionhouse/journal"
	"github.com/transferleague/auctionhouse/ledger"
)

// Close reasons passed to the BidClosedListener.
const (
	ReasonExpired    = "Expired"
	ReasonWithdrawn  = "Withdrawn"
	ReasonSuperseded = "Superseded"
)

// BidClosedListener is notified after a bid reaches a terminal state. The
// listener is called after the engine lock is released to avoid deadlocks.
type BidClosedListener interface {
	OnBidClosed(bid Bid, reason string)
}

// Policy names the business rules the original system left ambiguous.
type Policy struct {
	// AllowRelistAfterHistory permits listing a player whose prior-bidder
	// history is non-empty. Default false: once contested, a player cannot
	// be relisted through ListPlayer.
	AllowRelistAfterHistory bool
}

// Options configures an Engine.
type Options struct {
	// BidTTL is how long after creation the expiry timer fires.
	BidTTL time.Duration
	// NominalTTL sets the recorded deadline (Bid.ExpiresAt). It is kept
	// separate from BidTTL because the two are configured independently;
	// liveness honors whichever lapses first.
	NominalTTL time.Duration
	// FreeAgentTeam is the team ID of the unrestricted pool whose players
	// are always biddable without a listing.
	FreeAgentTeam string
	Policy        Policy
	Logger        *slog.Logger
}

// Engine serializes all bid and ledger mutation behind one mutex. Expiry
// firings acquire the same mutex, so a bid cannot be superseded and expired
// at the same instant.
type Engine struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	journal  journal.Journal
	bids     map[string]*Bid   // by bid ID, until drained or withdrawn
	byPlayer map[string][]*Bid // creation order per player
	sched    *scheduler
	opts     Options
	listener BidClosedListener
	log      *slog.Logger

	now func() time.Time
}

func New(l *ledger.Ledger, j journal.Journal, opts Options) *Engine {
	if opts.BidTTL <= 0 {
		opts.BidTTL = time.Minute
	}
	if opts.NominalTTL <= 0 {
		opts.NominalTTL = 12 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{
		ledger:   l,
		journal:  j,
		bids:     make(map[string]*Bid),
		byPlayer: make(map[string][]*Bid),
		opts:     opts,
		log:      opts.Logger,
		now:      time.Now,
	}
	e.sched = newScheduler(e.expireBid, e.log)
	return e
}

// Close stops the expiry scheduler. Outstanding bids keep expiring by wall
// clock through IsActive; only the timer callbacks stop.
func (e *Engine) Close() {
	e.sched.close()
}

// SetBidClosedListener registers an optional listener for terminal bid
// transitions (expiry, withdrawal, supersession).
func (e *Engine) SetBidClosedListener(l BidClosedListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// BidRequest describes one attempted bid.
type BidRequest struct {
	PlayerID string
	TeamID   string
	Amount   int64
	Wage     int64
	Type     ledger.ListingType
}

// PlaceBidResult is returned on success. PriorBidders is the player's bid
// history as it stood before this bid was appended, for outbid notification
// fan-out by the caller.
type PlaceBidResult struct {
	Bid          Bid
	Message      string
	PriorBidders []string
}

// PlaceBid validates and accepts a bid, moving money atomically with bid
// creation. Either every effect happens or none do: all rejections are
// checked before the first ledger mutation.
func (e *Engine) PlaceBid(ctx context.Context, req BidRequest) (PlaceBidResult, error) {
	_ = ctx // no blocking work; kept for interface symmetry

	e.mu.Lock()
	now := e.now()

	p, err := e.ledger.Player(req.PlayerID)
	if err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}
	bidder, err := e.ledger.Team(req.TeamID)
	if err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}

	// A player is biddable while listed, while owned by the free-agent
	// pool, or while a bidding episode is open (some bid, active or not,
	// has not yet been drained).
	if !p.Listed && p.TeamID != e.opts.FreeAgentTeam && len(e.byPlayer[req.PlayerID]) == 0 {
		e.mu.Unlock()
		return PlaceBidResult{}, validationf("player %q is not listed", req.PlayerID)
	}
	if p.Type != req.Type {
		e.mu.Unlock()
		return PlaceBidResult{}, validationf("wrong listing type for player %q: listed as %s, bid as %s",
			req.PlayerID, p.Type, req.Type)
	}
	var floor int64
	if p.StartingPrice != nil {
		floor = *p.StartingPrice
	}
	if req.Amount < floor {
		e.mu.Unlock()
		return PlaceBidResult{}, validationf("bid %d for player %q is below the starting price %d", req.Amount, req.PlayerID, floor)
	}

	// Prior-bidder lock. Once a player has been contested, a standing bid
	// with no time remaining closes the episode: reject outright, before
	// anything is refunded or debited.
	var prev *Bid
	if len(p.PriorBidders) > 0 {
		for _, b := range e.byPlayer[req.PlayerID] {
			if b.TimeRemaining(now) == 0 {
				e.mu.Unlock()
				return PlaceBidResult{}, fmt.Errorf("player %q: %w", req.PlayerID, ErrTooLate)
			}
		}
		prev = e.findActiveLocked(req.PlayerID, now)
	}

	// Affordability, against the balance the bidder will hold once the
	// standing bid (if any) has been reversed. The bidder may be that bid's
	// own bidder (re-bidding) or its seller, so the reversal can move the
	// very balance being checked.
	budget, wageRoom := bidder.Budget, bidder.Wage
	if prev != nil {
		if prev.BidderID == req.TeamID {
			budget += prev.Amount
			wageRoom += prev.Wage
		}
		if prev.SellerID == req.TeamID {
			if prev.Type.HasFee() {
				budget -= prev.Amount
			}
			wageRoom -= p.Wage
		}
	}
	if budget < req.Amount {
		e.mu.Unlock()
		return PlaceBidResult{}, validationf("team %q does not have enough budget for player %q", req.TeamID, req.PlayerID)
	}
	if wageRoom < req.Wage {
		e.mu.Unlock()
		return PlaceBidResult{}, validationf("team %q does not have enough wage room for player %q", req.TeamID, req.PlayerID)
	}

	// All checks passed; from here every mutation succeeds. The previous
	// active bid is withdrawn with a full refund and the new one takes its
	// place.
	var superseded *Bid
	if prev != nil {
		if s, ok := e.deactivateActiveLocked(req.PlayerID, now); ok {
			superseded = &s
		}
	}

	bid := &Bid{
		ID:        id.New(),
		PlayerID:  req.PlayerID,
		BidderID:  req.TeamID,
		SellerID:  p.TeamID,
		Amount:    req.Amount,
		Wage:      req.Wage,
		Type:      req.Type,
		CreatedAt: now,
		ExpiresAt: now.Add(e.opts.NominalTTL),
		Active:    true,
	}

	if err := e.ledger.Debit(req.TeamID, req.Amount, req.Wage); err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}
	// The seller banks the proceeds (fee types only) and frees the payroll
	// room of the outgoing player: its own wage, not the bidder's offer.
	fee := int64(0)
	if req.Type.HasFee() {
		fee = req.Amount
	}
	if err := e.ledger.Credit(p.TeamID, fee, p.Wage); err != nil && !errors.Is(err, ledger.ErrTeamNotFound) {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}

	// The accepted amount becomes the new floor, and the player leaves the
	// open market: exactly one bid slot per player at a time.
	if err := e.ledger.SetFloor(req.PlayerID, req.Amount); err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}
	if err := e.ledger.ClearListed(req.PlayerID); err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}

	priors := p.PriorBidders
	if err := e.ledger.AppendPriorBidder(req.PlayerID, req.TeamID); err != nil {
		e.mu.Unlock()
		return PlaceBidResult{}, err
	}

	e.bids[bid.ID] = bid
	e.byPlayer[req.PlayerID] = append(e.byPlayer[req.PlayerID], bid)
	e.sched.arm(bid.ID, now.Add(e.opts.BidTTL))

	res := PlaceBidResult{
		Bid:          *bid,
		Message:      fmt.Sprintf("created bid for %s by %s", p.Name, bidder.Name),
		PriorBidders: priors,
	}
	listener := e.listener
	e.mu.Unlock()

	e.log.Info("bid placed",
		"bid_id", bid.ID, "player_id", bid.PlayerID, "team_id", bid.BidderID,
		"amount", bid.Amount, "wage", bid.Wage, "type", bid.Type.String())

	if superseded != nil && listener != nil {
		listener.OnBidClosed(*superseded, ReasonSuperseded)
	}
	return res, nil
}

// WithdrawResult reports the outcome of a withdrawal. AlreadyInactive is an
// informational outcome, not an error: the reversal ran exactly once, on the
// call that found the bid active.
type WithdrawResult struct {
	Withdrawn       bool
	AlreadyInactive bool
	Bid             Bid
	Message         string
}

// WithdrawBid deactivates the player's current bid and reverses its ledger
// effect: the bidder gets amount and wage back, and the seller's earlier
// credit is backed out (budget only for fee-carrying types).
func (e *Engine) WithdrawBid(ctx context.Context, playerID string, typ ledger.ListingType) (WithdrawResult, error) {
	_ = ctx

	e.mu.Lock()
	now := e.now()

	bids := e.byPlayer[playerID]
	if len(bids) == 0 {
		e.mu.Unlock()
		return WithdrawResult{Message: fmt.Sprintf("no bid on player %q", playerID)}, nil
	}
	last := bids[len(bids)-1]
	if last.Type != typ {
		e.mu.Unlock()
		return WithdrawResult{}, validationf("wrong listing type for player %q: bid is %s, withdrawal requested %s",
			playerID, last.Type, typ)
	}
	if !last.IsActive(now) {
		res := WithdrawResult{
			AlreadyInactive: true,
			Bid:             *last,
			Message:         fmt.Sprintf("bid for player %q is already inactive", playerID),
		}
		e.mu.Unlock()
		return res, nil
	}

	removed, _ := e.deactivateActiveLocked(playerID, now)
	res := WithdrawResult{
		Withdrawn: true,
		Bid:       removed,
		Message:   fmt.Sprintf("bid for player %q withdrawn and refunded", playerID),
	}
	listener := e.listener
	e.mu.Unlock()

	e.log.Info("bid withdrawn", "bid_id", removed.ID, "player_id", playerID, "team_id", removed.BidderID)

	if listener != nil {
		listener.OnBidClosed(removed, ReasonWithdrawn)
	}
	return res, nil
}

// findActiveLocked returns the player's active bid, newest first, or nil.
// Caller holds e.mu.
func (e *Engine) findActiveLocked(playerID string, now time.Time) *Bid {
	bids := e.byPlayer[playerID]
	for i := len(bids) - 1; i >= 0; i-- {
		if bids[i].IsActive(now) {
			return bids[i]
		}
	}
	return nil
}

// deactivateActiveLocked deactivates and refunds the player's active bid,
// if any. The bid stays in the collection as an inactive record until the
// next drain exports it; expired bids are financially final and are never
// refunded here. Caller holds e.mu.
func (e *Engine) deactivateActiveLocked(playerID string, now time.Time) (Bid, bool) {
	bids := e.byPlayer[playerID]
	for i := len(bids) - 1; i >= 0; i-- {
		b := bids[i]
		if !b.IsActive(now) {
			continue
		}
		b.Active = false

		// Refund the bidder in full; back out the seller's credit. The
		// seller's wage reversal is the player's own wage, mirroring the
		// wage room freed when the bid was accepted.
		_ = e.ledger.Credit(b.BidderID, b.Amount, b.Wage)
		fee := int64(0)
		if b.Type.HasFee() {
			fee = b.Amount
		}
		wage := int64(0)
		if p, err := e.ledger.Player(playerID); err == nil {
			wage = p.Wage
		}
		if err := e.ledger.ReverseCredit(b.SellerID, fee, wage); err != nil && !errors.Is(err, ledger.ErrTeamNotFound) {
			e.log.Error("seller reversal failed", "bid_id", b.ID, "seller_id", b.SellerID, "err", err)
		}
		return *b, true
	}
	return Bid{}, false
}

// expireBid is the scheduler callback. It takes the same critical section as
// PlaceBid and WithdrawBid, so a supersession and an expiry for the same
// player cannot interleave. A bid already withdrawn or superseded is gone
// from the map and the firing is a no-op.
func (e *Engine) expireBid(bidID string) {
	e.mu.Lock()
	b, ok := e.bids[bidID]
	if !ok || !b.Active {
		e.mu.Unlock()
		return
	}
	b.Active = false
	cp := *b
	listener := e.listener
	e.mu.Unlock()

	e.log.Info("bid expired", "bid_id", cp.ID, "player_id", cp.PlayerID, "team_id", cp.BidderID)

	if listener != nil {
		listener.OnBidClosed(cp, ReasonExpired)
	}
}

// ListPlayer puts a player on the market with a starting price. A player
// with any prior-bidder history cannot be relisted unless policy allows it.
func (e *Engine) ListPlayer(ctx context.Context, playerID, teamID string, price int64, typ ledger.ListingType) (string, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.ledger.Player(playerID)
	if err != nil {
		return "", err
	}
	if _, err := e.ledger.Team(teamID); err != nil {
		return "", err
	}
	if !typ.Valid() {
		return "", validationf("unrecognized listing type %q", string(typ))
	}
	if len(p.PriorBidders) > 0 && !e.opts.Policy.AllowRelistAfterHistory {
		return "", validationf("player %q already has bids and cannot be relisted", playerID)
	}
	if p.TeamID != teamID {
		return "", validationf("player %q is not in your team", playerID)
	}
	if err := e.ledger.SetListing(playerID, true, typ, &price); err != nil {
		return "", err
	}
	return fmt.Sprintf("player %s is now listed", p.Name), nil
}

// UnlistPlayer takes a player off the market, clearing the starting price.
func (e *Engine) UnlistPlayer(ctx context.Context, playerID, teamID string) (string, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.ledger.Player(playerID)
	if err != nil {
		return "", err
	}
	if _, err := e.ledger.Team(teamID); err != nil {
		return "", err
	}
	if p.TeamID != teamID {
		return "", validationf("player %q is not in your team", playerID)
	}
	if err := e.ledger.SetListing(playerID, false, p.Type, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("player %s is now unlisted", p.Name), nil
}

// DrainResult reports one cleanup pass over the bid collection.
type DrainResult struct {
	Count   int
	Records []journal.DrainedBid
	Message string
}

// DrainExpired moves every no-longer-active bid out of the collection and
// writes the batch to the journal. Draining never refunds: expiry is
// financially final. The snapshot-and-clear runs under the engine lock so no
// bid is observed mid-transition.
func (e *Engine) DrainExpired(ctx context.Context) (DrainResult, error) {
	_ = ctx

	e.mu.Lock()
	now := e.now()

	var drained []journal.DrainedBid
	for bidID, b := range e.bids {
		if b.IsActive(now) {
			continue
		}
		drained = append(drained, journal.DrainedBid{
			BidID:        b.ID,
			PlayerID:     b.PlayerID,
			BidderTeamID: b.BidderID,
			SellerTeamID: b.SellerID,
			Amount:       b.Amount,
			Wage:         b.Wage,
			CreatedAt:    b.CreatedAt,
			ExpiresAt:    b.ExpiresAt,
			DrainedAt:    now,
			ListingType:  b.Type.String(),
		})
		delete(e.bids, bidID)
		e.dropFromIndexLocked(b.PlayerID, bidID)
	}

	if len(drained) == 0 {
		e.mu.Unlock()
		return DrainResult{Message: "no expired bids to clean up"}, nil
	}

	sort.Slice(drained, func(i, j int) bool { return drained[i].CreatedAt.Before(drained[j].CreatedAt) })

	err := e.journal.RecordDrain(drained)
	e.mu.Unlock()

	if err != nil {
		return DrainResult{Count: len(drained), Records: drained}, fmt.Errorf("drain expired: %w", err)
	}

	e.log.Info("drained expired bids", "count", len(drained))

	return DrainResult{
		Count:   len(drained),
		Records: drained,
		Message: fmt.Sprintf("saved %d expired bids", len(drained)),
	}, nil
}

func (e *Engine) dropFromIndexLocked(playerID, bidID string) {
	bids := e.byPlayer[playerID]
	for i, b := range bids {
		if b.ID == bidID {
			e.byPlayer[playerID] = append(bids[:i:i], bids[i+1:]...)
			break
		}
	}
	if len(e.byPlayer[playerID]) == 0 {
		delete(e.byPlayer, playerID)
	}
}

// ActiveBids returns snapshots of every live bid, oldest first.
func (e *Engine) ActiveBids() []Bid {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var out []Bid
	for _, b := range e.bids {
		if b.IsActive(now) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ListedPlayers returns snapshots of every player currently on the market.
func (e *Engine) ListedPlayers() []ledger.PlayerRecord {
	return e.ledger.ListedPlayers()
}

// AccountInfo returns the team's current budget and wage capacity.
func (e *Engine) AccountInfo(teamID string) (ledger.TeamAccount, error) {
	return e.ledger.Team(teamID)
}
