// Package ledger holds the authoritative in-memory tables of team accounts
// and player records. All mutation goes through Ledger methods, each of which
// is atomic with respect to every other Ledger operation.
package ledger

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// TeamAccount tracks a club's remaining transfer budget and wage capacity,
// both in whole currency units.
type TeamAccount struct {
	ID     string
	Name   string
	Budget int64
	Wage   int64
}

// PlayerRecord is one tradeable player. StartingPrice is nil unless the
// player is (or was) listed; PriorBidders is append-only for the lifetime of
// a listing episode and may contain duplicates.
type PlayerRecord struct {
	ID            string
	TeamID        string
	Name          string
	Listed        bool
	Type          ListingType
	StartingPrice *int64
	Wage          int64
	PriorBidders  []string
}

// Ledger is the shared mutable state behind the auction engine. Accounts are
// never removed during a session.
type Ledger struct {
	mu      sync.Mutex
	teams   map[string]*TeamAccount
	players map[string]*PlayerRecord
}

func New() *Ledger {
	return &Ledger{
		teams:   make(map[string]*TeamAccount),
		players: make(map[string]*PlayerRecord),
	}
}

// AddTeam registers a team account. Re-adding an ID replaces the record;
// seeding happens once at startup so this is not a concern in practice.
func (l *Ledger) AddTeam(t TeamAccount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := t
	l.teams[t.ID] = &c
}

func (l *Ledger) AddPlayer(p PlayerRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := p
	c.PriorBidders = append([]string(nil), p.PriorBidders...)
	l.players[p.ID] = &c
}

// Team returns a snapshot of the team account.
func (l *Ledger) Team(teamID string) (TeamAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.teams[teamID]
	if !ok {
		return TeamAccount{}, fmt.Errorf("team %q: %w", teamID, ErrTeamNotFound)
	}
	return *t, nil
}

// Player returns a snapshot of the player record, including a copy of the
// prior-bidder history.
func (l *Ledger) Player(playerID string) (PlayerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return PlayerRecord{}, fmt.Errorf("player %q: %w", playerID, ErrPlayerNotFound)
	}
	return snapshotPlayer(p), nil
}

func snapshotPlayer(p *PlayerRecord) PlayerRecord {
	c := *p
	c.PriorBidders = append([]string(nil), p.PriorBidders...)
	if p.StartingPrice != nil {
		v := *p.StartingPrice
		c.StartingPrice = &v
	}
	return c
}

// CanAfford reports whether the team can cover both the amount and the wage.
func (l *Ledger) CanAfford(teamID string, amount, wage int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.teams[teamID]
	if !ok {
		return false, fmt.Errorf("team %q: %w", teamID, ErrTeamNotFound)
	}
	return t.Budget >= amount && t.Wage >= wage, nil
}

// Debit subtracts amount from the budget and wage from the wage capacity.
// It fails without mutating if either balance would go negative; callers are
// expected to have pre-checked with CanAfford.
func (l *Ledger) Debit(teamID string, amount, wage int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.teams[teamID]
	if !ok {
		return fmt.Errorf("team %q: %w", teamID, ErrTeamNotFound)
	}
	if t.Budget < amount || t.Wage < wage {
		return fmt.Errorf("team %q: %w", teamID, ErrInsufficientFunds)
	}
	t.Budget -= amount
	t.Wage -= wage
	return nil
}

// Credit adds amount to the budget and wage to the wage capacity. Refunds
// are not capped, so this always succeeds for a known team.
func (l *Ledger) Credit(teamID string, amount, wage int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.teams[teamID]
	if !ok {
		return fmt.Errorf("team %q: %w", teamID, ErrTeamNotFound)
	}
	t.Budget += amount
	t.Wage += wage
	return nil
}

// ReverseCredit backs out an earlier Credit. Unlike Debit it is not capped:
// reversal is an internal bookkeeping path and may transiently drive a
// balance negative when the team has since spent the proceeds.
func (l *Ledger) ReverseCredit(teamID string, amount, wage int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.teams[teamID]
	if !ok {
		return fmt.Errorf("team %q: %w", teamID, ErrTeamNotFound)
	}
	t.Budget -= amount
	t.Wage -= wage
	return nil
}

// SetListing flips the listing flag and metadata in one step. Listing
// requires a starting price; unlisting clears it.
func (l *Ledger) SetListing(playerID string, listed bool, typ ListingType, price *int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return fmt.Errorf("player %q: %w", playerID, ErrPlayerNotFound)
	}
	p.Listed = listed
	if listed {
		p.Type = typ
		if price != nil {
			v := *price
			p.StartingPrice = &v
		}
	} else {
		p.StartingPrice = nil
	}
	return nil
}

// ClearListed drops only the listed flag, keeping the starting price. Used
// when a bid is accepted: the player leaves the open market but the latest
// bid amount remains the floor for superseding bids.
func (l *Ledger) ClearListed(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return fmt.Errorf("player %q: %w", playerID, ErrPlayerNotFound)
	}
	p.Listed = false
	return nil
}

// SetFloor overwrites the player's starting price with the latest accepted
// bid amount, making it the new minimum for any superseding bid.
func (l *Ledger) SetFloor(playerID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return fmt.Errorf("player %q: %w", playerID, ErrPlayerNotFound)
	}
	p.StartingPrice = &amount
	return nil
}

// AppendPriorBidder records a team in the player's bid history. Duplicates
// are allowed; the history only ever grows within a listing episode.
func (l *Ledger) AppendPriorBidder(playerID, teamID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.players[playerID]
	if !ok {
		return fmt.Errorf("player %q: %w", playerID, ErrPlayerNotFound)
	}
	p.PriorBidders = append(p.PriorBidders, teamID)
	return nil
}

// ListedPlayers returns snapshots of every currently listed player.
func (l *Ledger) ListedPlayers() []PlayerRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []PlayerRecord
	for _, p := range l.players {
		if p.Listed {
			out = append(out, snapshotPlayer(p))
		}
	}
	return out
}

// Teams returns snapshots of every team account.
func (l *Ledger) Teams() []TeamAccount {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TeamAccount, 0, len(l.teams))
	for _, t := range l.teams {
		out = append(out, *t)
	}
	return out
}
