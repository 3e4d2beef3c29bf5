// Package session replays a scripted sequence of auction actions against a
// live engine.
//
// Steps (from the session block of the config file):
//
//	list:     player, team, price, type
//	unlist:   player, team
//	bid:      player, team, amount, wage, type
//	withdraw: player, type
//	drain:    (no arguments)
//	wait:     delay (e.g. "500ms")
//
// A failing step is reported and the run continues; scripted sessions are
// expected to probe rejections as well as accepted actions.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/transferleague/auctionhouse/auction"
	"github.com/transferleague/auctionhouse/config"
	"github.com/transferleague/auctionhouse/ledger"
)

// Runner executes config steps against one engine, writing step outcomes to
// out.
type Runner struct {
	engine *auction.Engine
	out    io.Writer

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func New(e *auction.Engine, out io.Writer) *Runner {
	return &Runner{
		engine: e,
		out:    out,
		sleep:  time.Sleep,
	}
}

// Run applies the steps in order. Step failures are written to out and do not
// stop the run; only context cancellation aborts it.
func (r *Runner) Run(ctx context.Context, steps []config.Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Apply(ctx, step); err != nil {
			fmt.Fprintf(r.out, "step %d (%s): %v\n", i+1, step.Action, err)
		}
	}
	return nil
}

// Apply executes a single step.
func (r *Runner) Apply(ctx context.Context, step config.Step) error {
	switch step.Action {
	case "list":
		typ, err := ledger.ParseListingType(step.Type)
		if err != nil {
			return err
		}
		msg, err := r.engine.ListPlayer(ctx, step.Player, step.Team, step.Price, typ)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, msg)

	case "unlist":
		msg, err := r.engine.UnlistPlayer(ctx, step.Player, step.Team)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, msg)

	case "bid":
		typ, err := ledger.ParseListingType(step.Type)
		if err != nil {
			return err
		}
		res, err := r.engine.PlaceBid(ctx, auction.BidRequest{
			PlayerID: step.Player,
			TeamID:   step.Team,
			Amount:   step.Amount,
			Wage:     step.Wage,
			Type:     typ,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, res.Message)
		for _, outbid := range res.PriorBidders {
			fmt.Fprintf(r.out, "  team %s was outbid on player %s\n", outbid, step.Player)
		}

	case "withdraw":
		typ, err := ledger.ParseListingType(step.Type)
		if err != nil {
			return err
		}
		res, err := r.engine.WithdrawBid(ctx, step.Player, typ)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, res.Message)

	case "drain":
		res, err := r.engine.DrainExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, res.Message)

	case "wait":
		d, err := step.ParseDuration()
		if err != nil {
			return err
		}
		r.sleep(d)

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}
