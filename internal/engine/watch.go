package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"arbpair/internal/bet"
	"arbpair/internal/logging"
	"arbpair/internal/reconcile"
	"arbpair/internal/report"
)

// watchSettlement polls both legs of a placed pair to a terminal status and
// routes the joint outcome through the classifier. The two legs poll in
// parallel and independently; neither waits for the other between
// iterations. A cancelled watch drops its partial state without reconciling.
func (e *Engine) watchSettlement(ctx context.Context, pair bet.PairRecord) {
	log := logging.From(ctx).With("arb_id", pair.ArbID, "bet_pair_id", pair.BetPairID)
	log.Info("settle.watch.start",
		"positive_ticket", pair.PositiveTicket,
		"hedge_ticket", pair.HedgeTicket,
	)

	var pos, hedge bet.Settlement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pos, err = e.pollToTerminal(gctx, pair.PositiveProvider, pair.PositiveTicket, pair.PositiveAccount)
		return err
	})
	g.Go(func() error {
		var err error
		hedge, err = e.pollToTerminal(gctx, pair.HedgeProvider, pair.HedgeTicket, pair.HedgeAccount)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Info("settle.watch.cancelled")
		return
	}

	res := reconcile.Classify(pos, hedge)
	if res.Expected {
		log.Info("settle.reconciled", "positive_status", pos, "hedge_status", hedge)
		e.sink.Emit(ctx, report.KindPairReconciled, report.PairReconciled{
			ArbID:          pair.ArbID,
			BetPairID:      pair.BetPairID,
			PositiveStatus: pos,
			HedgeStatus:    hedge,
			Outcome:        "expected",
		})
		return
	}
	e.exposures.Record(ctx, pair, pos, hedge, res.Reason)
}

// pollToTerminal polls one ticket until it settles or the budget runs out.
// Gateway errors consume an attempt and sleep like a pending poll; after
// maxPolls attempts the leg is declared timed out. The only error returned
// is context cancellation.
func (e *Engine) pollToTerminal(ctx context.Context, providerID, ticketID, accountID string) (bet.Settlement, error) {
	log := logging.From(ctx)
	for attempt := 1; ; attempt++ {
		status, err := e.pollOnce(ctx, providerID, ticketID, accountID)
		if err == nil && status.Terminal() {
			return status, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Warn("settle.poll", "ticket_id", ticketID, "attempt", attempt, "err", err)
		}
		if attempt >= e.maxPolls {
			log.Warn("settle.timeout", "ticket_id", ticketID, "polls", attempt)
			return bet.SettlementTimeout, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(e.pollInterval):
		}
	}
}

func (e *Engine) pollOnce(ctx context.Context, providerID, ticketID, accountID string) (bet.Settlement, error) {
	cctx, cancel := context.WithTimeout(ctx, e.placeTimeout)
	defer cancel()
	return e.gateway.PollStatus(cctx, providerID, ticketID, accountID)
}
