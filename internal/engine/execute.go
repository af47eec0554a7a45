package engine

import (
	"context"

	"arbpair/internal/bet"
	"arbpair/internal/clock"
	"arbpair/internal/cooldown"
	"arbpair/internal/logging"
	"arbpair/internal/report"
)

// Execute runs one PairRequest through the full state machine. Exactly one
// worker in the fleet gets past the idempotency claim for a given arb id;
// everything after that is this worker's responsibility alone. Every exit
// path emits the event that explains it.
func (e *Engine) Execute(ctx context.Context, req bet.PairRequest) {
	log := logging.From(ctx).With("arb_id", req.ArbID)

	claimed, err := e.store.SetIfAbsent(ctx, executedKey(req.ArbID), claimValue, claimTTL)
	if err != nil {
		// The claim may or may not have landed. Placing now could double
		// execute, so stand down; the enqueuer owns any retry.
		log.Error("engine.claim", "err", err)
		return
	}
	if !claimed {
		log.Info("engine.blocked", "reason", "already_executed")
		e.sink.Emit(ctx, report.KindArbBlocked, report.ArbBlocked{
			ArbID:  req.ArbID,
			Reason: "already_executed",
		})
		return
	}

	key := cooldown.Key(req.Tenant, req.PositiveProvider, req.PositiveLeg.AccountID)
	if remaining, active := e.cooldowns.Remaining(key); active {
		log.Info("engine.blocked", "reason", "cooldown", "remaining_s", remaining)
		e.sink.Emit(ctx, report.KindArbBlocked, report.ArbBlocked{
			ArbID:            req.ArbID,
			Reason:           "cooldown",
			RemainingSeconds: remaining,
		})
		return
	}

	if !e.sessions.Ready(req.PositiveLeg.AccountID) {
		log.Warn("engine.failed", "reason", "not_logged_in", "account_id", req.PositiveLeg.AccountID)
		e.sink.Emit(ctx, report.KindArbFailed, report.ArbFailed{
			ArbID:     req.ArbID,
			Reason:    "not_logged_in",
			FailedBet: "positive",
		})
		return
	}

	log.Info("engine.executing",
		"positive_bet", req.PositiveLeg.BetID,
		"hedge_bet", req.HedgeLeg.BetID,
	)

	posRes := e.placeLeg(ctx, req.PositiveLeg)
	if !posRes.Accepted() {
		// The hedge must never be placed without its positive leg standing.
		log.Warn("engine.positive_rejected", "status", posRes.Status, "err", posRes.Error)
		e.sink.Emit(ctx, report.KindArbFailed, report.ArbFailed{
			ArbID:             req.ArbID,
			Reason:            "positive_bet_rejected",
			PositiveBetResult: &posRes,
			HedgeBetStatus:    "cancelled",
		})
		return
	}

	hedgeRes := e.placeLeg(ctx, req.HedgeLeg)
	if !hedgeRes.Accepted() {
		// One-legged position: the positive ticket stands unhedged. Alert
		// for a manual hedge and still take the cooldown so the account is
		// not immediately re-used while exposed.
		log.Error("engine.hedge_failed",
			"positive_ticket", posRes.TicketID,
			"status", hedgeRes.Status,
			"err", hedgeRes.Error,
		)
		e.sink.Emit(ctx, report.KindArbEmergency, report.ArbEmergency{
			ArbID:             req.ArbID,
			Severity:          "critical",
			PositiveBetResult: posRes,
			HedgeBetResult:    hedgeRes,
			ActionRequired:    "manual_hedge",
		})
		e.cooldowns.Acquire(ctx, key)
		return
	}

	acquiredAt := e.cooldowns.Acquire(ctx, key)
	pair := bet.NewPairRecord(req, posRes.TicketID, hedgeRes.TicketID, acquiredAt)

	e.sink.Emit(ctx, report.KindArbSuccess, report.ArbSuccess{
		ArbID:             req.ArbID,
		PositiveBetResult: posRes,
		HedgeBetResult:    hedgeRes,
		CooldownKey:       key,
		CooldownUntil:     clock.Seconds(acquiredAt) + cooldown.Seconds,
	})
	log.Info("engine.pair_placed",
		"bet_pair_id", pair.BetPairID,
		"positive_ticket", pair.PositiveTicket,
		"hedge_ticket", pair.HedgeTicket,
		"cooldown_key", key,
	)

	e.watchers.Add(1)
	go func() {
		defer e.watchers.Done()
		e.watchSettlement(ctx, pair)
	}()
}

// placeLeg runs a single gateway placement under the per-call timeout and
// emits the per-bet event. Transport errors are folded into an error-status
// result so downstream payloads always carry a result object.
func (e *Engine) placeLeg(ctx context.Context, leg bet.Leg) bet.PlacementResult {
	cctx, cancel := context.WithTimeout(ctx, e.placeTimeout)
	defer cancel()

	res, err := e.gateway.Place(cctx, leg)
	if err != nil {
		res = bet.PlacementResult{
			BetID:  leg.BetID,
			Status: bet.PlacementError,
			Error:  err.Error(),
		}
	}

	if res.Accepted() {
		e.sink.Emit(ctx, report.KindBetExecuted, report.BetExecuted{
			BetID:     leg.BetID,
			AccountID: leg.AccountID,
			MatchName: leg.MatchName,
			Stake:     leg.Stake,
			Odds:      leg.Odds,
			TicketID:  res.TicketID,
			Status:    res.Status,
		})
		return res
	}

	reason := res.Error
	if reason == "" {
		reason = string(res.Status)
	}
	e.sink.Emit(ctx, report.KindBetFailed, report.BetFailed{
		BetID: leg.BetID,
		Error: reason,
	})
	return res
}
