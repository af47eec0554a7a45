// Package reconcile turns a pair's joint settlement into a verdict: either
// the expected arb outcome, or a financial exposure that must be recorded
// and flagged for manual review.
package reconcile

import "arbpair/internal/bet"

// Exposure reasons.
const (
	ReasonPositiveVoidHedgeActive = "positive_void_hedge_active"
	ReasonHedgeVoidPositiveActive = "hedge_void_positive_active"
	ReasonBothLostUnexpected      = "both_lost_unexpected"
	ReasonBothWonUnexpected       = "both_won_unexpected"
	reasonPartialPrefix           = "partial_settlement_"
)

// Result is the classifier's verdict. Reason is empty iff Expected.
type Result struct {
	Expected bool
	Reason   string
}

// Classify maps a (positive, hedge) settlement pair to its verdict. The
// cases are evaluated strictly top to bottom and the first match wins: void
// handling consumes all void combinations before the half checks run, which
// is what makes the table total and unambiguous.
func Classify(pos, hedge bet.Settlement) Result {
	switch {
	case pos == bet.SettlementVoid && hedge != bet.SettlementVoid:
		return exposure(ReasonPositiveVoidHedgeActive)
	case hedge == bet.SettlementVoid && pos != bet.SettlementVoid:
		return exposure(ReasonHedgeVoidPositiveActive)
	case pos == bet.SettlementVoid && hedge == bet.SettlementVoid:
		return Result{Expected: true}
	case pos.Half() || hedge.Half():
		return exposure(partialReason(pos, hedge))
	case pos == bet.SettlementLost && hedge == bet.SettlementLost:
		return exposure(ReasonBothLostUnexpected)
	case pos == bet.SettlementWon && hedge == bet.SettlementWon:
		return exposure(ReasonBothWonUnexpected)
	case pos == bet.SettlementWon && hedge == bet.SettlementLost,
		pos == bet.SettlementLost && hedge == bet.SettlementWon:
		return Result{Expected: true}
	default:
		// Everything that remains involves timeout or error.
		return exposure(partialReason(pos, hedge))
	}
}

func exposure(reason string) Result {
	return Result{Reason: reason}
}

func partialReason(pos, hedge bet.Settlement) string {
	return reasonPartialPrefix + string(pos) + "_" + string(hedge)
}
