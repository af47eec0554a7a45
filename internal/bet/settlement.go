package bet

// PlacementStatus is the provider's verdict on a single placement attempt.
type PlacementStatus string

const (
	PlacementAccepted PlacementStatus = "accepted"
	PlacementRejected PlacementStatus = "rejected"
	PlacementError    PlacementStatus = "error"
)

// PlacementResult is the outcome of one placement call, in the exact shape
// reporter payloads embed it (positiveBetResult / hedgeBetResult).
type PlacementResult struct {
	Success  bool            `json:"success"`
	BetID    string          `json:"betId"`
	TicketID string          `json:"ticketId,omitempty"`
	Status   PlacementStatus `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// Accepted reports whether the provider confirmed the wager and issued a
// ticket.
func (r PlacementResult) Accepted() bool {
	return r.Success && r.Status == PlacementAccepted
}

// Settlement is the settlement state of one ticket. Everything except
// pending is terminal.
type Settlement string

const (
	SettlementPending  Settlement = "pending"
	SettlementWon      Settlement = "won"
	SettlementLost     Settlement = "lost"
	SettlementVoid     Settlement = "void"
	SettlementHalfWon  Settlement = "half_won"
	SettlementHalfLost Settlement = "half_lost"
	// SettlementTimeout is produced by the watcher when the poll budget runs
	// out, SettlementError when a provider reports an unpollable ticket.
	SettlementTimeout Settlement = "timeout"
	SettlementError   Settlement = "error"
)

// Settlements lists every settlement state, pending included. Classifier
// totality is checked against this set.
var Settlements = []Settlement{
	SettlementPending,
	SettlementWon,
	SettlementLost,
	SettlementVoid,
	SettlementHalfWon,
	SettlementHalfLost,
	SettlementTimeout,
	SettlementError,
}

func (s Settlement) Terminal() bool {
	return s != "" && s != SettlementPending
}

// Half reports a partial (half-won/half-lost) settlement.
func (s Settlement) Half() bool {
	return s == SettlementHalfWon || s == SettlementHalfLost
}
