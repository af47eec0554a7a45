package report

import "arbpair/internal/bet"

// Event payloads. Field names match the upstream API consumer; most are
// camelCase, except action_required which the consumer expects in snake_case.

type BetExecuted struct {
	BetID     string              `json:"betId"`
	AccountID string              `json:"accountId"`
	MatchName string              `json:"matchName"`
	Stake     int64               `json:"stake"`
	Odds      float64             `json:"odds"`
	TicketID  string              `json:"ticketId"`
	Status    bet.PlacementStatus `json:"status"`
}

type BetFailed struct {
	BetID string `json:"betId"`
	Error string `json:"error"`
}

type ArbBlocked struct {
	ArbID  string `json:"arbId"`
	Reason string `json:"reason"` // "already_executed" | "cooldown"
	// RemainingSeconds accompanies the cooldown reason only.
	RemainingSeconds float64 `json:"remainingSeconds,omitempty"`
}

type ArbFailed struct {
	ArbID     string `json:"arbId"`
	Reason    string `json:"reason"` // "not_logged_in" | "positive_bet_rejected"
	FailedBet string `json:"failedBet,omitempty"`
	// Set on positive_bet_rejected: the failed placement and the fate of the
	// never-placed hedge.
	PositiveBetResult *bet.PlacementResult `json:"positiveBetResult,omitempty"`
	HedgeBetStatus    string               `json:"hedgeBetStatus,omitempty"`
}

type ArbEmergency struct {
	ArbID             string              `json:"arbId"`
	Severity          string              `json:"severity"`
	PositiveBetResult bet.PlacementResult `json:"positiveBetResult"`
	HedgeBetResult    bet.PlacementResult `json:"hedgeBetResult"`
	ActionRequired    string              `json:"action_required"`
}

type ArbSuccess struct {
	ArbID             string              `json:"arbId"`
	PositiveBetResult bet.PlacementResult `json:"positiveBetResult"`
	HedgeBetResult    bet.PlacementResult `json:"hedgeBetResult"`
	CooldownKey       string              `json:"cooldownKey"`
	CooldownUntil     float64             `json:"cooldownUntil"`
}

type PairReconciled struct {
	ArbID          string         `json:"arbId"`
	BetPairID      string         `json:"betPairId"`
	PositiveStatus bet.Settlement `json:"positiveStatus"`
	HedgeStatus    bet.Settlement `json:"hedgeStatus"`
	Outcome        string         `json:"outcome"` // always "expected"
}

type ExposureAlert struct {
	Severity             string         `json:"severity"`
	ArbID                string         `json:"arbId"`
	BetPairID            string         `json:"betPairId"`
	ExposureKey          string         `json:"exposureKey"`
	ExposureReason       string         `json:"exposureReason"`
	PositiveTicket       string         `json:"positiveTicket"`
	HedgeTicket          string         `json:"hedgeTicket"`
	PositiveStatus       bet.Settlement `json:"positiveStatus"`
	HedgeStatus          bet.Settlement `json:"hedgeStatus"`
	RequiresManualReview bool           `json:"requiresManualReview"`
	AutoRebetDisabled    bool           `json:"autoRebetDisabled"`
}
