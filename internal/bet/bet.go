// Package bet holds the wire-level domain types shared by the queue
// consumer, the execution engine, and the settlement watcher. JSON tags
// follow the upstream payload field names exactly.
package bet

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ExpectedOutcome is what every pair is built to realize: one leg wins, the
// other loses.
const ExpectedOutcome = "arb_profit"

// Leg is an instruction to place one wager.
type Leg struct {
	BetID      string  `json:"betId"`
	AccountID  string  `json:"accountId"`
	ProviderID string  `json:"providerId,omitempty"`
	MatchName  string  `json:"matchName"`
	MarketType string  `json:"marketType"`
	Odds       float64 `json:"odds"`
	Stake      int64   `json:"stake"`
}

// PairRequest is a unit of work: a positive-EV leg and its hedge. The wire
// payload carries a single `provider` field; `hedgeProvider` is optional and
// Normalize falls back to the positive provider when it is absent.
type PairRequest struct {
	ArbID            string `json:"arbId"`
	Tenant           string `json:"whitelabel"`
	PositiveProvider string `json:"provider"`
	HedgeProvider    string `json:"hedgeProvider,omitempty"`
	PositiveLeg      Leg    `json:"positiveBet"`
	HedgeLeg         Leg    `json:"hedgeBet"`
}

// Normalize fills the derivable fields a minimal payload omits. Call after
// decoding, before Validate.
func (r *PairRequest) Normalize() {
	if r.HedgeProvider == "" {
		r.HedgeProvider = r.PositiveProvider
	}
	if r.PositiveLeg.ProviderID == "" {
		r.PositiveLeg.ProviderID = r.PositiveProvider
	}
	if r.HedgeLeg.ProviderID == "" {
		r.HedgeLeg.ProviderID = r.HedgeProvider
	}
}

func (r *PairRequest) Validate() error {
	var errs []string
	if r.ArbID == "" {
		errs = append(errs, "arbId is required")
	}
	if r.Tenant == "" {
		errs = append(errs, "whitelabel is required")
	}
	if r.PositiveProvider == "" {
		errs = append(errs, "provider is required")
	}
	if msg := checkLeg("positiveBet", r.PositiveLeg); msg != "" {
		errs = append(errs, msg)
	}
	if msg := checkLeg("hedgeBet", r.HedgeLeg); msg != "" {
		errs = append(errs, msg)
	}
	if r.PositiveLeg.BetID != "" && r.PositiveLeg.BetID == r.HedgeLeg.BetID {
		errs = append(errs, "positiveBet and hedgeBet must have distinct betIds")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func checkLeg(name string, l Leg) string {
	var missing []string
	if l.BetID == "" {
		missing = append(missing, "betId")
	}
	if l.AccountID == "" {
		missing = append(missing, "accountId")
	}
	if l.Odds < 1.0 {
		missing = append(missing, "odds >= 1.00")
	}
	if l.Stake <= 0 {
		missing = append(missing, "stake > 0")
	}
	if len(missing) == 0 {
		return ""
	}
	return name + " needs " + strings.Join(missing, ", ")
}

// PairRecord is created once both legs are accepted and carried by the
// settlement watcher. Ticket ids are copied verbatim from the gateway.
type PairRecord struct {
	BetPairID        string
	ArbID            string
	Tenant           string
	PositiveProvider string
	HedgeProvider    string
	PositiveTicket   string
	HedgeTicket      string
	PositiveAccount  string
	HedgeAccount     string
	CreatedAt        time.Time
	ExpectedOutcome  string
}

// NewPairRecord derives the pair id from the arb id and the wall clock, the
// same format the exposure keys are built from.
func NewPairRecord(req PairRequest, posTicket, hedgeTicket string, now time.Time) PairRecord {
	return PairRecord{
		BetPairID:        req.ArbID + "_" + strconv.FormatInt(now.Unix(), 10),
		ArbID:            req.ArbID,
		Tenant:           req.Tenant,
		PositiveProvider: req.PositiveProvider,
		HedgeProvider:    req.HedgeProvider,
		PositiveTicket:   posTicket,
		HedgeTicket:      hedgeTicket,
		PositiveAccount:  req.PositiveLeg.AccountID,
		HedgeAccount:     req.HedgeLeg.AccountID,
		CreatedAt:        now,
		ExpectedOutcome:  ExpectedOutcome,
	}
}
