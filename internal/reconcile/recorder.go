package reconcile

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"arbpair/internal/bet"
	"arbpair/internal/clock"
	"arbpair/internal/kv"
	"arbpair/internal/report"
)

// ExposureTTL is how long an exposure record stays in the KV store.
const ExposureTTL = 24 * time.Hour

// DefaultCap bounds the in-memory exposure list when no cap is configured.
const DefaultCap = 10000

// ExposureRecord is the persisted shape of a detected exposure, JSON field
// names exactly as the audit tooling reads them.
type ExposureRecord struct {
	BetPairID        string         `json:"bet_pair_id"`
	ArbID            string         `json:"arb_id"`
	Whitelabel       string         `json:"whitelabel"`
	PositiveProvider string         `json:"positive_provider"`
	HedgeProvider    string         `json:"hedge_provider"`
	PositiveTicket   string         `json:"positive_ticket"`
	HedgeTicket      string         `json:"hedge_ticket"`
	PositiveStatus   bet.Settlement `json:"positive_status"`
	HedgeStatus      bet.Settlement `json:"hedge_status"`
	ExposureReason   string         `json:"exposure_reason"`
	DetectedAt       float64        `json:"detected_at"`
	ExpectedOutcome  string         `json:"expected_outcome"`
	ActualOutcome    string         `json:"actual_outcome"`
}

// ExposurePrefix is the KV namespace exposure records live under.
const ExposurePrefix = "exposure:"

// ExposureKey builds the KV key an exposure record is stored under.
func ExposureKey(tenant, positiveProvider, betPairID string) string {
	return ExposurePrefix + tenant + ":" + positiveProvider + ":" + betPairID
}

// Recorder persists exposure records, mirrors them in a capped in-memory
// list, and raises the high-severity alert. It never touches cooldown state:
// the cooldown set at placement time runs its full window regardless of how
// the pair settled.
type Recorder struct {
	store kv.Store
	sink  report.Sink
	clock clock.Clock
	cap   int

	mu      sync.Mutex
	records []ExposureRecord
}

func NewRecorder(store kv.Store, sink report.Sink, clk clock.Clock, capacity int) *Recorder {
	if clk == nil {
		clk = clock.Real{}
	}
	if sink == nil {
		sink = report.Noop{}
	}
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Recorder{store: store, sink: sink, clock: clk, cap: capacity}
}

// Record handles one classified exposure: build the record, persist it
// (transport failure is a warning, the alert still goes out), mirror it in
// memory, and emit exposure_alert.
func (r *Recorder) Record(ctx context.Context, pair bet.PairRecord, pos, hedge bet.Settlement, reason string) {
	rec := ExposureRecord{
		BetPairID:        pair.BetPairID,
		ArbID:            pair.ArbID,
		Whitelabel:       pair.Tenant,
		PositiveProvider: pair.PositiveProvider,
		HedgeProvider:    pair.HedgeProvider,
		PositiveTicket:   pair.PositiveTicket,
		HedgeTicket:      pair.HedgeTicket,
		PositiveStatus:   pos,
		HedgeStatus:      hedge,
		ExposureReason:   reason,
		DetectedAt:       clock.Seconds(r.clock.Now()),
		ExpectedOutcome:  bet.ExpectedOutcome,
		ActualOutcome:    string(pos) + "_" + string(hedge),
	}
	key := ExposureKey(pair.Tenant, pair.PositiveProvider, pair.BetPairID)

	body, err := json.Marshal(rec)
	if err != nil {
		slog.Error("exposure.marshal", "key", key, "err", err)
	} else if err := r.store.SetWithTTL(ctx, key, string(body), ExposureTTL); err != nil {
		slog.Warn("exposure.persist", "key", key, "err", err)
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	if len(r.records) > r.cap {
		r.records = r.records[len(r.records)-r.cap:]
	}
	r.mu.Unlock()

	slog.Warn("exposure.detected",
		"arb_id", pair.ArbID,
		"bet_pair_id", pair.BetPairID,
		"reason", reason,
		"positive_status", pos,
		"hedge_status", hedge,
	)

	r.sink.Emit(ctx, report.KindExposureAlert, report.ExposureAlert{
		Severity:             "high",
		ArbID:                pair.ArbID,
		BetPairID:            pair.BetPairID,
		ExposureKey:          key,
		ExposureReason:       reason,
		PositiveTicket:       pair.PositiveTicket,
		HedgeTicket:          pair.HedgeTicket,
		PositiveStatus:       pos,
		HedgeStatus:          hedge,
		RequiresManualReview: true,
		AutoRebetDisabled:    true,
	})
}

// Snapshot returns a point-in-time copy of the in-memory exposure list.
func (r *Recorder) Snapshot() []ExposureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ExposureRecord, len(r.records))
	copy(out, r.records)
	return out
}
