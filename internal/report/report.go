// Package report defines the outbound event contract. Emission is
// fire-and-forget: the engine never learns whether an event was delivered.
package report

import "context"

// Kind names a lifecycle event. The engine emits bet_executed through
// exposure_alert; the login and scan kinds belong to the collaborators that
// share the results endpoint.
type Kind string

const (
	KindLoginSuccess   Kind = "login_success"
	KindLoginFailed    Kind = "login_failed"
	KindScanResult     Kind = "scan_result"
	KindBetExecuted    Kind = "bet_executed"
	KindBetFailed      Kind = "bet_failed"
	KindArbBlocked     Kind = "arb_blocked"
	KindArbFailed      Kind = "arb_failed"
	KindArbEmergency   Kind = "arb_emergency"
	KindArbSuccess     Kind = "arb_success"
	KindPairReconciled Kind = "pair_reconciled"
	KindExposureAlert  Kind = "exposure_alert"
)

// Sink publishes lifecycle events. Implementations must not block the caller
// beyond a channel send and must swallow delivery failures (logging them).
type Sink interface {
	Emit(ctx context.Context, kind Kind, payload any)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Emit(context.Context, Kind, any) {}
