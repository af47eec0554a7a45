// Package provider defines the gateway the engine places bets through.
// Real implementations (browser automation against bookmaker sites) live
// outside this repository; the package ships the contract, a per-account
// serialization wrapper, and a simulator for dev runs and tests.
package provider

import (
	"context"
	"sync"

	"arbpair/internal/bet"
)

// Gateway places wagers and reports ticket settlement. A non-nil error from
// Place is a transport failure; provider-side rejection comes back as a
// result with status "rejected". PollStatus is idempotent and may return
// pending indefinitely; its errors count as poll attempts upstream.
type Gateway interface {
	Place(ctx context.Context, leg bet.Leg) (bet.PlacementResult, error)
	PollStatus(ctx context.Context, providerID, ticketID, accountID string) (bet.Settlement, error)
}

// SerialPerAccount wraps a Gateway so placements against the same account
// run one at a time. Two concurrent stake entries on one provider session
// race on the same bet slip; cross-account placements stay parallel.
// Status polling is read-only and is not serialized.
type SerialPerAccount struct {
	next Gateway

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func SerializePerAccount(next Gateway) *SerialPerAccount {
	return &SerialPerAccount{next: next, locks: make(map[string]*sync.Mutex)}
}

func (s *SerialPerAccount) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

func (s *SerialPerAccount) Place(ctx context.Context, leg bet.Leg) (bet.PlacementResult, error) {
	l := s.accountLock(leg.AccountID)
	l.Lock()
	defer l.Unlock()
	return s.next.Place(ctx, leg)
}

func (s *SerialPerAccount) PollStatus(ctx context.Context, providerID, ticketID, accountID string) (bet.Settlement, error) {
	return s.next.PollStatus(ctx, providerID, ticketID, accountID)
}
