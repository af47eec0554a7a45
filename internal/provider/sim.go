package provider

import (
	"context"
	"fmt"
	"sync"

	"arbpair/internal/bet"
	"arbpair/internal/clock"
)

// Simulator is an in-process gateway for dev runs. It accepts every leg,
// issues tickets in the upstream TKT<millis><suffix> format, and settles
// them with alternating won/lost outcomes after a few pending polls, so a
// pair placed against it reconciles to the expected arb outcome.
type Simulator struct {
	clock clock.Clock

	mu          sync.Mutex
	settleAfter int
	placed      int
	polls       map[string]int
	outcomes    map[string]bet.Settlement
	scripted    []bet.Settlement
}

func NewSimulator(clk clock.Clock) *Simulator {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Simulator{
		clock:       clk,
		settleAfter: 2,
		polls:       make(map[string]int),
		outcomes:    make(map[string]bet.Settlement),
	}
}

// Script queues settlement outcomes for upcoming placements, consumed in
// order before the default won/lost alternation. Used to drive exposure
// paths in dev.
func (s *Simulator) Script(outcomes ...bet.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted = append(s.scripted, outcomes...)
}

func (s *Simulator) Place(ctx context.Context, leg bet.Leg) (bet.PlacementResult, error) {
	if err := ctx.Err(); err != nil {
		return bet.PlacementResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.placed++
	ticket := fmt.Sprintf("TKT%d%03d", s.clock.Now().UnixMilli(), 100+s.placed%900)

	outcome := bet.SettlementWon
	if len(s.scripted) > 0 {
		outcome = s.scripted[0]
		s.scripted = s.scripted[1:]
	} else if s.placed%2 == 0 {
		outcome = bet.SettlementLost
	}
	s.outcomes[ticket] = outcome

	return bet.PlacementResult{
		Success:  true,
		BetID:    leg.BetID,
		TicketID: ticket,
		Status:   bet.PlacementAccepted,
	}, nil
}

func (s *Simulator) PollStatus(ctx context.Context, providerID, ticketID, accountID string) (bet.Settlement, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls[ticketID]++
	if s.polls[ticketID] <= s.settleAfter {
		return bet.SettlementPending, nil
	}
	outcome, ok := s.outcomes[ticketID]
	if !ok {
		return bet.SettlementError, nil
	}
	return outcome, nil
}
