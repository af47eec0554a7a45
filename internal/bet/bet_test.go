package bet

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() PairRequest {
	return PairRequest{
		ArbID:            "arb-1",
		Tenant:           "acme",
		PositiveProvider: "bookie-a",
		PositiveLeg: Leg{
			BetID:     "b-pos",
			AccountID: "acc-1",
			MatchName: "Alpha FC vs Beta FC",
			Odds:      2.10,
			Stake:     1000,
		},
		HedgeLeg: Leg{
			BetID:     "b-hedge",
			AccountID: "acc-2",
			MatchName: "Alpha FC vs Beta FC",
			Odds:      1.95,
			Stake:     1100,
		},
	}
}

func TestNormalizeFallsBackToPositiveProvider(t *testing.T) {
	req := validRequest()
	req.Normalize()
	assert.Equal(t, "bookie-a", req.HedgeProvider)
	assert.Equal(t, "bookie-a", req.PositiveLeg.ProviderID)
	assert.Equal(t, "bookie-a", req.HedgeLeg.ProviderID)
}

func TestNormalizeKeepsExplicitHedgeProvider(t *testing.T) {
	req := validRequest()
	req.HedgeProvider = "bookie-b"
	req.Normalize()
	assert.Equal(t, "bookie-a", req.PositiveLeg.ProviderID)
	assert.Equal(t, "bookie-b", req.HedgeLeg.ProviderID)
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	req := validRequest()
	req.Normalize()
	require.NoError(t, req.Validate())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	var req PairRequest
	err := req.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "arbId is required")
	assert.Contains(t, msg, "whitelabel is required")
	assert.Contains(t, msg, "provider is required")
	assert.Contains(t, msg, "positiveBet needs")
	assert.Contains(t, msg, "hedgeBet needs")
}

func TestValidateRejectsSharedBetID(t *testing.T) {
	req := validRequest()
	req.HedgeLeg.BetID = req.PositiveLeg.BetID
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distinct betIds")
}

func TestValidateRejectsSubUnityOdds(t *testing.T) {
	req := validRequest()
	req.PositiveLeg.Odds = 0.98
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "odds >= 1.00")
}

func TestNewPairRecordDerivesIDFromArbAndClock(t *testing.T) {
	req := validRequest()
	req.Normalize()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := NewPairRecord(req, "TKT-P", "TKT-H", now)

	assert.Equal(t, "arb-1_"+strconv.FormatInt(now.Unix(), 10), rec.BetPairID)
	assert.Equal(t, "acme", rec.Tenant)
	assert.Equal(t, "bookie-a", rec.PositiveProvider)
	assert.Equal(t, "bookie-a", rec.HedgeProvider)
	assert.Equal(t, "TKT-P", rec.PositiveTicket)
	assert.Equal(t, "TKT-H", rec.HedgeTicket)
	assert.Equal(t, "acc-1", rec.PositiveAccount)
	assert.Equal(t, "acc-2", rec.HedgeAccount)
	assert.Equal(t, ExpectedOutcome, rec.ExpectedOutcome)
}

func TestAcceptedNeedsSuccessAndStatus(t *testing.T) {
	assert.True(t, PlacementResult{Success: true, Status: PlacementAccepted}.Accepted())
	assert.False(t, PlacementResult{Success: false, Status: PlacementAccepted}.Accepted())
	assert.False(t, PlacementResult{Success: true, Status: PlacementRejected}.Accepted())
	assert.False(t, PlacementResult{}.Accepted())
}

func TestTerminalExcludesOnlyPendingAndEmpty(t *testing.T) {
	assert.False(t, SettlementPending.Terminal())
	assert.False(t, Settlement("").Terminal())
	for _, s := range Settlements {
		if s == SettlementPending {
			continue
		}
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestHalf(t *testing.T) {
	assert.True(t, SettlementHalfWon.Half())
	assert.True(t, SettlementHalfLost.Half())
	assert.False(t, SettlementWon.Half())
	assert.False(t, SettlementVoid.Half())
}
