package mev

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mevscan/config"
	"mevscan/types"
	"mevscan/utils"
)

type stubFetcher map[string]*types.TransactionWithMeta

func (f stubFetcher) GetTransactionWithBalanceChanges(_ context.Context, signature string) (*types.TransactionWithMeta, error) {
	return f[signature], nil
}

func withMeta(tx *types.Transaction, pre, post []uint64) *types.TransactionWithMeta {
	return &types.TransactionWithMeta{
		Transaction: *tx,
		Meta: &types.TransactionMeta{
			PreBalances:  pre,
			PostBalances: post,
		},
	}
}

func TestCalculatePreciseLoss(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1")
	victim := swapTx("victimSig", "victim1", "pond1")
	back := swapTx("backSig", "attacker1", "pond1")

	// Front leg gains 10 lamports, back leg pushes out 60: the attacker's
	// round trip nets 50, of which the victim bears 90% = 45.
	fetcher := stubFetcher{
		"frontSig":  withMeta(front, []uint64{100}, []uint64{110}),
		"victimSig": withMeta(victim, []uint64{100}, []uint64{100}),
		"backSig":   withMeta(back, []uint64{100}, []uint64{40}),
	}

	loss, err := d.CalculatePreciseLoss(context.Background(), fetcher, "frontSig", "victimSig", "backSig", []string{"pond1"})
	require.NoError(t, err)
	require.NotNil(t, loss)
	assert.Equal(t, "precise_balance_delta", loss.CalculationMethod)
	assert.Equal(t, uint64(45), loss.EstimatedLossLamports)
	assert.Equal(t, uint64(50), loss.AttackerProfit)
	assert.Equal(t, SOL, loss.AttackerProfitToken)
	assert.True(t, loss.ValidationPassed, "45 lamports is within 1.5x the 50 lamport profit")

	require.Len(t, loss.TokenLosses, 1)
	assert.Equal(t, SOL, loss.TokenLosses[0].Mint)
	assert.True(t, loss.TokenLosses[0].Primary)
}

func TestCalculatePreciseLossNoRoundTrip(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1")
	victim := swapTx("victimSig", "victim1", "pond1")
	back := swapTx("backSig", "attacker2", "pond1")

	// Back leg pushes out nothing: no detectable extraction, the estimate
	// degrades to the minimal rate instead of claiming zero.
	fetcher := stubFetcher{
		"frontSig":  withMeta(front, []uint64{100}, []uint64{110}),
		"victimSig": withMeta(victim, []uint64{100}, []uint64{100}),
		"backSig":   withMeta(back, []uint64{100}, []uint64{100}),
	}

	loss, err := d.CalculatePreciseLoss(context.Background(), fetcher, "frontSig", "victimSig", "backSig", nil)
	require.NoError(t, err)
	require.NotNil(t, loss)
	assert.Equal(t, "precise_balance_delta", loss.CalculationMethod)
	assert.Equal(t, uint64(0), loss.AttackerProfit)
	assert.Greater(t, loss.EstimatedLossLamports, uint64(0))
}

func TestCalculateInstructionBasedLossAlwaysProduces(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1")
	victim := swapTx("victimSig", "victim1", "pond1")
	back := swapTx("backSig", "attacker2", "pond1")

	loss := d.CalculateInstructionBasedLoss(front, victim, back, []string{"pond1"})
	require.NotNil(t, loss)
	assert.Greater(t, loss.Confidence, 0.0)
	assert.LessOrEqual(t, loss.LossPercentage, d.cfg.Loss.PriceImpactCapPct)
}

func TestPreciseConfidenceTracksPlausibility(t *testing.T) {
	cfg := config.DefaultDetection()
	d := NewDetector(cfg, NewRegistry())
	e := &preciseBalanceDeltaEstimator{d}

	victim := swapTx("victimSig", "victim1", "pond1")

	// Dust-sized profit: only the trade-value boost applies.
	ec := &EstimateContext{
		Front:     swapTx("frontSig", "attacker1", "pond1"),
		Target:    victim,
		Back:      swapTx("backSig", "attacker1", "pond1"),
		FrontMeta: &types.TransactionMeta{PreBalances: []uint64{100}, PostBalances: []uint64{110}},
		BackMeta:  &types.TransactionMeta{PreBalances: []uint64{100}, PostBalances: []uint64{40}},
	}
	dustLoss := e.Estimate(ec)
	require.NotNil(t, dustLoss)
	assert.InDelta(t, cfg.Loss.PreciseBaseConfidence+cfg.Loss.PreciseTradeValueBoost, dustLoss.Confidence, utils.EPSILON)

	// Plausible profit magnitude on top: both boosts, capped.
	ec.FrontMeta = &types.TransactionMeta{PreBalances: []uint64{1_000_000_000}, PostBalances: []uint64{1_000_000_000}}
	ec.BackMeta = &types.TransactionMeta{PreBalances: []uint64{100_000_000}, PostBalances: []uint64{50_000_000}}
	plausibleLoss := e.Estimate(ec)
	require.NotNil(t, plausibleLoss)
	assert.InDelta(t, cfg.Loss.PreciseConfidenceCap, plausibleLoss.Confidence, utils.EPSILON)
	assert.Greater(t, plausibleLoss.Confidence, dustLoss.Confidence)

	// Implausibly large trade value forfeits the trade-value boost.
	ec.Target = transferTx("hugeSig", "whale1", "dest1", 2_000_000_000_000)
	hugeLoss := e.Estimate(ec)
	require.NotNil(t, hugeLoss)
	assert.InDelta(t, cfg.Loss.PreciseBaseConfidence+cfg.Loss.PreciseProfitBoost, hugeLoss.Confidence, utils.EPSILON)
}

func TestValidateLoss(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	// Within every bound.
	assert.True(t, d.validateLoss(&types.UserLoss{EstimatedLossLamports: 45, AttackerProfit: 50}, 1_000))

	// Loss above 20% of trade value.
	assert.False(t, d.validateLoss(&types.UserLoss{EstimatedLossLamports: 300, AttackerProfit: 500}, 1_000))

	// Zero loss despite positive attacker profit.
	assert.False(t, d.validateLoss(&types.UserLoss{EstimatedLossLamports: 0, AttackerProfit: 50}, 1_000))

	// Loss above 1.5x attacker profit.
	assert.False(t, d.validateLoss(&types.UserLoss{EstimatedLossLamports: 80, AttackerProfit: 50}, 1_000))

	// No profit signal: only the trade-value bound applies.
	assert.True(t, d.validateLoss(&types.UserLoss{EstimatedLossLamports: 100}, 1_000))
}

func TestClampLossPct(t *testing.T) {
	loss, pct := clampLossPct(50, 1_000, 10.0)
	assert.Equal(t, uint64(50), loss)
	assert.InDelta(t, 5.0, pct, 1e-9)

	// Above the cap: both the percentage and the absolute loss shrink.
	loss, pct = clampLossPct(500, 1_000, 10.0)
	assert.Equal(t, uint64(100), loss)
	assert.InDelta(t, 10.0, pct, 1e-9)

	loss, pct = clampLossPct(500, 0, 10.0)
	assert.Equal(t, uint64(500), loss)
	assert.Equal(t, 0.0, pct)
}

func TestEstimateTradeSize(t *testing.T) {
	cfg := config.DefaultDetection()
	d := NewDetector(cfg, NewRegistry())

	// Decoded transfers dominate when present.
	big := transferTx("sig1", "payer1", "dest1", 5_000_000_000)
	assert.Equal(t, uint64(5_000_000_000), d.estimateTradeSize(big))

	// Structural estimate otherwise, never below the floor.
	swap := swapTx("sig2", "signer1", "pond1")
	size := d.estimateTradeSize(swap)
	assert.GreaterOrEqual(t, size, cfg.TradeSize.MinTradeSize)
}

func TestRunCascadeSelectsHighestValidatedConfidence(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1")
	victim := swapTx("victimSig", "victim1", "pond1")
	back := swapTx("backSig", "attacker1", "pond1")

	ec := &EstimateContext{
		Front:  front,
		Target: victim,
		Back:   back,
		FrontMeta: &types.TransactionMeta{
			PreBalances: []uint64{1_000_000_000}, PostBalances: []uint64{1_100_000_000},
		},
		TargetMeta: &types.TransactionMeta{
			PreBalances: []uint64{500_000_000}, PostBalances: []uint64{500_000_000},
		},
		BackMeta: &types.TransactionMeta{
			PreBalances: []uint64{1_000_000_000}, PostBalances: []uint64{850_000_000},
		},
		SharedAccounts: []string{"pond1"},
	}

	loss := d.runCascade(ec)
	require.NotNil(t, loss)
	assert.Equal(t, "precise_balance_delta", loss.CalculationMethod)
	assert.True(t, loss.ValidationPassed)
}
