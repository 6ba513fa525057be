package mev

import (
	"context"

	"mevscan/types"
)

// SOL is the label used for native-currency amounts in loss breakdowns,
// distinguishing them from mint-addressed token amounts.
const SOL = "SOL"

// BalanceFetcher is the slice of the ledger client the precise estimator
// needs: transactions augmented with pre/post balance data. Balance data may
// be unavailable for old transactions; that is data absence, not failure.
type BalanceFetcher interface {
	GetTransactionWithBalanceChanges(ctx context.Context, signature string) (*types.TransactionWithMeta, error)
}

// LossEstimator is one strategy for estimating the victim's loss. A nil
// result means the strategy is not applicable to the given context.
type LossEstimator interface {
	Name() string
	Estimate(ec *EstimateContext) *types.UserLoss
}

// EstimateContext carries everything an estimator may consume. Meta fields
// are nil when balance-change data was unavailable.
type EstimateContext struct {
	Front  *types.Transaction
	Target *types.Transaction
	Back   *types.Transaction

	FrontMeta  *types.TransactionMeta
	TargetMeta *types.TransactionMeta
	BackMeta   *types.TransactionMeta

	SharedAccounts []string
}

func defaultEstimators(d *Detector) []LossEstimator {
	return []LossEstimator{
		&preciseBalanceDeltaEstimator{d},
		&priceImpactEstimator{d},
		&tokenFlowEstimator{d},
		&attackerNetProfitEstimator{d},
		&conservativeSlippageEstimator{d},
	}
}

// CalculatePreciseLoss fetches balance-augmented copies of the three
// sandwich transactions and runs the estimator cascade over them. Fetch
// failures propagate unmodified; missing balance data degrades the cascade
// to its structural estimators instead of failing.
func (d *Detector) CalculatePreciseLoss(ctx context.Context, fetcher BalanceFetcher, frontSig, targetSig, backSig string, sharedAccounts []string) (*types.UserLoss, error) {
	front, err := fetcher.GetTransactionWithBalanceChanges(ctx, frontSig)
	if err != nil {
		return nil, err
	}
	target, err := fetcher.GetTransactionWithBalanceChanges(ctx, targetSig)
	if err != nil {
		return nil, err
	}
	back, err := fetcher.GetTransactionWithBalanceChanges(ctx, backSig)
	if err != nil {
		return nil, err
	}
	if front == nil || target == nil || back == nil {
		return nil, nil
	}

	ec := &EstimateContext{
		Front:          &front.Transaction,
		Target:         &target.Transaction,
		Back:           &back.Transaction,
		FrontMeta:      front.Meta,
		TargetMeta:     target.Meta,
		BackMeta:       back.Meta,
		SharedAccounts: sharedAccounts,
	}
	return d.runCascade(ec), nil
}

// CalculateInstructionBasedLoss is the secondary path for transactions whose
// balance data the node no longer serves: the cascade runs on decoded
// instruction amounts and structure only.
func (d *Detector) CalculateInstructionBasedLoss(front, target, back *types.Transaction, sharedAccounts []string) *types.UserLoss {
	ec := &EstimateContext{
		Front:          front,
		Target:         target,
		Back:           back,
		SharedAccounts: sharedAccounts,
	}
	return d.runCascade(ec)
}

// runCascade runs every estimator, validates each result, and selects the
// best: the highest-confidence validated result, else the highest-confidence
// result of any. The slippage fallback always produces something, so the
// cascade never returns nil for a well-formed context.
func (d *Detector) runCascade(ec *EstimateContext) *types.UserLoss {
	if ec == nil || ec.Front == nil || ec.Target == nil || ec.Back == nil {
		return nil
	}

	tradeValue := d.estimateTradeSize(ec.Target)

	var best, bestValidated *types.UserLoss
	for _, estimator := range d.estimators {
		result := estimator.Estimate(ec)
		if result == nil {
			d.log.Debug("Loss estimator not applicable", "method", estimator.Name())
			continue
		}
		result.ValidationPassed = d.validateLoss(result, tradeValue)
		d.log.Debug("Loss estimate produced",
			"method", estimator.Name(), "loss_lamports", result.EstimatedLossLamports,
			"confidence", result.Confidence, "validated", result.ValidationPassed)

		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
		if result.ValidationPassed && (bestValidated == nil || result.Confidence > bestValidated.Confidence) {
			bestValidated = result
		}
	}

	if bestValidated != nil {
		return bestValidated
	}
	return best
}

// validateLoss rejects implausible estimates: a loss above the configured
// share of trade value, a zero loss despite positive attacker profit, or a
// loss above the configured multiple of attacker profit — an attacker cannot
// sustainably impose more loss than it captures.
func (d *Detector) validateLoss(loss *types.UserLoss, tradeValue uint64) bool {
	if tradeValue > 0 && float64(loss.EstimatedLossLamports) > d.cfg.Loss.MaxLossOfTradeValue*float64(tradeValue) {
		return false
	}
	if loss.EstimatedLossLamports == 0 && loss.AttackerProfit > 0 {
		return false
	}
	if loss.AttackerProfit > 0 && float64(loss.EstimatedLossLamports) > d.cfg.Loss.MaxLossOfProfitRatio*float64(loss.AttackerProfit) {
		return false
	}
	return true
}

// estimateTradeSize approximates a transaction's trade value in lamports.
// Decoded native transfers are used when present; otherwise instruction
// count and account count act as complexity proxies. Never below the
// configured floor.
func (d *Detector) estimateTradeSize(tx *types.Transaction) uint64 {
	size := d.totalTransferLamports(tx)
	if size == 0 {
		msg := &tx.Data.Message
		size = uint64(len(msg.Instructions))*d.cfg.TradeSize.InstructionComplexityValue +
			uint64(len(msg.AccountKeys))*d.cfg.TradeSize.AccountFactorValue
	}
	if size < d.cfg.TradeSize.MinTradeSize {
		size = d.cfg.TradeSize.MinTradeSize
	}
	return size
}

// clampLossPct clamps the percentage to the estimator's cap and scales the
// absolute loss down with it, so the pair stays consistent.
func clampLossPct(lossLamports, tradeValue uint64, capPct float64) (uint64, float64) {
	if tradeValue == 0 {
		return lossLamports, 0
	}
	pct := float64(lossLamports) / float64(tradeValue) * 100.0
	if pct > capPct {
		pct = capPct
		lossLamports = uint64(capPct / 100.0 * float64(tradeValue))
	}
	return lossLamports, pct
}
