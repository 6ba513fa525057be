package mev

import (
	"math"

	"mevscan/types"
	"mevscan/utils"
)

// assetFlow is the per-asset money movement of one transaction, computed
// from balance metadata. SOL flow is keyed under the SOL label alongside
// token mints.
type assetFlow struct {
	inflow   map[string]uint64
	outflow  map[string]uint64
	decimals map[string]uint8
}

func flowFromMeta(meta *types.TransactionMeta) *assetFlow {
	flow := &assetFlow{
		inflow:   make(map[string]uint64),
		outflow:  make(map[string]uint64),
		decimals: map[string]uint8{SOL: 9},
	}

	for i := range meta.PreBalances {
		delta := meta.LamportDelta(i)
		if delta > 0 {
			flow.inflow[SOL] += uint64(delta)
		} else if delta < 0 {
			flow.outflow[SOL] += uint64(-delta)
		}
	}

	for mint, delta := range meta.TokenDelta() {
		if delta > 0 {
			flow.inflow[mint] += uint64(delta)
		} else if delta < 0 {
			flow.outflow[mint] += uint64(-delta)
		}
	}
	for _, tb := range meta.PostTokenBalances {
		flow.decimals[tb.Mint] = tb.UITokenAmount.Decimals
	}
	for _, tb := range meta.PreTokenBalances {
		flow.decimals[tb.Mint] = tb.UITokenAmount.Decimals
	}
	return flow
}

// preciseBalanceDeltaEstimator works from actual balance changes: the
// attacker's round trip shows up as front-leg inflow followed by a larger
// back-leg outflow of the same asset. The positive difference per asset is
// the attacker profit; the victim is assumed to bear the configured share.
type preciseBalanceDeltaEstimator struct{ d *Detector }

func (e *preciseBalanceDeltaEstimator) Name() string { return "precise_balance_delta" }

func (e *preciseBalanceDeltaEstimator) Estimate(ec *EstimateContext) *types.UserLoss {
	if ec.FrontMeta == nil || ec.BackMeta == nil {
		return nil
	}
	cfg := e.d.cfg.Loss

	frontFlow := flowFromMeta(ec.FrontMeta)
	backFlow := flowFromMeta(ec.BackMeta)

	// Actual victim outflow beats the structural trade-size proxy when larger.
	tradeValue := e.d.estimateTradeSize(ec.Target)
	if ec.TargetMeta != nil {
		if out := flowFromMeta(ec.TargetMeta).outflow[SOL]; out > tradeValue {
			tradeValue = out
		}
	}

	// Profit per asset: what the back leg pushed out beyond what the front
	// leg pulled in.
	profits := make(map[string]uint64)
	for asset, out := range backFlow.outflow {
		in := frontFlow.inflow[asset]
		if out > in {
			profits[asset] = out - in
		}
	}

	if len(profits) == 0 {
		// Balance data present but no detectable round trip. Estimate a
		// minimal loss from trade value rather than claiming zero.
		loss, pct := clampLossPct(uint64(cfg.PreciseFallbackRate*float64(tradeValue)), tradeValue, cfg.PreciseCapPct)
		return &types.UserLoss{
			EstimatedLossLamports: loss,
			LossPercentage:        pct,
			CalculationMethod:     e.Name(),
			AttackerProfitToken:   SOL,
			Confidence:            e.confidence(0, tradeValue),
		}
	}

	// Dominant asset carries the headline numbers; SOL wins ties.
	dominant := ""
	for asset, profit := range profits {
		if dominant == "" || profit > profits[dominant] || (profit == profits[dominant] && asset == SOL) {
			dominant = asset
		}
	}

	loss := uint64(cfg.PreciseProfitShare * float64(profits[dominant]))
	loss, pct := clampLossPct(loss, tradeValue, cfg.PreciseCapPct)

	var tokenLosses []types.TokenLoss
	for asset, profit := range profits {
		amount := uint64(cfg.PreciseProfitShare * float64(profit))
		decimals := backFlow.decimals[asset]
		tokenLosses = append(tokenLosses, types.TokenLoss{
			Mint:     asset,
			Amount:   amount,
			Decimals: decimals,
			UIAmount: utils.FloatRound(float64(amount)/math.Pow10(int(decimals)), 9),
			Primary:  asset == dominant,
		})
	}

	return &types.UserLoss{
		EstimatedLossLamports: loss,
		LossPercentage:        pct,
		CalculationMethod:     e.Name(),
		AttackerProfit:        profits[dominant],
		AttackerProfitToken:   dominant,
		Confidence:            e.confidence(profits[dominant], tradeValue),
		TokenLosses:           tokenLosses,
	}
}

// confidence starts at the configured base and grows when the numbers look
// like a real extraction: a profit inside the plausible lamport band, and a
// trade value inside the sane range. Capped so balance data never reads as
// certainty.
func (e *preciseBalanceDeltaEstimator) confidence(profit, tradeValue uint64) float64 {
	cfg := e.d.cfg.Loss

	conf := cfg.PreciseBaseConfidence
	if profit >= cfg.PlausibleProfitMin && profit <= cfg.PlausibleProfitMax {
		conf += cfg.PreciseProfitBoost
	}
	if tradeValue >= e.d.cfg.TradeSize.MinTradeSize && tradeValue <= cfg.PlausibleTradeValueMax {
		conf += cfg.PreciseTradeValueBoost
	}
	if conf > cfg.PreciseConfidenceCap {
		conf = cfg.PreciseConfidenceCap
	}
	return conf
}

// priceImpactEstimator models the front leg moving the pool price against
// the victim: loss grows with the front trade's size relative to the
// victim's.
type priceImpactEstimator struct{ d *Detector }

func (e *priceImpactEstimator) Name() string { return "price_impact" }

func (e *priceImpactEstimator) Estimate(ec *EstimateContext) *types.UserLoss {
	cfg := e.d.cfg.Loss

	frontSize := e.d.estimateTradeSize(ec.Front)
	targetSize := e.d.estimateTradeSize(ec.Target)
	if targetSize == 0 {
		return nil
	}

	ratio := float64(frontSize) / float64(targetSize)
	if ratio > 10 {
		ratio = 10
	}

	loss, pct := clampLossPct(uint64(float64(targetSize)*ratio*cfg.PriceImpactCoefficient), targetSize, cfg.PriceImpactCapPct)
	return &types.UserLoss{
		EstimatedLossLamports: loss,
		LossPercentage:        pct,
		CalculationMethod:     e.Name(),
		AttackerProfit:        loss,
		AttackerProfitToken:   SOL,
		Confidence:            0.5,
	}
}

// tokenFlowEstimator scales an assumed extraction rate by how much of the
// victim's account surface the attacker touched: more shared writable
// accounts means more pools in play.
type tokenFlowEstimator struct{ d *Detector }

func (e *tokenFlowEstimator) Name() string { return "token_flow" }

func (e *tokenFlowEstimator) Estimate(ec *EstimateContext) *types.UserLoss {
	cfg := e.d.cfg.Loss

	targetSize := e.d.estimateTradeSize(ec.Target)
	rate := cfg.TokenFlowCoefficient * math.Sqrt(float64(len(ec.SharedAccounts)))

	loss, pct := clampLossPct(uint64(float64(targetSize)*rate), targetSize, cfg.TokenFlowCapPct)
	return &types.UserLoss{
		EstimatedLossLamports: loss,
		LossPercentage:        pct,
		CalculationMethod:     e.Name(),
		AttackerProfitToken:   SOL,
		Confidence:            0.45,
	}
}

// attackerNetProfitEstimator works backward from what the attacker made:
// decoded transfer volume of the two legs less a per-instruction fee charge.
// Applicable only when both legs share a signer, which ties them to one
// operator.
type attackerNetProfitEstimator struct{ d *Detector }

func (e *attackerNetProfitEstimator) Name() string { return "attacker_net_profit" }

func (e *attackerNetProfitEstimator) Estimate(ec *EstimateContext) *types.UserLoss {
	cfg := e.d.cfg.Loss

	if !sharesSigner(ec.Front, ec.Back) {
		return nil
	}

	frontVolume := e.d.totalTransferLamports(ec.Front)
	backVolume := e.d.totalTransferLamports(ec.Back)
	instructions := len(ec.Front.Data.Message.Instructions) + len(ec.Back.Data.Message.Instructions)
	fees := int64(cfg.PerInstructionFee) * int64(instructions)

	netProfit := int64(backVolume) - int64(frontVolume) - fees
	if netProfit <= 0 {
		return nil
	}

	// The victim's share of the extraction grows with its size relative to
	// the front leg.
	frontSize := e.d.estimateTradeSize(ec.Front)
	targetSize := e.d.estimateTradeSize(ec.Target)
	userShare := cfg.NetProfitUserShareMin +
		(cfg.NetProfitUserShareMax-cfg.NetProfitUserShareMin)*float64(targetSize)/float64(targetSize+frontSize)

	loss, pct := clampLossPct(uint64(userShare*float64(netProfit)), targetSize, cfg.NetProfitCapPct)
	return &types.UserLoss{
		EstimatedLossLamports: loss,
		LossPercentage:        pct,
		CalculationMethod:     e.Name(),
		AttackerProfit:        uint64(netProfit),
		AttackerProfitToken:   SOL,
		Confidence:            0.55,
	}
}

// conservativeSlippageEstimator is the floor of the cascade: a deliberately
// low slippage-style estimate from transaction structure alone. It always
// produces a result.
type conservativeSlippageEstimator struct{ d *Detector }

func (e *conservativeSlippageEstimator) Name() string { return "conservative_slippage" }

func (e *conservativeSlippageEstimator) Estimate(ec *EstimateContext) *types.UserLoss {
	cfg := e.d.cfg.Loss

	targetSize := e.d.estimateTradeSize(ec.Target)

	instructions := len(ec.Target.Data.Message.Instructions)
	if instructions > 10 {
		instructions = 10
	}
	shared := len(ec.SharedAccounts)
	if shared > 8 {
		shared = 8
	}

	rate := cfg.FallbackBaseRate * (1 + float64(instructions)/10) * (1 + float64(shared)/8)
	loss, pct := clampLossPct(uint64(float64(targetSize)*rate/2), targetSize, cfg.FallbackCapPct)
	return &types.UserLoss{
		EstimatedLossLamports: loss,
		LossPercentage:        pct,
		CalculationMethod:     e.Name(),
		AttackerProfitToken:   SOL,
		Confidence:            0.3,
	}
}

func sharesSigner(a, b *types.Transaction) bool {
	bSigners := b.Signers()
	for _, signer := range a.Signers() {
		if utils.HasString(bSigners, signer) {
			return true
		}
	}
	return false
}
