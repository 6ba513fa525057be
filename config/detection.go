package config

import "github.com/spf13/viper"

// Detection holds every tunable used by the MEV detector. It is built once
// at startup and shared read-only; nothing mutates it after LoadDetection.
type Detection struct {
	// Jaccard similarity between the front and back account intersections
	// required to call a sandwich.
	SimilarityThreshold float64

	// Native transfers below this many lamports are treated as noise
	// (tips, rent, dust) and excluded from account extraction.
	SmallTransferThreshold uint64

	// Minimum account count for the structural swap heuristic.
	MinSwapAccounts int

	TradeSize TradeSize
	Loss      Loss
}

// TradeSize holds the coefficients used to approximate trade size from
// transaction structure when no balance data is available.
type TradeSize struct {
	InstructionComplexityValue uint64 // lamports attributed per instruction
	AccountFactorValue         uint64 // lamports attributed per account
	MinTradeSize               uint64 // floor for any estimated trade size
}

// Loss holds per-estimator coefficients and caps. The particular values are
// empirical; they are configuration, not contract.
type Loss struct {
	PreciseProfitShare  float64 // share of attacker profit attributed to the user
	PreciseFallbackRate float64 // loss rate when no positive profit is found
	PreciseCapPct       float64 // max loss percentage the precise method may report

	// Confidence of the precise method: starts at the base, boosted when the
	// profit magnitude and the trade value fall in plausible bands, capped.
	PreciseBaseConfidence  float64
	PreciseProfitBoost     float64
	PreciseTradeValueBoost float64
	PreciseConfidenceCap   float64
	PlausibleProfitMin     uint64 // lamports
	PlausibleProfitMax     uint64
	PlausibleTradeValueMax uint64

	PriceImpactCoefficient float64
	PriceImpactCapPct      float64

	TokenFlowCoefficient float64
	TokenFlowCapPct      float64

	NetProfitUserShareMin float64
	NetProfitUserShareMax float64
	NetProfitCapPct       float64
	PerInstructionFee     uint64

	FallbackBaseRate float64
	FallbackCapPct   float64

	// Validation bounds.
	MaxLossOfTradeValue  float64 // reject loss above this share of trade value
	MaxLossOfProfitRatio float64 // reject loss above this multiple of attacker profit
}

// LoadDetection builds the detection config from viper, falling back to the
// defaults below for anything unset. Call after viper has merged config.yaml.
func LoadDetection() Detection {
	v := viper.GetViper()

	v.SetDefault("mev.similarity-threshold", 0.5)
	v.SetDefault("mev.small-transfer-threshold", uint64(1_000_000))
	v.SetDefault("mev.min-swap-accounts", 6)

	v.SetDefault("mev.trade-size.instruction-complexity-value", uint64(100_000_000))
	v.SetDefault("mev.trade-size.account-factor-value", uint64(50_000_000))
	v.SetDefault("mev.trade-size.min-trade-size", uint64(100_000_000))

	v.SetDefault("mev.loss.precise-profit-share", 0.9)
	v.SetDefault("mev.loss.precise-fallback-rate", 0.005)
	v.SetDefault("mev.loss.precise-cap-pct", 15.0)
	v.SetDefault("mev.loss.precise-base-confidence", 0.7)
	v.SetDefault("mev.loss.precise-profit-boost", 0.15)
	v.SetDefault("mev.loss.precise-trade-value-boost", 0.1)
	v.SetDefault("mev.loss.precise-confidence-cap", 0.95)
	v.SetDefault("mev.loss.plausible-profit-min", uint64(10_000))
	v.SetDefault("mev.loss.plausible-profit-max", uint64(100_000_000_000))
	v.SetDefault("mev.loss.plausible-trade-value-max", uint64(1_000_000_000_000))
	v.SetDefault("mev.loss.price-impact-coefficient", 0.01)
	v.SetDefault("mev.loss.price-impact-cap-pct", 10.0)
	v.SetDefault("mev.loss.token-flow-coefficient", 0.008)
	v.SetDefault("mev.loss.token-flow-cap-pct", 10.0)
	v.SetDefault("mev.loss.net-profit-user-share-min", 0.3)
	v.SetDefault("mev.loss.net-profit-user-share-max", 0.7)
	v.SetDefault("mev.loss.net-profit-cap-pct", 12.0)
	v.SetDefault("mev.loss.per-instruction-fee", uint64(5_000))
	v.SetDefault("mev.loss.fallback-base-rate", 0.003)
	v.SetDefault("mev.loss.fallback-cap-pct", 5.0)
	v.SetDefault("mev.loss.max-loss-of-trade-value", 0.2)
	v.SetDefault("mev.loss.max-loss-of-profit-ratio", 1.5)

	return Detection{
		SimilarityThreshold:    v.GetFloat64("mev.similarity-threshold"),
		SmallTransferThreshold: v.GetUint64("mev.small-transfer-threshold"),
		MinSwapAccounts:        v.GetInt("mev.min-swap-accounts"),
		TradeSize: TradeSize{
			InstructionComplexityValue: v.GetUint64("mev.trade-size.instruction-complexity-value"),
			AccountFactorValue:         v.GetUint64("mev.trade-size.account-factor-value"),
			MinTradeSize:               v.GetUint64("mev.trade-size.min-trade-size"),
		},
		Loss: Loss{
			PreciseProfitShare:     v.GetFloat64("mev.loss.precise-profit-share"),
			PreciseFallbackRate:    v.GetFloat64("mev.loss.precise-fallback-rate"),
			PreciseCapPct:          v.GetFloat64("mev.loss.precise-cap-pct"),
			PreciseBaseConfidence:  v.GetFloat64("mev.loss.precise-base-confidence"),
			PreciseProfitBoost:     v.GetFloat64("mev.loss.precise-profit-boost"),
			PreciseTradeValueBoost: v.GetFloat64("mev.loss.precise-trade-value-boost"),
			PreciseConfidenceCap:   v.GetFloat64("mev.loss.precise-confidence-cap"),
			PlausibleProfitMin:     v.GetUint64("mev.loss.plausible-profit-min"),
			PlausibleProfitMax:     v.GetUint64("mev.loss.plausible-profit-max"),
			PlausibleTradeValueMax: v.GetUint64("mev.loss.plausible-trade-value-max"),
			PriceImpactCoefficient: v.GetFloat64("mev.loss.price-impact-coefficient"),
			PriceImpactCapPct:      v.GetFloat64("mev.loss.price-impact-cap-pct"),
			TokenFlowCoefficient:   v.GetFloat64("mev.loss.token-flow-coefficient"),
			TokenFlowCapPct:        v.GetFloat64("mev.loss.token-flow-cap-pct"),
			NetProfitUserShareMin:  v.GetFloat64("mev.loss.net-profit-user-share-min"),
			NetProfitUserShareMax:  v.GetFloat64("mev.loss.net-profit-user-share-max"),
			NetProfitCapPct:        v.GetFloat64("mev.loss.net-profit-cap-pct"),
			PerInstructionFee:      v.GetUint64("mev.loss.per-instruction-fee"),
			FallbackBaseRate:       v.GetFloat64("mev.loss.fallback-base-rate"),
			FallbackCapPct:         v.GetFloat64("mev.loss.fallback-cap-pct"),
			MaxLossOfTradeValue:    v.GetFloat64("mev.loss.max-loss-of-trade-value"),
			MaxLossOfProfitRatio:   v.GetFloat64("mev.loss.max-loss-of-profit-ratio"),
		},
	}
}

// DefaultDetection returns the compiled-in defaults without touching viper.
// Used by tests and as a safe zero-config fallback.
func DefaultDetection() Detection {
	return Detection{
		SimilarityThreshold:    0.5,
		SmallTransferThreshold: 1_000_000,
		MinSwapAccounts:        6,
		TradeSize: TradeSize{
			InstructionComplexityValue: 100_000_000,
			AccountFactorValue:         50_000_000,
			MinTradeSize:               100_000_000,
		},
		Loss: Loss{
			PreciseProfitShare:     0.9,
			PreciseFallbackRate:    0.005,
			PreciseCapPct:          15.0,
			PreciseBaseConfidence:  0.7,
			PreciseProfitBoost:     0.15,
			PreciseTradeValueBoost: 0.1,
			PreciseConfidenceCap:   0.95,
			PlausibleProfitMin:     10_000,
			PlausibleProfitMax:     100_000_000_000,
			PlausibleTradeValueMax: 1_000_000_000_000,
			PriceImpactCoefficient: 0.01,
			PriceImpactCapPct:      10.0,
			TokenFlowCoefficient:   0.008,
			TokenFlowCapPct:        10.0,
			NetProfitUserShareMin:  0.3,
			NetProfitUserShareMax:  0.7,
			NetProfitCapPct:        12.0,
			PerInstructionFee:      5_000,
			FallbackBaseRate:       0.003,
			FallbackCapPct:         5.0,
			MaxLossOfTradeValue:    0.2,
			MaxLossOfProfitRatio:   1.5,
		},
	}
}
