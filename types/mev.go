package types

import "time"

// SandwichDetails describes a detected sandwich: the implicated front and
// back transactions and the account intersection used as evidence.
type SandwichDetails struct {
	FrontTx             string    `ch:"frontTx" json:"frontTx"`
	BackTx              string    `ch:"backTx" json:"backTx"`
	VictimTx            string    `ch:"victimTx" json:"victimTx"`
	AccountIntersection []string  `ch:"accountIntersection" json:"accountIntersection"`
	Similarity          float64   `ch:"similarity" json:"similarity"`
	UserLoss            *UserLoss `json:"userLoss,omitempty"`
}

// FrontrunDetails describes a detected front-run: the nearest preceding
// swap-like transaction sharing writable accounts with the victim.
type FrontrunDetails struct {
	FrontTx             string   `ch:"frontTx" json:"frontTx"`
	VictimTx            string   `ch:"victimTx" json:"victimTx"`
	AccountIntersection []string `ch:"accountIntersection" json:"accountIntersection"`
}

// TokenLoss is a per-token loss breakdown entry. Exactly one entry of a
// UserLoss is the primary token the headline loss is denominated in.
type TokenLoss struct {
	Mint     string  `ch:"mint" json:"mint"`
	Amount   uint64  `ch:"amount" json:"amount"`
	Decimals uint8   `ch:"decimals" json:"decimals"`
	UIAmount float64 `ch:"uiAmount" json:"uiAmount"`
	Primary  bool    `ch:"primary" json:"primary"`
}

// UserLoss is the output of one loss estimator.
type UserLoss struct {
	EstimatedLossLamports uint64      `ch:"estimatedLossLamports" json:"estimatedLossLamports"`
	LossPercentage        float64     `ch:"lossPercentage" json:"lossPercentage"`
	CalculationMethod     string      `ch:"calculationMethod" json:"calculationMethod"`
	AttackerProfit        uint64      `ch:"attackerProfit" json:"attackerProfit"`
	AttackerProfitToken   string      `ch:"attackerProfitToken" json:"attackerProfitToken"`
	Confidence            float64     `ch:"confidence" json:"confidence"`
	ValidationPassed      bool        `ch:"validationPassed" json:"validationPassed"`
	TokenLosses           []TokenLoss `json:"tokenLosses,omitempty"`
}

// TipBundle is a relayer bundle materialized around a located tip transfer.
type TipBundle struct {
	TipIndex     int          // index of the tip tx within the original window
	TipRecipient string       // tip address from the registry
	TipLamports  uint64       // decoded transfer amount
	TipBeforeTx  bool         // tip precedes the target transaction
	Transactions Transactions // bounded bundle window, at most five txs
}

// AnalysisReport is one completed analysis of a target signature, recorded
// by the outer shell. The detector itself never persists anything.
type AnalysisReport struct {
	Signature  string    `ch:"signature"`
	Slot       uint64    `ch:"slot"`
	AnalyzedAt time.Time `ch:"analyzedAt"`

	InBundle    bool   `ch:"inBundle"`
	TipLamports uint64 `ch:"tipLamports"`

	SandwichFound bool   `ch:"sandwichFound"`
	FrontrunFound bool   `ch:"frontrunFound"`
	FrontTx       string `ch:"frontTx"`
	BackTx        string `ch:"backTx"`

	LossLamports   uint64  `ch:"lossLamports"`
	LossPercentage float64 `ch:"lossPercentage"`
	LossMethod     string  `ch:"lossMethod"`
	AttackerProfit uint64  `ch:"attackerProfit"`
	Confidence     float64 `ch:"confidence"`
}
