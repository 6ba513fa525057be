package types

import "math"

// TransactionWithMeta is a transaction augmented with the execution metadata
// needed for precise loss analysis. Meta may be nil for very old
// transactions whose balance data the node no longer serves.
type TransactionWithMeta struct {
	Transaction
	Meta *TransactionMeta `json:"meta"`
}

// TransactionMeta carries pre/post native balances (index-aligned with the
// account list) and pre/post per-token balances.
type TransactionMeta struct {
	Err               any            `json:"err"`
	Fee               uint64         `json:"fee"`
	PreBalances       []uint64       `json:"preBalances"`
	PostBalances      []uint64       `json:"postBalances"`
	PreTokenBalances  []TokenBalance `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance `json:"postTokenBalances"`
}

// TokenBalance is one token-account balance snapshot.
type TokenBalance struct {
	AccountIndex  int           `json:"accountIndex"`
	Mint          string        `json:"mint"`
	Owner         string        `json:"owner,omitempty"`
	UITokenAmount UITokenAmount `json:"uiTokenAmount"`
}

// UITokenAmount is a UI-formatted token amount with explicit decimals.
type UITokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       uint8    `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// RawAmount converts the UI amount back to smallest units:
// raw = round(ui * 10^decimals).
func (u *UITokenAmount) RawAmount() uint64 {
	if u.UIAmount == nil {
		return 0
	}
	raw := *u.UIAmount * math.Pow10(int(u.Decimals))
	if raw <= 0 {
		return 0
	}
	return uint64(math.Round(raw))
}

// LamportDelta returns post - pre for the given account index, or 0 when the
// index is out of range of either balance slice.
func (m *TransactionMeta) LamportDelta(index int) int64 {
	if m == nil || index < 0 || index >= len(m.PreBalances) || index >= len(m.PostBalances) {
		return 0
	}
	return int64(m.PostBalances[index]) - int64(m.PreBalances[index])
}

// TokenDelta aggregates post - pre raw token amounts per mint across all
// token accounts of the transaction.
func (m *TransactionMeta) TokenDelta() map[string]int64 {
	if m == nil {
		return nil
	}
	deltas := make(map[string]int64)
	for _, tb := range m.PostTokenBalances {
		deltas[tb.Mint] += int64(tb.UITokenAmount.RawAmount())
	}
	for _, tb := range m.PreTokenBalances {
		deltas[tb.Mint] -= int64(tb.UITokenAmount.RawAmount())
	}
	return deltas
}
