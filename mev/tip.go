package mev

import (
	"mevscan/config"
	"mevscan/types"
)

// CheckTipInNearbyTransactions scans the window around the target for a
// relayer-tip transfer and, on a hit, materializes the bundle it anchors.
// The backward scan runs first; the tip then precedes the target and the
// bundle is [tip, tip+4]. Otherwise the forward scan runs and the bundle is
// [tip-4, tip]. Both are clipped to the window. No tip found is a normal
// outcome and returns nil.
func (d *Detector) CheckTipInNearbyTransactions(window types.Transactions, targetIndex int) *types.TipBundle {
	if targetIndex < 0 || targetIndex >= len(window) {
		return nil
	}
	if len(d.registry.TipRecipients()) == 0 {
		return nil // registry carries no tip addresses, nothing to anchor on
	}

	for i := targetIndex - 1; i >= 0; i-- {
		recipient, amount, ok := d.tipTransfer(window[i])
		if !ok {
			continue
		}
		end := i + config.BUNDLE_MAX_TXS
		if end > len(window) {
			end = len(window)
		}
		d.log.Info("Relayer tip found before target, materializing bundle",
			"tip_tx", window[i].Signature, "tip_recipient", recipient, "tip_lamports", amount,
			"bundle_start", i, "bundle_end", end-1)
		return &types.TipBundle{
			TipIndex:     i,
			TipRecipient: recipient,
			TipLamports:  amount,
			TipBeforeTx:  true,
			Transactions: window[i:end],
		}
	}

	for i := targetIndex + 1; i < len(window); i++ {
		recipient, amount, ok := d.tipTransfer(window[i])
		if !ok {
			continue
		}
		start := i - (config.BUNDLE_MAX_TXS - 1)
		if start < 0 {
			start = 0
		}
		d.log.Info("Relayer tip found after target, materializing bundle",
			"tip_tx", window[i].Signature, "tip_recipient", recipient, "tip_lamports", amount,
			"bundle_start", start, "bundle_end", i)
		return &types.TipBundle{
			TipIndex:     i,
			TipRecipient: recipient,
			TipLamports:  amount,
			TipBeforeTx:  false,
			Transactions: window[start : i+1],
		}
	}

	return nil
}

// tipTransfer checks a single transaction for a native transfer whose
// destination operand resolves to a known tip recipient. The destination
// operand must reference the tip address's position in this transaction's
// account list and the invoking program must be the system program.
func (d *Detector) tipTransfer(tx *types.Transaction) (string, uint64, bool) {
	msg := &tx.Data.Message

	// Positions of tip recipients within this account list, if any.
	tipIndices := make(map[int]string)
	for idx, account := range msg.AccountKeys {
		if d.registry.IsTipRecipient(account) {
			tipIndices[idx] = account
		}
	}
	if len(tipIndices) == 0 {
		return "", 0, false
	}

	for i := range msg.Instructions {
		inst := &msg.Instructions[i]
		programID, ok := msg.ProgramID(inst)
		if !ok || !d.registry.IsSystemProgram(programID) {
			continue
		}
		for _, accIndex := range inst.Accounts {
			recipient, hit := tipIndices[int(accIndex)]
			if !hit {
				continue
			}
			amount, decoded := DecodeTransferLamports(inst.Data)
			if !decoded || amount == 0 {
				continue
			}
			return recipient, amount, true
		}
	}
	return "", 0, false
}
