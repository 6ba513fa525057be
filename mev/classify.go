package mev

import (
	"mevscan/config"
	"mevscan/types"
)

// IsDexTransaction reports whether the transaction is swap-like. A known DEX
// program in any instruction decides immediately; unknown programs fall back
// to the structural heuristic. Imprecision here is tolerated — the
// similarity threshold downstream absorbs false positives.
func (d *Detector) IsDexTransaction(tx *types.Transaction) bool {
	msg := &tx.Data.Message
	for i := range msg.Instructions {
		if programID, ok := msg.ProgramID(&msg.Instructions[i]); ok && d.registry.IsDexProgram(programID) {
			return true
		}
	}
	return d.isLikelySwapTransaction(tx)
}

// isLikelySwapTransaction infers swap-likeness from structure alone: enough
// accounts, at least one non-system/non-memo instruction, and token-account
// shaped addresses. All three must hold.
func (d *Detector) isLikelySwapTransaction(tx *types.Transaction) bool {
	msg := &tx.Data.Message

	if len(msg.AccountKeys) < d.cfg.MinSwapAccounts {
		return false
	}

	hasNonSystemInstruction := false
	for i := range msg.Instructions {
		programID, ok := msg.ProgramID(&msg.Instructions[i])
		if !ok {
			continue
		}
		if !d.registry.IsSystemProgram(programID) && !d.registry.IsMemoProgram(programID) {
			hasNonSystemInstruction = true
			break
		}
	}
	if !hasNonSystemInstruction {
		return false
	}

	return d.hasTokenAccountPattern(tx)
}

// hasTokenAccountPattern counts addresses of canonical on-chain length.
// Token accounts are typically 44 base-58 chars; four or more suggests a
// token-touching transaction.
func (d *Detector) hasTokenAccountPattern(tx *types.Transaction) bool {
	count := 0
	for _, key := range tx.Data.Message.AccountKeys {
		if len(key) == config.CANONICAL_ADDRESS_LEN {
			count++
		}
	}
	return count >= 4
}

// IsSimpleTransfer reports whether every instruction invokes only the system
// or memo program.
func (d *Detector) IsSimpleTransfer(tx *types.Transaction) bool {
	msg := &tx.Data.Message
	if len(msg.Instructions) == 0 {
		return false
	}
	for i := range msg.Instructions {
		programID, ok := msg.ProgramID(&msg.Instructions[i])
		if !ok {
			return false
		}
		category, known := d.registry.CategoryOf(programID)
		if !known || (category != CategorySystem && category != CategoryMemo) {
			return false
		}
	}
	return true
}

// IsVoteTransaction reports vote or stake maintenance traffic, matched by
// account list first and invoking program as a fallback.
func (d *Detector) IsVoteTransaction(tx *types.Transaction) bool {
	msg := &tx.Data.Message
	for _, account := range msg.AccountKeys {
		if d.registry.IsVoteOrStake(account) {
			return true
		}
	}
	for i := range msg.Instructions {
		if programID, ok := msg.ProgramID(&msg.Instructions[i]); ok && d.registry.IsVoteOrStake(programID) {
			return true
		}
	}
	return false
}
