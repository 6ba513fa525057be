package mev

import (
	"strings"

	MapSet "github.com/deckarep/golang-set/v2"

	"mevscan/config"
	"mevscan/types"
)

// Restricted base-58 alphabet for address syntax checks.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// IsAccountWritable classifies an account index as writable per the fixed
// four-segment account ordering:
//
//	1. signed writable     [0, required - readonlySigned)
//	2. signed readonly     [required - readonlySigned, required)
//	3. unsigned writable   [required, total - readonlyUnsigned)
//	4. unsigned readonly   [total - readonlyUnsigned, total)
//
// Without a header every index is treated as writable, so a missing header
// never blocks downstream analysis.
func IsAccountWritable(accountIndex int, msg *types.Message) bool {
	header := msg.Header
	if header == nil {
		return true
	}

	required := int(header.NumRequiredSignatures)
	readonlySigned := int(header.NumReadonlySignedAccounts)
	readonlyUnsigned := int(header.NumReadonlyUnsignedAccounts)

	if accountIndex < required {
		return accountIndex < required-readonlySigned
	}
	readonlyUnsignedStart := len(msg.AccountKeys) - readonlyUnsigned
	return accountIndex >= required && accountIndex < readonlyUnsignedStart
}

// isValidAddress applies the basic syntactic check used when filtering
// comparison sets: canonical length bound and restricted base-58 alphabet.
func isValidAddress(address string) bool {
	if len(address) == 0 || len(address) > config.CANONICAL_ADDRESS_LEN {
		return false
	}
	for _, c := range address {
		if !strings.ContainsRune(base58Alphabet, c) {
			return false
		}
	}
	return true
}

// ExtractFilteredAccounts collects the writable-account comparison set of a
// transaction: every account referenced as an instruction operand, excluding
// accounts only touched by small native transfers, read-only accounts,
// relayer tip addresses, and syntactically invalid addresses.
func (d *Detector) ExtractFilteredAccounts(tx *types.Transaction) MapSet.Set[string] {
	filtered := MapSet.NewSet[string]()
	msg := &tx.Data.Message

	for i := range msg.Instructions {
		inst := &msg.Instructions[i]
		if _, ok := msg.ProgramID(inst); !ok {
			continue // out-of-bounds program index, unparseable instruction
		}
		if d.isSmallTransfer(msg, inst) {
			continue
		}

		for _, accIndex := range inst.Accounts {
			account, ok := msg.AccountAt(int(accIndex))
			if !ok {
				continue
			}
			if !IsAccountWritable(int(accIndex), msg) {
				continue
			}
			if d.registry.IsTipRecipient(account) {
				continue
			}
			if !isValidAddress(account) {
				continue
			}
			filtered.Add(account)
		}
	}

	return filtered
}
