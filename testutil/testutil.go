// Package testutil builds transaction fixtures shared by the detector and
// analyzer tests.
package testutil

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"mevscan/types"
)

// RaydiumAmmProgram is a known DEX program, used so fixtures pass the swap
// classifier by allowlist rather than by heuristic.
const RaydiumAmmProgram = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

var SystemProgram = solana.SystemProgramID.String()

// EncodeTransfer builds a base-58 system transfer payload: discriminator
// [2,0,0,0] followed by the little-endian amount.
func EncodeTransfer(lamports uint64) string {
	payload := make([]byte, 12)
	payload[0] = 2
	binary.LittleEndian.PutUint64(payload[4:], lamports)
	return base58.Encode(payload)
}

// SwapTx builds a swap transaction invoking a known DEX program. The signer
// and operand accounts are writable; the program itself is readonly.
func SwapTx(signature, signer string, operands ...string) *types.Transaction {
	accountKeys := append([]string{signer}, operands...)
	accountKeys = append(accountKeys, RaydiumAmmProgram)

	instAccounts := make([]uint8, 0, len(operands)+1)
	for i := 0; i <= len(operands); i++ {
		instAccounts = append(instAccounts, uint8(i))
	}

	return &types.Transaction{
		Signature: signature,
		Data: types.TransactionData{
			Signatures: []string{signature},
			Message: types.Message{
				AccountKeys: accountKeys,
				Header: &types.MessageHeader{
					NumRequiredSignatures:       1,
					NumReadonlySignedAccounts:   0,
					NumReadonlyUnsignedAccounts: 1, // the program
				},
				Instructions: []types.Instruction{
					{ProgramIDIndex: uint8(len(accountKeys) - 1), Accounts: instAccounts},
				},
			},
		},
	}
}

// TransferTx builds a plain system transfer of the given amount.
func TransferTx(signature, payer, dest string, lamports uint64) *types.Transaction {
	return &types.Transaction{
		Signature: signature,
		Data: types.TransactionData{
			Signatures: []string{signature},
			Message: types.Message{
				AccountKeys: []string{payer, dest, SystemProgram},
				Header: &types.MessageHeader{
					NumRequiredSignatures:       1,
					NumReadonlySignedAccounts:   0,
					NumReadonlyUnsignedAccounts: 1,
				},
				Instructions: []types.Instruction{
					{ProgramIDIndex: 2, Accounts: []uint8{0, 1}, Data: EncodeTransfer(lamports)},
				},
			},
		},
	}
}
