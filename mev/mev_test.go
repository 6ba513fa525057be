package mev

import (
	"mevscan/testutil"
	"mevscan/types"
)

// Fixtures for the detector tests, delegating to the shared builders so the
// detector and analyzer suites exercise identical transaction shapes.

var systemProgram = testutil.SystemProgram

func encodeTransfer(lamports uint64) string {
	return testutil.EncodeTransfer(lamports)
}

func swapTx(signature, signer string, operands ...string) *types.Transaction {
	return testutil.SwapTx(signature, signer, operands...)
}

func transferTx(signature, payer, dest string, lamports uint64) *types.Transaction {
	return testutil.TransferTx(signature, payer, dest, lamports)
}
