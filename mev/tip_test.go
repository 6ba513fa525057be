package mev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mevscan/config"
	"mevscan/types"
)

func tipTx(signature string, lamports uint64) *types.Transaction {
	return transferTx(signature, "tipper1", defaultTipRecipients[0], lamports)
}

func TestCheckTipInNearbyTransactionsBefore(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	window := types.Transactions{
		swapTx("tx0", "signer1", "pond1"),
		tipTx("tipSig", 10_000),
		swapTx("tx2", "signer2", "pond2"),
		swapTx("tx3", "signer3", "pond3"), // target
		swapTx("tx4", "signer4", "pond4"),
		swapTx("tx5", "signer5", "pond5"),
		swapTx("tx6", "signer6", "pond6"),
	}

	bundle := d.CheckTipInNearbyTransactions(window, 3)
	require.NotNil(t, bundle)
	assert.Equal(t, 1, bundle.TipIndex)
	assert.Equal(t, defaultTipRecipients[0], bundle.TipRecipient)
	assert.Equal(t, uint64(10_000), bundle.TipLamports)
	assert.True(t, bundle.TipBeforeTx)

	// Bundle runs from the tip forward, at most five transactions.
	require.Len(t, bundle.Transactions, config.BUNDLE_MAX_TXS)
	assert.Equal(t, "tipSig", bundle.Transactions[0].Signature)
	assert.Equal(t, "tx5", bundle.Transactions[len(bundle.Transactions)-1].Signature)
}

func TestCheckTipInNearbyTransactionsAfter(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	window := types.Transactions{
		swapTx("tx0", "signer1", "pond1"), // target
		swapTx("tx1", "signer2", "pond2"),
		tipTx("tipSig", 25_000),
	}

	bundle := d.CheckTipInNearbyTransactions(window, 0)
	require.NotNil(t, bundle)
	assert.Equal(t, 2, bundle.TipIndex)
	assert.False(t, bundle.TipBeforeTx)

	// Bundle runs backward from the tip, clipped at the window start.
	require.Len(t, bundle.Transactions, 3)
	assert.Equal(t, "tx0", bundle.Transactions[0].Signature)
	assert.Equal(t, "tipSig", bundle.Transactions[2].Signature)
}

func TestCheckTipInNearbyTransactionsPrefersBackwardScan(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	window := types.Transactions{
		tipTx("tipBefore", 1_000),
		swapTx("target", "signer1", "pond1"),
		tipTx("tipAfter", 2_000),
	}

	bundle := d.CheckTipInNearbyTransactions(window, 1)
	require.NotNil(t, bundle)
	assert.Equal(t, 0, bundle.TipIndex)
	assert.True(t, bundle.TipBeforeTx)
	assert.Equal(t, uint64(1_000), bundle.TipLamports)
}

func TestCheckTipInNearbyTransactionsNoTip(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	window := types.Transactions{
		swapTx("tx0", "signer1", "pond1"),
		// An ordinary transfer to a non-tip address must not anchor a bundle.
		transferTx("tx1", "payer1", "dest1", 10_000),
		swapTx("tx2", "signer2", "pond2"),
	}

	assert.Nil(t, d.CheckTipInNearbyTransactions(window, 1))
}

func TestCheckTipInNearbyTransactionsOutOfRange(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())
	window := types.Transactions{tipTx("tipSig", 1)}

	assert.Nil(t, d.CheckTipInNearbyTransactions(window, -1))
	assert.Nil(t, d.CheckTipInNearbyTransactions(window, 1))
}
