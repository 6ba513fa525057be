package sol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mevscan/config"
	"mevscan/logger"
	"mevscan/types"
)

var (
	// ErrTxNotFound means the node does not know the signature: never landed,
	// pruned, or not yet finalized.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrBalanceUnavailable means the transaction exists but the node no
	// longer serves its balance metadata. Callers fall back to
	// instruction-based estimation.
	ErrBalanceUnavailable = errors.New("balance data unavailable")
)

// Client is the ledger access the analyzer needs. Implementations must be
// safe for concurrent use.
type Client interface {
	// GetTransaction fetches one finalized transaction by signature.
	GetTransaction(ctx context.Context, signature string) (*types.Transaction, error)

	// GetNearbyTransactions returns the analysis window around the target:
	// the target plus up to four transactions on each side from its block, in
	// block order, and the target's index within the window.
	GetNearbyTransactions(ctx context.Context, signature string) (types.Transactions, int, error)

	// GetTransactionWithBalanceChanges fetches a transaction together with
	// its pre/post balance metadata.
	GetTransactionWithBalanceChanges(ctx context.Context, signature string) (*types.TransactionWithMeta, error)
}

// RpcClient talks to a standard JSON-RPC node. The URL is resolved once at
// construction; there is no mutable override.
type RpcClient struct {
	url string
}

func NewClient() *RpcClient {
	return &RpcClient{url: rpcURLFromConfig()}
}

var txEncodingOpts = map[string]interface{}{
	"encoding":                       "json",
	"commitment":                     "finalized",
	"maxSupportedTransactionVersion": 0,
}

// rpcTransactionResult is the getTransaction wire shape with encoding "json".
type rpcTransactionResult struct {
	Slot        uint64                 `json:"slot"`
	BlockTime   *int64                 `json:"blockTime"`
	Transaction types.TransactionData  `json:"transaction"`
	Meta        *types.TransactionMeta `json:"meta"`
}

// rpcBlockResult is the getBlock wire shape with full transaction details.
type rpcBlockResult struct {
	BlockTime    *int64 `json:"blockTime"`
	Transactions []struct {
		Transaction types.TransactionData  `json:"transaction"`
		Meta        *types.TransactionMeta `json:"meta"`
	} `json:"transactions"`
}

func (r *rpcTransactionResult) toTransaction(signature string) *types.Transaction {
	if signature == "" && len(r.Transaction.Signatures) > 0 {
		signature = r.Transaction.Signatures[0]
	}
	return &types.Transaction{
		Signature: signature,
		Slot:      r.Slot,
		BlockTime: r.BlockTime,
		Data:      r.Transaction,
	}
}

func (c *RpcClient) getTransactionResult(ctx context.Context, signature string) (*rpcTransactionResult, error) {
	raw, err := CallRpc(ctx, c.url, "getTransaction", []interface{}{signature, txEncodingOpts})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, signature)
	}

	var result rpcTransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction %s: %w", signature, err)
	}
	return &result, nil
}

func (c *RpcClient) GetTransaction(ctx context.Context, signature string) (*types.Transaction, error) {
	result, err := c.getTransactionResult(ctx, signature)
	if err != nil {
		return nil, err
	}
	return result.toTransaction(signature), nil
}

func (c *RpcClient) GetTransactionWithBalanceChanges(ctx context.Context, signature string) (*types.TransactionWithMeta, error) {
	result, err := c.getTransactionResult(ctx, signature)
	if err != nil {
		return nil, err
	}
	if result.Meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrBalanceUnavailable, signature)
	}
	return &types.TransactionWithMeta{
		Transaction: *result.toTransaction(signature),
		Meta:        result.Meta,
	}, nil
}

// GetFullBlock fetches every transaction of a block in block order.
func (c *RpcClient) GetFullBlock(ctx context.Context, slot uint64) (types.Transactions, error) {
	raw, err := CallRpc(ctx, c.url, "getBlock", []interface{}{slot, map[string]interface{}{
		"encoding":                       "json",
		"commitment":                     "finalized",
		"transactionDetails":             "full",
		"rewards":                        false,
		"maxSupportedTransactionVersion": 0,
	}})
	if err != nil {
		return nil, err
	}
	if isNullResult(raw) {
		return nil, fmt.Errorf("block %d not available", slot)
	}

	var block rpcBlockResult
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal block %d: %w", slot, err)
	}

	txs := make(types.Transactions, 0, len(block.Transactions))
	for _, entry := range block.Transactions {
		var signature string
		if len(entry.Transaction.Signatures) > 0 {
			signature = entry.Transaction.Signatures[0]
		}
		txs = append(txs, &types.Transaction{
			Signature: signature,
			Slot:      slot,
			BlockTime: block.BlockTime,
			Data:      entry.Transaction,
		})
	}
	return txs, nil
}

func (c *RpcClient) GetNearbyTransactions(ctx context.Context, signature string) (types.Transactions, int, error) {
	tx, err := c.GetTransaction(ctx, signature)
	if err != nil {
		return nil, -1, err
	}

	blockTxs, err := c.GetFullBlock(ctx, tx.Slot)
	if err != nil {
		return nil, -1, err
	}

	blockIndex := -1
	for i, blockTx := range blockTxs {
		if blockTx.Signature == signature {
			blockIndex = i
			break
		}
	}
	if blockIndex < 0 {
		// Finalized tx missing from its own finalized block; node inconsistency.
		return nil, -1, fmt.Errorf("%w: %s absent from block %d", ErrTxNotFound, signature, tx.Slot)
	}

	start := blockIndex - config.NEARBY_WINDOW_RADIUS
	if start < 0 {
		start = 0
	}
	end := blockIndex + config.NEARBY_WINDOW_RADIUS + 1
	if end > len(blockTxs) {
		end = len(blockTxs)
	}

	window := blockTxs[start:end]
	targetIndex := blockIndex - start
	logger.RpcLogger.Debug("Built analysis window",
		"tx", signature, "slot", tx.Slot, "window_size", len(window), "target_index", targetIndex)
	return window, targetIndex, nil
}
