package sol

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"

	"mevscan/config"
	"mevscan/logger"
	"mevscan/utils"
)

func rpcURLFromConfig() string {
	rpc := viper.GetString("sol.rpc")
	if rpc != "" {
		return rpc
	}
	return viper.GetString("sol.rpc-helius")
}

type SolanaRpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type SolanaRpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CallRpc performs one JSON-RPC call against the given node, retrying
// transport failures. A JSON "null" result is returned as-is; callers decide
// whether absence is an error.
func CallRpc(ctx context.Context, url, method string, params []interface{}) (json.RawMessage, error) {
	req := SolanaRpcRequest{
		Jsonrpc: "2.0",
		ID:      "1",
		Method:  method,
		Params:  params,
	}

	var resp SolanaRpcResponse
	err := utils.PostUrlResponseWithRetry(ctx, url, req, &resp, config.DefaultRetryTimes, logger.RpcLogger)
	if err != nil {
		return nil, fmt.Errorf("RPC %s failed: %w", method, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("RPC %s returned error: %d %s", method, resp.Error.Code, resp.Error.Message)
	}

	return resp.Result, nil
}

func isNullResult(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
