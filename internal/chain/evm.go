package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/Mohsinsiddi/calldecode/internal/decoder"
)

// EVMClient is a minimal JSON-RPC client for EVM chains. It satisfies
// decoder.Provider.
type EVMClient struct {
	url    string
	client *http.Client
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Request sends one JSON-RPC call and returns a string result (hex quantity
// or data). Non-string results are returned as raw JSON.
func (c *EVMClient) Request(ctx context.Context, args decoder.RequestArgs) (string, error) {
	raw, err := c.call(ctx, args.Method, args.Params...)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return string(raw), nil
}

// GetCode returns the bytecode at an address. Empty "0x" means EOA (no code).
func (c *EVMClient) GetCode(ctx context.Context, address string) (string, error) {
	return c.Request(ctx, decoder.RequestArgs{
		Method: "eth_getCode",
		Params: []any{address, "latest"},
	})
}

// ChainID returns the chain ID reported by the node.
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	hexStr, err := c.Request(ctx, decoder.RequestArgs{Method: "eth_chainId"})
	if err != nil {
		return 0, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok || !n.IsUint64() {
		return 0, fmt.Errorf("could not parse chain id: %s", hexStr)
	}
	return n.Uint64(), nil
}

// Ping measures round-trip latency of eth_blockNumber and returns the head block.
func (c *EVMClient) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	hexStr, err := c.Request(ctx, decoder.RequestArgs{Method: "eth_blockNumber"})
	latency := time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok || !n.IsUint64() {
		return latency, 0, fmt.Errorf("could not parse block number: %s", hexStr)
	}
	return latency, n.Uint64(), nil
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *EVMClient) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func parseBigHex(s string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
}
