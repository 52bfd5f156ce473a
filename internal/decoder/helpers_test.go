package decoder

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

var (
	tokenAddress = common.HexToAddress("0x1f9840a85d5af5bf1d1762f925bdaddc4201f984")
	implAddress  = common.HexToAddress("0x43506849d7c04f9138d1a2050bbf3a0c054402dd")
	recipient    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	wethAddress  = common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	usdcAddress  = common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	daiAddress   = common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
)

const tokenABIJSON = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"submit","stateMutability":"nonpayable",
	 "inputs":[{"name":"orders","type":"tuple[]","components":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}]}],
	 "outputs":[]}
]`

var tokenABI = mustParseABI(tokenABIJSON)

func transferCalldata(t *testing.T, to common.Address, value int64) []byte {
	t.Helper()
	data, err := tokenABI.Pack("transfer", to, big.NewInt(value))
	require.NoError(t, err)
	return data
}

func metadataFile(t *testing.T, devdoc, userdoc map[string]any) SourceFile {
	t.Helper()
	return metadataFileWithABI(t, tokenABIJSON, devdoc, userdoc)
}

func metadataFileWithABI(t *testing.T, abiJSON string, devdoc, userdoc map[string]any) SourceFile {
	t.Helper()
	content, err := json.Marshal(map[string]any{
		"compiler": map[string]any{"version": "0.8.24+commit.e11b9ed9"},
		"output": map[string]any{
			"abi":     json.RawMessage(abiJSON),
			"devdoc":  devdoc,
			"userdoc": userdoc,
		},
	})
	require.NoError(t, err)
	return SourceFile{Name: "metadata.json", Path: "metadata.json", Content: string(content)}
}

func tokenDocs() (map[string]any, map[string]any) {
	devdoc := map[string]any{"methods": map[string]any{
		"transfer(address,uint256)": map[string]any{
			"details": "Moves value tokens from the caller to to",
			"params":  map[string]any{"to": "The recipient", "value": "The amount of tokens"},
		},
		"submit((address,uint256)[])": map[string]any{
			"params": map[string]any{"orders": "The orders to settle"},
		},
	}}
	userdoc := map[string]any{"methods": map[string]any{
		"transfer(address,uint256)": map[string]any{"notice": "Transfer tokens"},
	}}
	return devdoc, userdoc
}

// ---------------------------------------------------------------------------
// fake servers
// ---------------------------------------------------------------------------

// sourcifyServer serves files for one contract and 404s for everything else.
func sourcifyServer(t *testing.T, chainID uint64, address common.Address, files []SourceFile) (*httptest.Server, *atomic.Int32) {
	return slowSourcifyServer(t, 0, chainID, address, files)
}

// slowSourcifyServer is sourcifyServer with every answer held back by delay.
func slowSourcifyServer(t *testing.T, delay time.Duration, chainID uint64, address common.Address, files []SourceFile) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	prefix := fmt.Sprintf("/files/any/%d/", chainID)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		addr, ok := strings.CutPrefix(r.URL.Path, prefix)
		if !ok || !strings.EqualFold(addr, address.Hex()) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Files have not been found!"}`)) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "full", "files": files}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// registryServer answers signature lookups from a selector → signatures map.
func registryServer(t *testing.T, signatures map[string][]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/v1/signatures/" {
			http.NotFound(w, r)
			return
		}
		results := []map[string]any{}
		for i, sig := range signatures[r.URL.Query().Get("hex_signature")] {
			results = append(results, map[string]any{"id": i + 1, "text_signature": sig})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"count": len(results), "results": results}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// fake provider
// ---------------------------------------------------------------------------

type fakeProvider struct {
	slots  map[string]string
	errs   map[string]error
	delays map[string]time.Duration

	mu    sync.Mutex
	calls []RequestArgs
}

func (f *fakeProvider) Request(ctx context.Context, args RequestArgs) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()

	slot, _ := args.Params[1].(string)
	if d := f.delays[slot]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := f.errs[slot]; err != nil {
		return "", err
	}
	if v, ok := f.slots[slot]; ok {
		return v, nil
	}
	return "0x" + strings.Repeat("0", 64), nil
}

func (f *fakeProvider) recorded() []RequestArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RequestArgs(nil), f.calls...)
}

// slotValue encodes addr as a left-padded 32-byte storage word.
func slotValue(addr common.Address) string {
	return hexutil.Encode(common.LeftPadBytes(addr.Bytes(), 32))
}
