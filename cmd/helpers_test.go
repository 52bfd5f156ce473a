package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/calldecode/internal/config"
	"github.com/Mohsinsiddi/calldecode/internal/logger"
)

// useTestConfig points the package config and logger at throwaway values for t.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	prevCfg, prevLggr := cfg, lggr
	t.Cleanup(func() { cfg, lggr = prevCfg, prevLggr })

	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg = c
	lggr = logger.Test(t)
	return c
}

// testCommand returns a command whose output is captured in the returned buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetContext(context.Background())
	return c, &buf
}

// setFlag sets a package-level flag variable for the duration of t.
func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	prev := *p
	*p = v
	t.Cleanup(func() { *p = prev })
}

// rpcServerChainID is the eth_chainId answer of rpcServer, Base mainnet.
const rpcServerChainID = "0x2105"

// rpcServer answers eth_chainId, eth_getCode and eth_getStorageAt; storage is keyed by slot.
func rpcServer(t *testing.T, code string, storage map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var result string
		switch req.Method {
		case "eth_chainId":
			result = rpcServerChainID
		case "eth_getCode":
			result = code
		case "eth_getStorageAt":
			slot, _ := req.Params[1].(string)
			result = storage[slot]
			if result == "" {
				result = "0x0000000000000000000000000000000000000000000000000000000000000000"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}
