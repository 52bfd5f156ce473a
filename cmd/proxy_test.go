package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/calldecode/internal/chain"
	"github.com/Mohsinsiddi/calldecode/internal/decoder"
	"github.com/Mohsinsiddi/calldecode/internal/ui"
)

const usdcProxy = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

var usdcImpl = common.HexToAddress("0x43506849d7c04f9138d1a2050bbf3a0c054402dd").Hex()

func TestInspectProxy_EIP1967(t *testing.T) {
	srv := rpcServer(t, "0x6080604052", map[string]string{
		decoder.EIP1967ImplementationSlot: "0x00000000000000000000000043506849d7c04f9138d1a2050bbf3a0c054402dd",
	})

	report, err := inspectProxy(context.Background(), chain.NewEVMClient(srv.URL), usdcProxy)
	require.NoError(t, err)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", report.Proxy)
	assert.True(t, report.HasCode)
	assert.Equal(t, usdcImpl, report.Implementation)
	assert.Equal(t, decoder.EIP1967ImplementationSlot, report.Slot)
}

func TestInspectProxy_NotAProxy(t *testing.T) {
	srv := rpcServer(t, "0x6080604052", nil)

	report, err := inspectProxy(context.Background(), chain.NewEVMClient(srv.URL), usdcProxy)
	require.NoError(t, err)
	assert.True(t, report.HasCode)
	assert.Empty(t, report.Implementation)
	assert.Empty(t, report.Slot)
}

func TestInspectProxy_NoCode(t *testing.T) {
	srv := rpcServer(t, "0x", nil)

	report, err := inspectProxy(context.Background(), chain.NewEVMClient(srv.URL), usdcProxy)
	require.NoError(t, err)
	assert.False(t, report.HasCode)
}

func TestInspectProxy_RPCDown(t *testing.T) {
	_, err := inspectProxy(context.Background(), chain.NewEVMClient("http://127.0.0.1:1"), usdcProxy)
	assert.Error(t, err)
}

func TestProxyClient_ChecksExplicitRPC(t *testing.T) {
	useTestConfig(t)
	srv := rpcServer(t, "0x", nil)
	setFlag(t, &proxyRPC, srv.URL)

	base, err := resolveChain("base")
	require.NoError(t, err)
	client, err := proxyClient(context.Background(), base)
	require.NoError(t, err)
	assert.NotNil(t, client)

	optimism, err := resolveChain("optimism")
	require.NoError(t, err)
	_, err = proxyClient(context.Background(), optimism)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 10")
}

func TestPrintProxyReport(t *testing.T) {
	report := proxyReport{
		Proxy:          "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Chain:          "ethereum",
		ChainID:        1,
		Implementation: usdcImpl,
		Slot:           decoder.EIP1967ImplementationSlot,
		HasCode:        true,
	}

	t.Run("table", func(t *testing.T) {
		setFlag(t, &proxyJSON, false)
		c, out := testCommand()
		require.NoError(t, printProxyReport(c, report))
		assert.Contains(t, out.String(), usdcImpl)
		assert.Contains(t, out.String(), "EIP-1967")
		assert.Contains(t, out.String(), ui.TruncateAddr(report.Proxy)+" delegates to "+ui.TruncateAddr(usdcImpl))
	})

	t.Run("json", func(t *testing.T) {
		setFlag(t, &proxyJSON, true)
		c, out := testCommand()
		require.NoError(t, printProxyReport(c, report))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, usdcImpl, got["implementation"])
		assert.Equal(t, float64(1), got["chainId"])
		assert.Equal(t, true, got["hasCode"])
	})

	t.Run("not a proxy", func(t *testing.T) {
		setFlag(t, &proxyJSON, false)
		c, out := testCommand()
		require.NoError(t, printProxyReport(c, proxyReport{Proxy: report.Proxy, Chain: "ethereum", ChainID: 1, HasCode: true}))
		assert.Contains(t, out.String(), "not a recognized proxy")
		assert.NotContains(t, out.String(), "delegates to")
	})
}
