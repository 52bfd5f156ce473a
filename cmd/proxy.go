package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/calldecode/internal/chain"
	"github.com/Mohsinsiddi/calldecode/internal/config"
	"github.com/Mohsinsiddi/calldecode/internal/decoder"
	"github.com/Mohsinsiddi/calldecode/internal/ui"
)

var (
	proxyNetwork string
	proxyRPC     string
	proxyJSON    bool
)

var slotNames = map[string]string{
	decoder.LegacyImplementationSlot:  "legacy (org.zeppelinos.proxy.implementation)",
	decoder.EIP1967ImplementationSlot: "EIP-1967 (eip1967.proxy.implementation)",
}

// proxyReport is the --json shape of the proxy command.
type proxyReport struct {
	Proxy          string `json:"proxy"`
	Chain          string `json:"chain"`
	ChainID        uint64 `json:"chainId"`
	Implementation string `json:"implementation,omitempty"`
	Slot           string `json:"slot,omitempty"`
	HasCode        bool   `json:"hasCode"`
}

var proxyCmd = &cobra.Command{
	Use:   "proxy <address>",
	Short: "Find the implementation behind an upgradeable proxy",
	Long: `Read both well-known implementation slots of a contract and report the
implementation address the decoder would use for it.

Slots, in precedence order:
  0x7050c9e0f4ca769c69bd3a8ef740bc37934f8e2c036e5a723fd8ee048ed3f8c3
         legacy org.zeppelinos.proxy.implementation
  0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc
         EIP-1967 implementation slot

Examples:
  calldecode proxy 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  calldecode proxy --network base 0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := args[0]
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}

		c, err := resolveChain(proxyNetwork)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ProxyResolveTimeout+config.RPCSelectTimeout)
		defer cancel()

		client, err := proxyClient(ctx, c)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Reading implementation slots on %s...", c.DisplayName))
		if !proxyJSON {
			spin.Start()
		}
		report, err := inspectProxy(ctx, client, address)
		if !proxyJSON {
			spin.Stop()
		}
		if err != nil {
			return err
		}
		report.Chain = c.Name
		report.ChainID = c.ID(cfg.NetworkMode)

		return printProxyReport(cmd, report)
	},
}

// proxyClient connects to --rpc after checking it serves c, or to the best
// endpoint of c.
func proxyClient(ctx context.Context, c *chain.Chain) (*chain.EVMClient, error) {
	rpcURL, err := pickRPC(ctx, c, proxyRPC)
	if err != nil {
		return nil, err
	}
	client := chain.NewEVMClient(rpcURL)
	if proxyRPC != "" {
		if err := checkRPCChain(ctx, client, c.ID(cfg.NetworkMode)); err != nil {
			return nil, fmt.Errorf("--rpc %s: %w", proxyRPC, err)
		}
	}
	return client, nil
}

func inspectProxy(ctx context.Context, client *chain.EVMClient, address string) (proxyReport, error) {
	report := proxyReport{Proxy: common.HexToAddress(address).Hex()}

	code, err := client.GetCode(ctx, address)
	if err != nil {
		return report, fmt.Errorf("reading code: %w", err)
	}
	report.HasCode = code != "" && code != "0x"

	impl, slot, err := decoder.ResolveProxySlot(ctx, address, client)
	if err != nil {
		return report, fmt.Errorf("reading implementation slots: %w", err)
	}
	report.Implementation = impl
	report.Slot = slot
	return report, nil
}

func printProxyReport(cmd *cobra.Command, r proxyReport) error {
	out := cmd.OutOrStdout()
	if proxyJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	pairs := [][2]string{
		{"Contract", ui.Addr(r.Proxy)},
		{"Network", fmt.Sprintf("%s (%d)", r.Chain, r.ChainID)},
	}
	switch {
	case !r.HasCode:
		pairs = append(pairs, [2]string{"Note", ui.Warn("no contract code at this address")})
	case r.Implementation == "":
		pairs = append(pairs, [2]string{"Implementation", ui.Meta("none, not a recognized proxy")})
	default:
		pairs = append(pairs,
			[2]string{"Implementation", ui.Addr(r.Implementation)},
			[2]string{"Slot", slotNames[r.Slot]},
		)
	}
	fmt.Fprintln(out, ui.KeyValueBlock("Proxy Resolution", pairs))
	if r.Implementation != "" {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s delegates to %s", ui.TruncateAddr(r.Proxy), ui.TruncateAddr(r.Implementation))))
	}
	return nil
}

func init() {
	proxyCmd.Flags().StringVar(&proxyNetwork, "network", "", "chain name or ID (default: config)")
	proxyCmd.Flags().StringVar(&proxyRPC, "rpc", "", "RPC URL (default: best of the chain's list)")
	proxyCmd.Flags().BoolVar(&proxyJSON, "json", false, "print the report as JSON")
}
