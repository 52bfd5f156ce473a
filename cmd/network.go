package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/calldecode/internal/chain"
	"github.com/Mohsinsiddi/calldecode/internal/config"
	"github.com/Mohsinsiddi/calldecode/internal/rpc"
	"github.com/Mohsinsiddi/calldecode/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List and select networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported EVM chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3},
			{Title: "Name"},
			{Title: "Display"},
			{Title: "Chain ID"},
			{Title: "Testnet"},
			{Title: "Testnet ID"},
		})
		for i, c := range reg.All() {
			t.AddRow(ui.Row{
				strconv.Itoa(i + 1),
				c.Name,
				c.DisplayName,
				strconv.FormatUint(c.ChainID, 10),
				c.TestnetName,
				strconv.FormatUint(c.TestnetChainID, 10),
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d chains, default %s (%s)", len(reg.All()), cfg.DefaultNetwork, cfg.NetworkMode)))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default network",
	Long: `Set the default chain and persist it to config.

When combined with --testnet or --mainnet the network mode is also persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().Lookup(args[0])
		if err != nil {
			return fmt.Errorf("unknown chain %q, see: calldecode network list", args[0])
		}
		if err := cfg.Set(config.KeyDefaultNetwork, c.Name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.ChainName(c.DisplayName), cfg.NetworkMode)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}

// resolveChain finds the chain named by flag, falling back to the configured
// default network.
func resolveChain(flag string) (*chain.Chain, error) {
	name := flag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := chain.NewRegistry().Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q, see: calldecode network list", name)
	}
	return c, nil
}

// chainRPCs lists custom RPCs first, then the built-in ones for the active mode.
func chainRPCs(c *chain.Chain) []string {
	rpcs := append([]string{}, cfg.GetRPCs(c.Name)...)
	return append(rpcs, c.RPCs(cfg.NetworkMode)...)
}

// pickRPC returns override when set, otherwise the best endpoint for c.
func pickRPC(ctx context.Context, c *chain.Chain, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	rpcs := chainRPCs(c)
	if len(rpcs) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s (%s), add one with: calldecode rpc add %s <url>", c.Name, cfg.NetworkMode, c.Name)
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(ctx, rpcs, algo)
	if err != nil {
		return "", fmt.Errorf("selecting RPC for %s: %w", c.Name, err)
	}
	lggr.Debugw("Selected RPC", "chain", c.Name, "url", url, "algorithm", algo)
	return url, nil
}

// checkRPCChain fails when the node behind client serves a chain other than want.
func checkRPCChain(ctx context.Context, client *chain.EVMClient, want uint64) error {
	got, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("querying chain ID: %w", err)
	}
	if got != want {
		return fmt.Errorf("RPC serves chain %d, expected %d", got, want)
	}
	return nil
}
