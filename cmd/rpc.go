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

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage the RPC endpoints used for proxy resolution",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL for a chain (tried before the built-in ones)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", c.Name, args[1])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [chain]",
	Short: "Probe every RPC of a chain and show which one would be used",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		c, err := resolveChain(name)
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Probing %s RPCs...", c.DisplayName))
		spin.Start()
		endpoints := rpc.Probe(ctx, chainRPCs(c), func(u string) rpc.Pinger { return chain.NewEVMClient(u) })
		spin.Stop()

		winner, _ := rpc.Pick(endpoints, algo)
		custom := len(cfg.GetRPCs(c.Name))

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL"},
			{Title: "Origin", Width: 8},
			{Title: "Latency", Width: 9},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 8},
		})
		for i, e := range endpoints {
			origin := "built-in"
			if i < custom {
				origin = "custom"
			}
			latency, block, status := fmt.Sprintf("%dms", e.Latency.Milliseconds()), strconv.FormatUint(e.BlockNumber, 10), "healthy"
			if !e.Healthy() {
				latency, block, status = "-", "-", "down"
			}
			if winner != nil && winner.URL == e.URL {
				status = "selected"
			}
			t.AddRow(ui.Row{e.URL, origin, latency, block, status})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("%s RPCs (%s, %s)", c.DisplayName, cfg.NetworkMode, algo)))
		fmt.Fprintln(out, t.Render())
		if winner == nil {
			fmt.Fprintln(out, ui.Err(rpc.ErrNoHealthyRPC.Error()))
		}
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd)
}
