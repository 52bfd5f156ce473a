package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Mohsinsiddi/calldecode/internal/config"
	"github.com/Mohsinsiddi/calldecode/internal/logger"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/calldecode/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	lggr    logger.Logger = logger.Nop()
	verbose bool
	testnet bool
	mainnet bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "calldecode",
	Short: "Explain EVM transaction calldata before you sign it",
	Long: `calldecode turns raw transaction calldata into a named method call with
labeled, described parameters.

  Router batch calls are split into their individual commands. Other calls
  are decoded against the verified source of the target contract (following
  proxies), falling back to the public signature registry.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Persist with: calldecode config set network_mode <mode>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		l, err := logger.NewCLI(level)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		lggr = l

		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		lggr.Debugw("Loaded config", "dir", cfg.Dir(), "network", cfg.DefaultNetwork, "mode", cfg.NetworkMode)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = lggr.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	if envDir := os.Getenv(config.EnvConfigDir); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.calldecode)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every decode strategy to stderr")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		decodeCmd,
		selectorCmd,
		proxyCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
