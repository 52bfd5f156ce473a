package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/calldecode/internal/chain"
	"github.com/Mohsinsiddi/calldecode/internal/config"
	"github.com/Mohsinsiddi/calldecode/internal/decoder"
	"github.com/Mohsinsiddi/calldecode/internal/ui"
)

var (
	decodeTo      string
	decodeNetwork string
	decodeChainID string
	decodeRPC     string
	decodeJSON    bool
	decodeOffline bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode <calldata>",
	Short: "Decode EVM calldata into a named method with labeled parameters",
	Long: `Decode raw calldata (hex) into a method name and a tree of parameters.

Router batch calls are split into one entry per command without any network
access. Otherwise the target contract (--to) is checked for a proxy, its
verified source is fetched for names and NatSpec descriptions, and the public
signature registry is used as a fallback. Registry results carry types but no
parameter names.

Examples:
  calldecode decode 0xa9059cbb000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa960450000000000000000000000000000000000000000000000000de0b6b3a7640000
  calldecode decode --to 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 --network ethereum 0xa9059cbb...
  calldecode decode --offline --json 0x3593564c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		calldata := strings.TrimSpace(args[0])
		if len(strings.TrimPrefix(calldata, "0x")) < 8 {
			return fmt.Errorf("%w: provide at least a 0x-prefixed 4-byte selector", decoder.ErrInvalidCalldata)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.DecodeTimeout)
		defer cancel()

		req, err := buildDecodeRequest(ctx, calldata)
		if err != nil {
			return err
		}

		var result *decoder.Result
		if decodeOffline {
			result = decoder.DecodeOffline(req)
		} else {
			d := newDecoder()
			var spin *ui.Spinner
			if !decodeJSON {
				spin = ui.NewSpinner("Decoding calldata...")
				spin.Start()
			}
			result = d.Decode(ctx, req)
			if spin != nil {
				spin.Stop()
			}
		}

		return printResult(cmd, result)
	},
}

// buildDecodeRequest fills chain ID and provider from flags and config.
func buildDecodeRequest(ctx context.Context, calldata string) (decoder.Request, error) {
	req := decoder.Request{
		TransactionData: calldata,
		ContractAddress: decodeTo,
		ChainID:         decodeChainID,
	}
	if decodeOffline {
		return req, nil
	}

	var c *chain.Chain
	if decodeChainID == "" || decodeNetwork != "" {
		var err error
		c, err = resolveChain(decodeNetwork)
		if err != nil {
			return req, err
		}
	} else if known, err := chain.NewRegistry().Lookup(decodeChainID); err == nil {
		c = known
	}
	if req.ChainID == "" {
		req.ChainID = c.HexID(cfg.NetworkMode)
	}

	if decodeTo == "" {
		return req, nil
	}
	rpcURL := decodeRPC
	if rpcURL == "" && c != nil {
		url, err := pickRPC(ctx, c, "")
		if err != nil {
			lggr.Warnw("No RPC available, skipping proxy resolution", "err", err)
			return req, nil
		}
		rpcURL = url
	}
	if rpcURL == "" {
		return req, nil
	}
	client := chain.NewEVMClient(rpcURL)
	if decodeRPC != "" {
		want, err := strconv.ParseUint(req.ChainID, 0, 64)
		if err != nil {
			return req, fmt.Errorf("invalid chain ID %q: %w", req.ChainID, err)
		}
		if err := checkRPCChain(ctx, client, want); err != nil {
			return req, fmt.Errorf("--rpc %s: %w", rpcURL, err)
		}
	}
	req.Provider = client
	return req, nil
}

func newDecoder() *decoder.Decoder {
	return decoder.New(
		decoder.WithSourcifyURL(cfg.SourcifyURL),
		decoder.WithSignatureRegistryURL(cfg.SignatureRegistryURL),
		decoder.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		decoder.WithLogger(lggr),
	)
}

func printResult(cmd *cobra.Command, result *decoder.Result) error {
	out := cmd.OutOrStdout()
	if decodeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, ui.RenderResult(result))
	switch {
	case result == nil && decodeOffline:
		fmt.Fprintln(out, ui.Hint("not a router batch call; drop --offline to query verified sources and the signature registry"))
	case result == nil && decodeTo == "":
		fmt.Fprintln(out, ui.Hint("pass --to <contract> to decode against its verified source"))
	case result != nil && result.Source == decoder.SourceSignatureRegistry:
		fmt.Fprintln(out, ui.Warn("names come from a public registry and may not match the contract"))
	}
	return nil
}

func init() {
	decodeCmd.Flags().StringVar(&decodeTo, "to", "", "target contract address")
	decodeCmd.Flags().StringVar(&decodeNetwork, "network", "", "chain name or ID (default: config)")
	decodeCmd.Flags().StringVar(&decodeChainID, "chain-id", "", "chain ID, decimal or 0x-hex (overrides the network's ID)")
	decodeCmd.Flags().StringVar(&decodeRPC, "rpc", "", "RPC URL used for proxy resolution")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "print the result as JSON")
	decodeCmd.Flags().BoolVar(&decodeOffline, "offline", false, "only decode router batch calls, no network access")
}
