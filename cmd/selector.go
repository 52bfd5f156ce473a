package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/calldecode/internal/decoder"
	"github.com/Mohsinsiddi/calldecode/internal/ui"
)

var (
	selectorData string
	selectorPick bool
)

var selectorCmd = &cobra.Command{
	Use:   "selector <signature-or-selector>",
	Short: "Compute a 4-byte selector or look one up in the signature registry",
	Long: `Compute a 4-byte function selector from a signature, or list every
signature the public registry knows for a selector.

Parameter names and data locations are dropped before hashing, and tuple
parameters are accepted in either (a,b) or named form.

With --data the calldata is decoded against the signature. For a selector,
the registry's first candidate is used unless --pick is given, which opens
an interactive list of all candidates.

Examples:
  calldecode selector "transfer(address to, uint256 amount)"    # → 0xa9059cbb
  calldecode selector "fill((address maker, uint256 amount)[] orders)"
  calldecode selector 0xa9059cbb
  calldecode selector 0xa9059cbb --pick --data 0xa9059cbb...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.TrimSpace(args[0])
		if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
			return lookupSelector(cmd, strings.ToLower(input))
		}
		return computeSelector(cmd, input)
	},
}

func computeSelector(cmd *cobra.Command, input string) error {
	sig, err := canonicalSignature(input)
	if err != nil {
		return err
	}
	hash := keccak([]byte(sig))
	selector := "0x" + hex.EncodeToString(hash[:4])

	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Function Selector", [][2]string{
		{"Signature", sig},
		{"Selector", ui.Val(selector)},
		{"Full Hash", "0x" + hex.EncodeToString(hash)},
	}))

	if selectorData == "" {
		return nil
	}
	data, err := hexutil.Decode(selectorData)
	if err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}
	if len(data) >= 4 && hexutil.Encode(data[:4]) != selector {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Warn(fmt.Sprintf("calldata selector %s does not match %s", hexutil.Encode(data[:4]), selector)))
	}
	return decodeWith(cmd, data, sig)
}

func lookupSelector(cmd *cobra.Command, selector string) error {
	if len(selector) != 10 {
		return fmt.Errorf("selector must be 4 bytes (0x + 8 hex chars), got %q", selector)
	}
	if _, err := hexutil.Decode(selector); err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	registry := decoder.NewSignatureRegistry(cfg.SignatureRegistryURL, &http.Client{Timeout: cfg.HTTPTimeout()})
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
	defer cancel()

	spin := ui.NewSpinner("Querying signature registry...")
	spin.Start()
	candidates, err := registry.Lookup(ctx, selector)
	spin.Stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintln(out, ui.Warn("No signatures registered for "+selector))
		return nil
	}

	t := ui.NewTable([]ui.Column{{Title: "#", Width: 3}, {Title: "Signature"}, {Title: "Parameter types"}})
	for i, sig := range candidates {
		types := "unparseable"
		if _, specs, err := decoder.ParseSignature(sig); err == nil {
			types = paramTypeList(specs)
		}
		t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), sig, types})
	}
	fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("Signatures for %s", selector)))
	fmt.Fprintln(out, t.Render())

	if selectorData == "" {
		return nil
	}
	data, err := hexutil.Decode(selectorData)
	if err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	sig := candidates[0]
	if selectorPick {
		sig, err = ui.PickSignature(selector, candidates)
		if err != nil {
			return err
		}
		if sig == "" {
			fmt.Fprintln(out, ui.Meta("cancelled"))
			return nil
		}
	}
	return decodeWith(cmd, data, sig)
}

func decodeWith(cmd *cobra.Command, data []byte, sig string) error {
	m, err := decoder.DecodeWithSignature(data, sig)
	if err != nil {
		return fmt.Errorf("decoding with %s: %w", sig, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMethod(decoder.Normalize(*m)))
	return nil
}

// canonicalSignature strips parameter names and data locations and returns
// the form that is hashed into a selector.
// "transfer(address to, uint256 amount)" → "transfer(address,uint256)"
func canonicalSignature(sig string) (string, error) {
	var sb strings.Builder
	var token strings.Builder
	flush := func() {
		if fields := strings.Fields(token.String()); len(fields) > 0 {
			sb.WriteString(fields[0])
		}
		token.Reset()
	}
	for _, r := range sig {
		switch r {
		case '(', ')', ',':
			flush()
			sb.WriteRune(r)
		default:
			token.WriteRune(r)
		}
	}
	flush()

	name, specs, err := decoder.ParseSignature(sb.String())
	if err != nil {
		return "", err
	}
	for i := range specs {
		specs[i] = expandAliases(specs[i])
	}
	return name + "(" + paramTypeList(specs) + ")", nil
}

var typeAliases = map[string]string{
	"uint": "uint256",
	"int":  "int256",
	"byte": "bytes1",
}

// expandAliases rewrites shorthand types to the names used in selector hashing.
func expandAliases(spec decoder.ParamSpec) decoder.ParamSpec {
	if spec.IsTuple() {
		for i := range spec.Components {
			spec.Components[i] = expandAliases(spec.Components[i])
		}
		return spec
	}
	base, suffix := spec.Type, ""
	if i := strings.Index(base, "["); i >= 0 {
		base, suffix = base[:i], base[i:]
	}
	if full, ok := typeAliases[base]; ok {
		spec.Type = full + suffix
	}
	return spec
}

func paramTypeList(specs []decoder.ParamSpec) string {
	types := make([]string, len(specs))
	for i, s := range specs {
		types[i] = s.String()
	}
	return strings.Join(types, ",")
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func init() {
	selectorCmd.Flags().StringVar(&selectorData, "data", "", "calldata to decode against the signature")
	selectorCmd.Flags().BoolVar(&selectorPick, "pick", false, "choose among registry candidates interactively")
}
