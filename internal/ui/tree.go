package ui

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/calldecode/internal/decoder"
)

// SourceLabel is the human name of a decode source.
func SourceLabel(s decoder.Source) string {
	switch s {
	case decoder.SourceRouter:
		return "router protocol"
	case decoder.SourceVerified:
		return "verified source"
	case decoder.SourceSignatureRegistry:
		return "signature registry (unverified names)"
	default:
		return string(s)
	}
}

// RenderResult renders every method of r as a param tree, one after another.
func RenderResult(r *decoder.Result) string {
	if r == nil {
		return Warn("No decoding available")
	}
	var sb strings.Builder
	sb.WriteString(Info("source: "+SourceLabel(r.Source)) + "\n")
	for i, m := range r.Data {
		if len(r.Data) > 1 {
			sb.WriteString(Meta(fmt.Sprintf("\n#%d ", i+1)))
		} else {
			sb.WriteString("\n")
		}
		sb.WriteString(RenderMethod(m))
	}
	return sb.String()
}

// RenderMethod renders one decoded method.
func RenderMethod(m decoder.DecodedMethod) string {
	var sb strings.Builder
	sb.WriteString(StyleChain.Render(m.Name) + "\n")
	if m.Description != "" {
		sb.WriteString("  " + Meta(m.Description) + "\n")
	}
	writeParams(&sb, m.Params, "  ")
	return sb.String()
}

func writeParams(sb *strings.Builder, params []decoder.DecodedParam, indent string) {
	for i, p := range params {
		last := i == len(params)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}

		line := indent + Meta(branch) + StyleParam.Render(ParamLabel(p, i)) + " " + Meta("("+p.Type+")")
		if len(p.Children) == 0 {
			line += ": " + Val(FormatValue(p.Value))
		}
		sb.WriteString(line + "\n")
		if p.Description != "" {
			sb.WriteString(indent + Meta(next) + Meta(p.Description) + "\n")
		}
		if len(p.Children) > 0 {
			writeParams(sb, p.Children, indent+Meta(next))
		}
	}
}

// ParamLabel is the param name, or "Param #N" (1-based) for unnamed params.
func ParamLabel(p decoder.DecodedParam, index int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Param #%d", index+1)
}

// FormatValue renders a leaf value for the terminal.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case common.Address:
		return val.Hex()
	case hexutil.Bytes:
		if len(val) == 0 {
			return "0x"
		}
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case *big.Int:
		return val.String()
	case []decoder.PoolHop:
		hops := make([]string, len(val))
		for i, h := range val {
			hops[i] = fmt.Sprintf("%s -(%d)-> %s", h.FirstAddress.Hex(), h.TickSpacing, h.SecondAddress.Hex())
		}
		return strings.Join(hops, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}
