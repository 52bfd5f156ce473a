package decoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrUnbalancedSignature is returned when a signature's parentheses do not pair up.
var ErrUnbalancedSignature = errors.New("unbalanced parentheses in signature")

// placeholderPrefix marks a flattened tuple group inside a working signature.
// It cannot appear in a Solidity type name.
const placeholderPrefix = "#"

// ParamSpec is one parameter type recovered from a flat signature string.
// Tuple types ("tuple", "tuple[]", "tuple[3]") carry their components.
type ParamSpec struct {
	Type       string
	Components []ParamSpec
}

// IsTuple reports whether the spec describes a tuple or an array of tuples.
func (p ParamSpec) IsTuple() bool {
	return strings.HasPrefix(p.Type, "tuple")
}

// String renders the canonical form used for selector hashing,
// e.g. "(address,uint256)[]".
func (p ParamSpec) String() string {
	if !p.IsTuple() {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// ParseSignature splits "name(type,...)" into the function name and its
// parameter types.
func ParseSignature(sig string) (string, []ParamSpec, error) {
	sig = strings.TrimSpace(sig)
	open := strings.Index(sig, "(")
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, fmt.Errorf("%w: %q", ErrUnbalancedSignature, sig)
	}
	params, err := ParseParamTypes(sig[open+1 : len(sig)-1])
	if err != nil {
		return "", nil, fmt.Errorf("parsing %q: %w", sig, err)
	}
	return sig[:open], params, nil
}

// ParseParamTypes parses a comma separated type list such as
// "address,(uint256,bytes)[],bool".
//
// Innermost parenthesized groups are cut out one at a time and replaced by a
// placeholder referencing a side table, until the working string is flat.
// The flat string is then split on commas and placeholders are expanded back
// into tuple specs.
func ParseParamTypes(list string) ([]ParamSpec, error) {
	working := strings.Join(strings.Fields(list), "")

	var groups []string
	for {
		closeIdx := strings.Index(working, ")")
		if closeIdx < 0 {
			break
		}
		openIdx := strings.LastIndex(working[:closeIdx], "(")
		if openIdx < 0 {
			return nil, ErrUnbalancedSignature
		}
		groups = append(groups, working[openIdx+1:closeIdx])
		token := placeholderPrefix + strconv.Itoa(len(groups)-1)
		working = working[:openIdx] + token + working[closeIdx+1:]
	}
	if strings.Contains(working, "(") {
		return nil, ErrUnbalancedSignature
	}

	return expandGroup(working, groups)
}

func expandGroup(flat string, groups []string) ([]ParamSpec, error) {
	if flat == "" {
		return nil, nil
	}

	parts := strings.Split(flat, ",")
	specs := make([]ParamSpec, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty type in %q", flat)
		}
		if !strings.HasPrefix(part, placeholderPrefix) {
			specs = append(specs, ParamSpec{Type: part})
			continue
		}

		ref := strings.TrimPrefix(part, placeholderPrefix)
		end := strings.IndexFunc(ref, func(r rune) bool { return r < '0' || r > '9' })
		suffix := ""
		if end >= 0 {
			ref, suffix = ref[:end], ref[end:]
		}
		idx, err := strconv.Atoi(ref)
		if err != nil || idx >= len(groups) {
			return nil, fmt.Errorf("bad tuple reference %q", part)
		}
		if suffix != "" && !strings.HasPrefix(suffix, "[") {
			return nil, fmt.Errorf("unexpected %q after tuple", suffix)
		}

		components, err := expandGroup(groups[idx], groups)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ParamSpec{Type: "tuple" + suffix, Components: components})
	}
	return specs, nil
}

// arguments converts specs into go-ethereum ABI arguments. Tuple components
// get synthetic field names since go-ethereum builds a Go struct per tuple.
func arguments(specs []ParamSpec, names []string) (abi.Arguments, error) {
	args := make(abi.Arguments, len(specs))
	for i, spec := range specs {
		m := spec.marshaling("")
		t, err := abi.NewType(m.Type, "", m.Components)
		if err != nil {
			return nil, fmt.Errorf("param %d (%s): %w", i, spec, err)
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		args[i] = abi.Argument{Name: name, Type: t}
	}
	return args, nil
}

func (p ParamSpec) marshaling(name string) abi.ArgumentMarshaling {
	m := abi.ArgumentMarshaling{Name: name, Type: p.Type}
	for i, c := range p.Components {
		m.Components = append(m.Components, c.marshaling(placeholderField(i)))
	}
	return m
}

// placeholderField names the i-th anonymous tuple component. go-ethereum
// refuses tuple components without a usable Go field name.
func placeholderField(i int) string {
	return "field" + strconv.Itoa(i)
}

func isPlaceholderField(name string) bool {
	digits, ok := strings.CutPrefix(name, "field")
	if !ok || digits == "" {
		return false
	}
	_, err := strconv.Atoi(digits)
	return err == nil
}
