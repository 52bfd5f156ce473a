package decoder

import "math/big"

// Normalize returns a copy of m with every big-integer value collapsed to its
// decimal string. Children are normalized before their parent.
func Normalize(m DecodedMethod) DecodedMethod {
	out := DecodedMethod{Name: m.Name, Description: m.Description}
	if m.Params != nil {
		out.Params = normalizeParams(m.Params)
	}
	return out
}

func normalizeParams(params []DecodedParam) []DecodedParam {
	out := make([]DecodedParam, len(params))
	for i, p := range params {
		out[i] = normalizeParam(p)
	}
	return out
}

func normalizeParam(p DecodedParam) DecodedParam {
	var children []DecodedParam
	if p.Children != nil {
		children = normalizeParams(p.Children)
	}
	return DecodedParam{
		Name:        p.Name,
		Type:        p.Type,
		Value:       normalizeValue(p.Value),
		Description: p.Description,
		Children:    children,
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return v
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
