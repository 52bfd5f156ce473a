package decoder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// paramBuilder turns go-ethereum unpacked values into DecodedParam trees.
// componentNames controls whether tuple children take their ABI component
// names; signature-only decoding has none worth showing.
type paramBuilder struct {
	componentNames bool
}

func (b paramBuilder) build(name string, t *abi.Type, value any) DecodedParam {
	p := DecodedParam{Name: name, Type: typeTag(t)}

	rv := reflect.ValueOf(value)
	switch t.T {
	case abi.TupleTy:
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || rv.NumField() < len(t.TupleElems) {
			p.Value = value
			return p
		}
		p.Children = make([]DecodedParam, len(t.TupleElems))
		raw := make([]any, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			childName := ""
			if b.componentNames && i < len(t.TupleRawNames) && !isPlaceholderField(t.TupleRawNames[i]) {
				childName = t.TupleRawNames[i]
			}
			p.Children[i] = b.build(childName, elem, rv.Field(i).Interface())
			raw[i] = p.Children[i].Value
		}
		p.Value = raw

	case abi.SliceTy, abi.ArrayTy:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			p.Value = value
			return p
		}
		p.Children = make([]DecodedParam, rv.Len())
		raw := make([]any, rv.Len())
		for i := range rv.Len() {
			p.Children[i] = b.build(fmt.Sprintf("Item %d", i+1), t.Elem, rv.Index(i).Interface())
			raw[i] = p.Children[i].Value
		}
		p.Value = raw

	case abi.BytesTy, abi.FixedBytesTy, abi.HashTy:
		p.Value = toBytes(rv)

	default:
		p.Value = value
	}
	return p
}

func toBytes(rv reflect.Value) hexutil.Bytes {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make(hexutil.Bytes, rv.Len())
	for i := range rv.Len() {
		out[i] = byte(rv.Index(i).Uint())
	}
	return out
}

// typeTag is the display type of a param: "tuple" for structs, element tag
// plus "[]"/"[n]" for arrays, the ABI name otherwise.
func typeTag(t *abi.Type) string {
	switch t.T {
	case abi.TupleTy:
		return "tuple"
	case abi.SliceTy:
		return typeTag(t.Elem) + "[]"
	case abi.ArrayTy:
		return fmt.Sprintf("%s[%d]", typeTag(t.Elem), t.Size)
	default:
		return t.String()
	}
}

// canonicalType renders t the way NatSpec keys method signatures, with tuple
// components spelled out: "(address,uint256)[]".
func canonicalType(t *abi.Type) string {
	switch t.T {
	case abi.TupleTy:
		parts := make([]string, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			parts[i] = canonicalType(elem)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case abi.SliceTy:
		return canonicalType(t.Elem) + "[]"
	case abi.ArrayTy:
		return fmt.Sprintf("%s[%d]", canonicalType(t.Elem), t.Size)
	default:
		return t.String()
	}
}

func canonicalSignature(name string, args abi.Arguments) string {
	parts := make([]string, len(args))
	for i := range args {
		parts[i] = canonicalType(&args[i].Type)
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
