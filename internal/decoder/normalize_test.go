package decoder

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBigIntsBecomeDecimalStrings(t *testing.T) {
	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	in := DecodedMethod{
		Name:        "transfer",
		Description: "Transfer tokens",
		Params: []DecodedParam{
			{Name: "to", Type: "address", Value: recipient},
			{Name: "value", Type: "uint256", Value: huge, Description: "The amount"},
			{Name: "delta", Type: "int256", Value: big.NewInt(-42)},
			{Name: "data", Type: "bytes", Value: hexutil.Bytes{0xca, 0xfe}},
		},
	}

	want := DecodedMethod{
		Name:        "transfer",
		Description: "Transfer tokens",
		Params: []DecodedParam{
			{Name: "to", Type: "address", Value: recipient},
			{Name: "value", Type: "uint256", Value: huge.String(), Description: "The amount"},
			{Name: "delta", Type: "int256", Value: "-42"},
			{Name: "data", Type: "bytes", Value: hexutil.Bytes{0xca, 0xfe}},
		},
	}

	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeNestedChildrenAndValues(t *testing.T) {
	in := DecodedMethod{
		Name: "submit",
		Params: []DecodedParam{{
			Name:  "orders",
			Type:  "tuple[]",
			Value: []any{[]any{tokenAddress, big.NewInt(5)}},
			Children: []DecodedParam{{
				Name:  "Item 1",
				Type:  "tuple",
				Value: []any{tokenAddress, big.NewInt(5)},
				Children: []DecodedParam{
					{Name: "token", Type: "address", Value: tokenAddress},
					{Name: "amount", Type: "uint256", Value: big.NewInt(5)},
				},
			}},
		}},
	}

	want := DecodedMethod{
		Name: "submit",
		Params: []DecodedParam{{
			Name:  "orders",
			Type:  "tuple[]",
			Value: []any{[]any{tokenAddress, "5"}},
			Children: []DecodedParam{{
				Name:  "Item 1",
				Type:  "tuple",
				Value: []any{tokenAddress, "5"},
				Children: []DecodedParam{
					{Name: "token", Type: "address", Value: tokenAddress},
					{Name: "amount", Type: "uint256", Value: "5"},
				},
			}},
		}},
	}

	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	value := big.NewInt(7)
	in := DecodedMethod{Name: "f", Params: []DecodedParam{{Type: "uint256", Value: value}}}

	out := Normalize(in)
	assert.Equal(t, "7", out.Params[0].Value)
	assert.Same(t, value, in.Params[0].Value)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := DecodedMethod{Name: "f", Params: []DecodedParam{
		{Type: "uint256[]", Value: []any{big.NewInt(1), big.NewInt(2)}, Children: []DecodedParam{
			{Name: "Item 1", Type: "uint256", Value: big.NewInt(1)},
			{Name: "Item 2", Type: "uint256", Value: big.NewInt(2)},
		}},
	}}

	once := Normalize(in)
	if diff := cmp.Diff(once, Normalize(once)); diff != "" {
		t.Errorf("second Normalize() changed the result (-first +second):\n%s", diff)
	}
}

func TestNormalizeKeepsNilSlicesNil(t *testing.T) {
	out := Normalize(DecodedMethod{Name: "f"})
	assert.Nil(t, out.Params)

	out = Normalize(DecodedMethod{Name: "f", Params: []DecodedParam{{Type: "bool", Value: true}}})
	assert.Nil(t, out.Params[0].Children)
	assert.Equal(t, true, out.Params[0].Value)
}
