package decoder

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		wantName  string
		want      []ParamSpec
	}{
		{
			name:      "flat",
			signature: "transfer(address,uint256)",
			wantName:  "transfer",
			want:      []ParamSpec{{Type: "address"}, {Type: "uint256"}},
		},
		{
			name:      "no params",
			signature: "pause()",
			wantName:  "pause",
			want:      nil,
		},
		{
			name:      "whitespace",
			signature: "  approve( address , uint256 ) ",
			wantName:  "approve",
			want:      []ParamSpec{{Type: "address"}, {Type: "uint256"}},
		},
		{
			name:      "tuple slice",
			signature: "fill((address,uint256)[],bool)",
			wantName:  "fill",
			want: []ParamSpec{
				{Type: "tuple[]", Components: []ParamSpec{{Type: "address"}, {Type: "uint256"}}},
				{Type: "bool"},
			},
		},
		{
			name:      "fixed tuple array",
			signature: "f((uint256,uint256)[3])",
			wantName:  "f",
			want: []ParamSpec{
				{Type: "tuple[3]", Components: []ParamSpec{{Type: "uint256"}, {Type: "uint256"}}},
			},
		},
		{
			name:      "nested tuple",
			signature: "f((uint256,(address,bytes)),uint8)",
			wantName:  "f",
			want: []ParamSpec{
				{Type: "tuple", Components: []ParamSpec{
					{Type: "uint256"},
					{Type: "tuple", Components: []ParamSpec{{Type: "address"}, {Type: "bytes"}}},
				}},
				{Type: "uint8"},
			},
		},
		{
			name:      "sibling tuples",
			signature: "swap((address,uint24),(bytes32[],int256))",
			wantName:  "swap",
			want: []ParamSpec{
				{Type: "tuple", Components: []ParamSpec{{Type: "address"}, {Type: "uint24"}}},
				{Type: "tuple", Components: []ParamSpec{{Type: "bytes32[]"}, {Type: "int256"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, params, err := ParseSignature(tt.signature)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			if diff := cmp.Diff(tt.want, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSignatureErrors(t *testing.T) {
	unbalanced := []string{
		"transfer(address,uint256",
		"transfer",
		"(address)",
		"f((uint256)",
		"f(uint256))",
	}
	for _, sig := range unbalanced {
		t.Run(sig, func(t *testing.T) {
			_, _, err := ParseSignature(sig)
			assert.ErrorIs(t, err, ErrUnbalancedSignature)
		})
	}

	_, _, err := ParseSignature("f(uint256,,bool)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty type")

	_, _, err = ParseSignature("f((uint256)x)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after tuple")
}

func TestParamSpecString(t *testing.T) {
	_, params, err := ParseSignature("f((address,(uint256,bool)[])[2],bytes)")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "(address,(uint256,bool)[])[2]", params[0].String())
	assert.Equal(t, "bytes", params[1].String())
	assert.True(t, params[0].IsTuple())
	assert.False(t, params[1].IsTuple())
}

func TestArgumentsBuildsABITypes(t *testing.T) {
	_, params, err := ParseSignature("f(address,(uint256,bytes)[],uint8[4])")
	require.NoError(t, err)

	args, err := arguments(params, []string{"owner"})
	require.NoError(t, err)
	require.Len(t, args, 3)

	assert.Equal(t, "owner", args[0].Name)
	assert.Equal(t, "", args[1].Name)
	assert.Equal(t, abi.AddressTy, args[0].Type.T)
	assert.Equal(t, abi.SliceTy, args[1].Type.T)
	assert.Equal(t, abi.TupleTy, args[1].Type.Elem.T)
	assert.Equal(t, abi.ArrayTy, args[2].Type.T)
	assert.Equal(t, 4, args[2].Type.Size)
}

func TestArgumentsRejectsUnknownType(t *testing.T) {
	_, params, err := ParseSignature("f(foo)")
	require.NoError(t, err)
	_, err = arguments(params, nil)
	assert.Error(t, err)
}

func TestTypeTagAndCanonicalType(t *testing.T) {
	_, params, err := ParseSignature("f((address,uint256)[],uint8[4],bytes32,(bool,string))")
	require.NoError(t, err)
	args, err := arguments(params, nil)
	require.NoError(t, err)

	tags := make([]string, len(args))
	for i := range args {
		tags[i] = typeTag(&args[i].Type)
	}
	assert.Equal(t, []string{"tuple[]", "uint8[4]", "bytes32", "tuple"}, tags)
	assert.Equal(t, "f((address,uint256)[],uint8[4],bytes32,(bool,string))", canonicalSignature("f", args))
}
