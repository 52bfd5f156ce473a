package decoder

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Source identifies which strategy produced a decode result.
type Source string

const (
	SourceRouter            Source = "router-protocol"
	SourceVerified          Source = "verified-source"
	SourceSignatureRegistry Source = "signature-registry"
)

// DecodedParam is one decoded argument. Tuple and array params carry one
// child per component or element; array children are named "Item N".
type DecodedParam struct {
	Name        string         `json:"name,omitempty"`
	Type        string         `json:"type"`
	Value       any            `json:"value"`
	Description string         `json:"description,omitempty"`
	Children    []DecodedParam `json:"children,omitempty"`
}

// DecodedMethod is one fully decoded function call.
type DecodedMethod struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Params      []DecodedParam `json:"params"`
}

// Result is what Decode hands back to the caller.
type Result struct {
	Data   []DecodedMethod `json:"data"`
	Source Source          `json:"source"`
}

// PoolHop is one hop of an encoded swap path: two token addresses joined by
// the pool's 3-byte fee/tick-spacing marker.
type PoolHop struct {
	FirstAddress  common.Address `json:"firstAddress"`
	TickSpacing   uint32         `json:"tickSpacing"`
	SecondAddress common.Address `json:"secondAddress"`
}

// RequestArgs is a single JSON-RPC style request sent to a Provider.
type RequestArgs struct {
	Method string
	Params []any
}

// Provider is the read-only chain query collaborator.
type Provider interface {
	Request(ctx context.Context, args RequestArgs) (string, error)
}

// Request is the input of one decode call. TransactionData and
// ContractAddress are 0x-hex; ChainID may be 0x-hex or decimal.
type Request struct {
	TransactionData string
	ContractAddress string
	ChainID         string
	Provider        Provider
}
