package decoder

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// routerABI is the batch-execute surface of the universal swap router.
//
// Function selectors:
//
//	execute(bytes,bytes[],uint256) → 0x3593564c
//	execute(bytes,bytes[])         → 0x24856bc3
const routerABIJSON = `[
	{"type":"function","name":"execute","stateMutability":"payable","outputs":[],
	 "inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"},{"name":"deadline","type":"uint256"}]},
	{"type":"function","name":"execute","stateMutability":"payable","outputs":[],
	 "inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"}]}
]`

var routerABI = mustParseABI(routerABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

const (
	pathAddressLength = common.AddressLength
	pathMarkerLength  = 3
)

// DecodeRouter decodes a router batch-execute call into one DecodedMethod per
// recognized command, in command order. Commands with an unknown code, or
// whose input does not decode, are dropped. Nil means the calldata is not a
// router execute call.
func DecodeRouter(req Request) []DecodedMethod {
	data, err := decodeHex(req.TransactionData)
	if err != nil {
		return nil
	}
	return decodeRouterCalldata(data)
}

func decodeRouterCalldata(data []byte) []DecodedMethod {
	if len(data) < 4 {
		return nil
	}
	method, err := routerABI.MethodById(data[:4])
	if err != nil {
		return nil
	}
	values, err := method.Inputs.UnpackValues(data[4:])
	if err != nil || len(values) < 2 {
		return nil
	}
	commands, ok := values[0].([]byte)
	if !ok {
		return nil
	}
	inputs, ok := values[1].([][]byte)
	if !ok || len(inputs) != len(commands) {
		return nil
	}

	var out []DecodedMethod
	for i, command := range commands {
		decoded, ok := decodeRouterCommand(command, inputs[i])
		if !ok {
			continue
		}
		out = append(out, decoded)
	}
	return out
}

func decodeRouterCommand(command byte, input []byte) (DecodedMethod, bool) {
	c, ok := routerCommands[command&commandTypeMask]
	if !ok {
		return DecodedMethod{}, false
	}
	values, err := c.args.UnpackValues(input)
	if err != nil || len(values) != len(c.args) {
		return DecodedMethod{}, false
	}

	b := paramBuilder{}
	params := make([]DecodedParam, len(c.args))
	for i, p := range c.spec.Params {
		param := b.build(p.Name, &c.args[i].Type, values[i])
		param.Description = p.Description
		if p.Name == "path" && c.args[i].Type.T == abi.BytesTy {
			if raw, ok := values[i].([]byte); ok {
				if hops, ok := decodePoolPath(raw); ok {
					param.Value = hops
				}
			}
		}
		params[i] = param
	}
	return DecodedMethod{Name: c.spec.Name, Params: params}, true
}

// decodePoolPath splits an encoded path of the form
// address | marker(3) | address | marker(3) | address ... into hops.
// Consecutive hops share an address.
func decodePoolPath(path []byte) ([]PoolHop, bool) {
	const hopLength = pathAddressLength + pathMarkerLength
	if len(path) < pathAddressLength+hopLength || (len(path)-pathAddressLength)%hopLength != 0 {
		return nil, false
	}

	hops := make([]PoolHop, 0, (len(path)-pathAddressLength)/hopLength)
	for offset := 0; offset+hopLength+pathAddressLength <= len(path); offset += hopLength {
		marker := path[offset+pathAddressLength : offset+hopLength]
		hops = append(hops, PoolHop{
			FirstAddress:  common.BytesToAddress(path[offset : offset+pathAddressLength]),
			TickSpacing:   uint32(marker[0])<<16 | uint32(marker[1])<<8 | uint32(marker[2]),
			SecondAddress: common.BytesToAddress(path[offset+hopLength : offset+hopLength+pathAddressLength]),
		})
	}
	return hops, true
}
