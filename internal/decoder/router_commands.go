package decoder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// CommandParam describes one argument of a router command. Type uses the
// flat signature syntax accepted by ParseParamTypes.
type CommandParam struct {
	Name        string
	Type        string
	Description string
}

// CommandSpec is one entry of the router command table.
type CommandSpec struct {
	Name   string
	Params []CommandParam
}

// Router command codes. Only the low five bits of a command byte select the
// command; the remaining bits are flags.
const (
	CommandV3SwapExactIn            byte = 0x00
	CommandV3SwapExactOut           byte = 0x01
	CommandPermit2TransferFrom      byte = 0x02
	CommandPermit2PermitBatch       byte = 0x03
	CommandSweep                    byte = 0x04
	CommandTransfer                 byte = 0x05
	CommandPayPortion               byte = 0x06
	CommandV2SwapExactIn            byte = 0x08
	CommandV2SwapExactOut           byte = 0x09
	CommandPermit2Permit            byte = 0x0a
	CommandWrapETH                  byte = 0x0b
	CommandUnwrapWETH               byte = 0x0c
	CommandPermit2TransferFromBatch byte = 0x0d
	CommandBalanceCheckERC20        byte = 0x0e
	CommandSeaportV15               byte = 0x10
	CommandLooksRareV2              byte = 0x11
	CommandNFTX                     byte = 0x12
	CommandCryptopunks              byte = 0x13
	CommandOwnerCheck721            byte = 0x15
	CommandOwnerCheck1155           byte = 0x16
	CommandSweepERC721              byte = 0x17
	CommandX2Y2721                  byte = 0x18
	CommandSudoswap                 byte = 0x19
	CommandNFT20                    byte = 0x1a
	CommandX2Y21155                 byte = 0x1b
	CommandFoundation               byte = 0x1c
	CommandSweepERC1155             byte = 0x1d

	commandTypeMask byte = 0x1f
)

var (
	pRecipient   = CommandParam{"recipient", "address", "The address that will receive the output"}
	pToken       = CommandParam{"token", "address", "The token contract address"}
	pAmountMin   = CommandParam{"amountMin", "uint256", "The minimum amount that must be received"}
	pPayerIsUser = CommandParam{"payerIsUser", "bool", "Whether the input funds come from the sender instead of the router"}
	pMarketValue = CommandParam{"value", "uint256", "The amount of ETH forwarded to the marketplace"}
	pMarketData  = CommandParam{"data", "bytes", "The encoded marketplace call"}
	pTokenID     = CommandParam{"id", "uint256", "The token ID"}
	pOwner       = CommandParam{"owner", "address", "The address expected to hold the token"}
)

// routerCommandSpecs is the source table; routerCommands is built from it once.
var routerCommandSpecs = map[byte]CommandSpec{
	CommandV3SwapExactIn: {Name: "V3_SWAP_EXACT_IN", Params: []CommandParam{
		pRecipient,
		{"amountIn", "uint256", "The exact amount of the input token to swap"},
		{"amountOutMin", "uint256", "The minimum amount of the output token to receive"},
		{"path", "bytes", "The pools to swap through"},
		pPayerIsUser,
	}},
	CommandV3SwapExactOut: {Name: "V3_SWAP_EXACT_OUT", Params: []CommandParam{
		pRecipient,
		{"amountOut", "uint256", "The exact amount of the output token to receive"},
		{"amountInMax", "uint256", "The maximum amount of the input token to spend"},
		{"path", "bytes", "The pools to swap through, in reverse order"},
		pPayerIsUser,
	}},
	CommandPermit2TransferFrom: {Name: "PERMIT2_TRANSFER_FROM", Params: []CommandParam{
		pToken,
		pRecipient,
		{"amount", "uint160", "The amount of the token to transfer"},
	}},
	CommandPermit2PermitBatch: {Name: "PERMIT2_PERMIT_BATCH", Params: []CommandParam{
		{"permitBatch", "((address,uint160,uint48,uint48)[],address,uint256)", "The token permissions being granted, the spender, and the signature deadline"},
		{"signature", "bytes", "The signature authorizing the permit"},
	}},
	CommandSweep: {Name: "SWEEP", Params: []CommandParam{
		pToken,
		pRecipient,
		pAmountMin,
	}},
	CommandTransfer: {Name: "TRANSFER", Params: []CommandParam{
		pToken,
		pRecipient,
		{"value", "uint256", "The amount to transfer"},
	}},
	CommandPayPortion: {Name: "PAY_PORTION", Params: []CommandParam{
		pToken,
		pRecipient,
		{"bips", "uint256", "The portion of the router balance to pay, in basis points"},
	}},
	CommandV2SwapExactIn: {Name: "V2_SWAP_EXACT_IN", Params: []CommandParam{
		pRecipient,
		{"amountIn", "uint256", "The exact amount of the input token to swap"},
		{"amountOutMin", "uint256", "The minimum amount of the output token to receive"},
		{"path", "address[]", "The tokens to swap through"},
		pPayerIsUser,
	}},
	CommandV2SwapExactOut: {Name: "V2_SWAP_EXACT_OUT", Params: []CommandParam{
		pRecipient,
		{"amountOut", "uint256", "The exact amount of the output token to receive"},
		{"amountInMax", "uint256", "The maximum amount of the input token to spend"},
		{"path", "address[]", "The tokens to swap through"},
		pPayerIsUser,
	}},
	CommandPermit2Permit: {Name: "PERMIT2_PERMIT", Params: []CommandParam{
		{"permitSingle", "((address,uint160,uint48,uint48),address,uint256)", "The token permission being granted, the spender, and the signature deadline"},
		{"signature", "bytes", "The signature authorizing the permit"},
	}},
	CommandWrapETH: {Name: "WRAP_ETH", Params: []CommandParam{
		pRecipient,
		pAmountMin,
	}},
	CommandUnwrapWETH: {Name: "UNWRAP_WETH", Params: []CommandParam{
		pRecipient,
		pAmountMin,
	}},
	CommandPermit2TransferFromBatch: {Name: "PERMIT2_TRANSFER_FROM_BATCH", Params: []CommandParam{
		{"batchDetails", "(address,address,uint160,address)[]", "The transfers to perform: from, to, amount and token"},
	}},
	CommandBalanceCheckERC20: {Name: "BALANCE_CHECK_ERC20", Params: []CommandParam{
		{"owner", "address", "The address whose balance is checked"},
		pToken,
		{"minBalance", "uint256", "The minimum balance the owner must hold"},
	}},
	CommandSeaportV15:  {Name: "SEAPORT_V1_5", Params: []CommandParam{pMarketValue, pMarketData}},
	CommandLooksRareV2: {Name: "LOOKS_RARE_V2", Params: []CommandParam{pMarketValue, pMarketData}},
	CommandNFTX:        {Name: "NFTX", Params: []CommandParam{pMarketValue, pMarketData}},
	CommandCryptopunks: {Name: "CRYPTOPUNKS", Params: []CommandParam{
		{"punkId", "uint256", "The punk to buy"},
		pRecipient,
		pMarketValue,
	}},
	CommandOwnerCheck721: {Name: "OWNER_CHECK_721", Params: []CommandParam{
		pOwner,
		pToken,
		pTokenID,
	}},
	CommandOwnerCheck1155: {Name: "OWNER_CHECK_1155", Params: []CommandParam{
		pOwner,
		pToken,
		pTokenID,
		{"minBalance", "uint256", "The minimum balance the owner must hold"},
	}},
	CommandSweepERC721: {Name: "SWEEP_ERC721", Params: []CommandParam{
		pToken,
		pRecipient,
		pTokenID,
	}},
	CommandX2Y2721: {Name: "X2Y2_721", Params: []CommandParam{
		pMarketValue,
		pMarketData,
		pRecipient,
		pToken,
		pTokenID,
	}},
	CommandSudoswap: {Name: "SUDOSWAP", Params: []CommandParam{pMarketValue, pMarketData}},
	CommandNFT20:    {Name: "NFT20", Params: []CommandParam{pMarketValue, pMarketData}},
	CommandX2Y21155: {Name: "X2Y2_1155", Params: []CommandParam{
		pMarketValue,
		pMarketData,
		pRecipient,
		pToken,
		pTokenID,
		{"amount", "uint256", "The number of tokens to buy"},
	}},
	CommandFoundation: {Name: "FOUNDATION", Params: []CommandParam{
		pMarketValue,
		pMarketData,
		pRecipient,
		pToken,
		pTokenID,
	}},
	CommandSweepERC1155: {Name: "SWEEP_ERC1155", Params: []CommandParam{
		pToken,
		pRecipient,
		pTokenID,
		{"amount", "uint256", "The number of tokens to sweep"},
	}},
}

// routerCommand pairs a spec with its prebuilt ABI arguments.
type routerCommand struct {
	spec CommandSpec
	args abi.Arguments
}

var routerCommands = mustBuildCommandTable(routerCommandSpecs)

func mustBuildCommandTable(specs map[byte]CommandSpec) map[byte]routerCommand {
	table := make(map[byte]routerCommand, len(specs))
	for code, spec := range specs {
		types := make([]ParamSpec, len(spec.Params))
		names := make([]string, len(spec.Params))
		for i, p := range spec.Params {
			parsed, err := ParseParamTypes(p.Type)
			if err != nil || len(parsed) != 1 {
				panic(fmt.Sprintf("router command %s: bad type %q for %s", spec.Name, p.Type, p.Name))
			}
			types[i] = parsed[0]
			names[i] = p.Name
		}
		args, err := arguments(types, names)
		if err != nil {
			panic(fmt.Sprintf("router command %s: %v", spec.Name, err))
		}
		table[code] = routerCommand{spec: spec, args: args}
	}
	return table
}

// LookupCommand returns the spec for a router command byte. Flag bits above
// the command mask are ignored.
func LookupCommand(command byte) (CommandSpec, bool) {
	c, ok := routerCommands[command&commandTypeMask]
	if !ok {
		return CommandSpec{}, false
	}
	params := make([]CommandParam, len(c.spec.Params))
	copy(params, c.spec.Params)
	return CommandSpec{Name: c.spec.Name, Params: params}, true
}
