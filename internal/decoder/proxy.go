package decoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Proxy implementation storage slots, in lookup precedence.
const (
	// keccak256("org.zeppelinos.proxy.implementation")
	LegacyImplementationSlot = "0x7050c9e0f4ca769c69bd3a8ef740bc37934f8e2c036e5a723fd8ee048ed3f8c3"
	// bytes32(uint256(keccak256("eip1967.proxy.implementation")) - 1)
	EIP1967ImplementationSlot = "0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"
)

// ProxySlots lists the slots ResolveProxy reads.
var ProxySlots = [2]string{LegacyImplementationSlot, EIP1967ImplementationSlot}

const slotHexLength = 64

// ResolveProxy reads both implementation slots of address concurrently and
// returns the implementation stored in the first non-empty one, in slot
// order. An empty string means address is not a recognized proxy. Query
// failures are returned to the caller.
func ResolveProxy(ctx context.Context, address string, provider Provider) (string, error) {
	impl, _, err := ResolveProxySlot(ctx, address, provider)
	return impl, err
}

// ResolveProxySlot is ResolveProxy that also reports which slot matched.
func ResolveProxySlot(ctx context.Context, address string, provider Provider) (string, string, error) {
	var responses [len(ProxySlots)]string

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range ProxySlots {
		g.Go(func() error {
			res, err := provider.Request(gctx, RequestArgs{
				Method: "eth_getStorageAt",
				Params: []any{address, slot, "latest"},
			})
			if err != nil {
				return fmt.Errorf("reading storage slot %s of %s: %w", slot, address, err)
			}
			responses[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	for i, res := range responses {
		if word, ok := slotWord(res); ok {
			return common.HexToAddress(word[slotHexLength-2*common.AddressLength:]).Hex(), ProxySlots[i], nil
		}
	}
	return "", "", nil
}

// slotWord returns the 64-char slot value and whether it is non-empty.
// Short responses are left-padded with zeros.
func slotWord(value string) (string, bool) {
	word := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X"))
	if len(word) > slotHexLength {
		word = word[len(word)-slotHexLength:]
	}
	word = strings.Repeat("0", slotHexLength-len(word)) + word
	return word, word != strings.Repeat("0", slotHexLength)
}
