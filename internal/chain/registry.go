package chain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds the metadata needed to decode calls on one EVM network.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        uint64   `json:"chain_id"`
	TestnetChainID uint64   `json:"testnet_chain_id"`
	MainnetRPCs    []string `json:"mainnet_rpcs"`
	TestnetRPCs    []string `json:"testnet_rpcs"`
	TestnetName    string   `json:"testnet_name"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[uint64]*Chain
}

// NewRegistry creates the registry of supported EVM chains.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[uint64]*Chain, 2*len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
		if c.TestnetChainID != 0 {
			r.byID[c.TestnetChainID] = c
		}
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its mainnet or testnet chain ID.
func (r *Registry) GetByChainID(id uint64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// Lookup accepts a slug, a decimal chain ID or a 0x-hex chain ID.
func (r *Registry) Lookup(nameOrID string) (*Chain, error) {
	if c, err := r.GetByName(nameOrID); err == nil {
		return c, nil
	}
	id, err := strconv.ParseUint(nameOrID, 0, 64)
	if err != nil {
		return nil, ErrChainNotFound
	}
	return r.GetByChainID(id)
}

// RPCs returns the RPC list for a chain in the given mode ("mainnet"/"testnet").
func (c *Chain) RPCs(mode string) []string {
	if mode == "testnet" {
		return c.TestnetRPCs
	}
	return c.MainnetRPCs
}

// ID returns the chain ID for the given mode.
func (c *Chain) ID(mode string) uint64 {
	if mode == "testnet" && c.TestnetChainID != 0 {
		return c.TestnetChainID
	}
	return c.ChainID
}

// HexID returns ID(mode) as a 0x-prefixed quantity, the form wallets pass around.
func (c *Chain) HexID(mode string) string {
	return "0x" + strconv.FormatUint(c.ID(mode), 16)
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1, TestnetChainID: 11155111,
			MainnetRPCs: []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			TestnetName: "Sepolia",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, TestnetChainID: 84532,
			MainnetRPCs: []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			TestnetRPCs: []string{"https://sepolia.base.org"},
			TestnetName: "Base Sepolia",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137, TestnetChainID: 80002,
			MainnetRPCs: []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			TestnetRPCs: []string{"https://rpc-amoy.polygon.technology"},
			TestnetName: "Amoy",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161, TestnetChainID: 421614,
			MainnetRPCs: []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			TestnetRPCs: []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			TestnetName: "Arb Sepolia",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10, TestnetChainID: 11155420,
			MainnetRPCs: []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			TestnetRPCs: []string{"https://sepolia.optimism.io"},
			TestnetName: "OP Sepolia",
		},
		{
			Name: "bnb", DisplayName: "BNB Chain", ChainID: 56, TestnetChainID: 97,
			MainnetRPCs: []string{"https://bsc-dataseed.binance.org", "https://bsc-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
			TestnetName: "BSC Testnet",
		},
		{
			Name: "avalanche", DisplayName: "Avalanche", ChainID: 43114, TestnetChainID: 43113,
			MainnetRPCs: []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche-c-chain-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://api.avax-test.network/ext/bc/C/rpc"},
			TestnetName: "Fuji",
		},
		{
			Name: "linea", DisplayName: "Linea", ChainID: 59144, TestnetChainID: 59141,
			MainnetRPCs: []string{"https://rpc.linea.build", "https://linea-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://rpc.sepolia.linea.build"},
			TestnetName: "Linea Sepolia",
		},
		{
			Name: "zksync", DisplayName: "zkSync Era", ChainID: 324, TestnetChainID: 300,
			MainnetRPCs: []string{"https://mainnet.era.zksync.io", "https://zksync-era-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://sepolia.era.zksync.dev"},
			TestnetName: "zkSync Sepolia",
		},
		{
			Name: "scroll", DisplayName: "Scroll", ChainID: 534352, TestnetChainID: 534351,
			MainnetRPCs: []string{"https://rpc.scroll.io", "https://scroll-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://sepolia-rpc.scroll.io"},
			TestnetName: "Scroll Sepolia",
		},
		{
			Name: "gnosis", DisplayName: "Gnosis", ChainID: 100, TestnetChainID: 10200,
			MainnetRPCs: []string{"https://rpc.gnosischain.com", "https://gnosis-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://rpc.chiadochain.net"},
			TestnetName: "Chiado",
		},
		{
			Name: "blast", DisplayName: "Blast", ChainID: 81457, TestnetChainID: 168587773,
			MainnetRPCs: []string{"https://rpc.blast.io", "https://blast-rpc.publicnode.com"},
			TestnetRPCs: []string{"https://sepolia.blast.io"},
			TestnetName: "Blast Sepolia",
		},
	}
}
