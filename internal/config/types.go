package config

// Config holds all calldecode configuration.
type Config struct {
	DefaultNetwork       string              `json:"default_network"        mapstructure:"default_network"`
	NetworkMode          string              `json:"network_mode"           mapstructure:"network_mode"`  // "mainnet" | "testnet"
	RPCAlgorithm         string              `json:"rpc_algorithm"          mapstructure:"rpc_algorithm"` // "fastest" | "failover"
	SourcifyURL          string              `json:"sourcify_url"           mapstructure:"sourcify_url"`
	SignatureRegistryURL string              `json:"signature_registry_url" mapstructure:"signature_registry_url"`
	HTTPTimeoutSeconds   int                 `json:"http_timeout_seconds"   mapstructure:"http_timeout_seconds"`
	CustomRPCs           map[string][]string `json:"custom_rpcs"            mapstructure:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}
