package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultNetwork     = "ethereum"
	defaultMode        = "mainnet"
	defaultSourcifyURL = "https://sourcify.dev/server"
	defaultRegistryURL = "https://www.4byte.directory"
	defaultHTTPTimeout = 15
	defaultAlgorithm   = "fastest"

	configFile = "config.json"
)

// EnvConfigDir overrides the config directory.
const EnvConfigDir = "CALLDECODE_CONFIG_DIR"

// envBindings maps config keys to the environment variables that override
// them. Earlier names win.
var envBindings = map[string][]string{
	KeyDefaultNetwork:       {"CALLDECODE_DEFAULT_NETWORK"},
	KeyNetworkMode:          {"CALLDECODE_NETWORK_MODE"},
	KeySourcifyURL:          {"CALLDECODE_SOURCIFY_URL", "SOURCIFY_URL"},
	KeySignatureRegistryURL: {"CALLDECODE_SIGNATURE_REGISTRY_URL"},
	KeyHTTPTimeoutSeconds:   {"CALLDECODE_HTTP_TIMEOUT_SECONDS"},
	KeyRPCAlgorithm:         {"CALLDECODE_RPC_ALGORITHM"},
}

// Settable keys.
const (
	KeyDefaultNetwork       = "default_network"
	KeyNetworkMode          = "network_mode"
	KeySourcifyURL          = "sourcify_url"
	KeySignatureRegistryURL = "signature_registry_url"
	KeyHTTPTimeoutSeconds   = "http_timeout_seconds"
	KeyRPCAlgorithm         = "rpc_algorithm"
)

// Load reads config from dir (or creates defaults) and applies environment
// overrides. dir defaults to ~/.calldecode.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".calldecode")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")
	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dir, configFile)); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks values that would otherwise fail late, mid-decode.
func (c *Config) Validate() error {
	if c.NetworkMode != "mainnet" && c.NetworkMode != "testnet" {
		return fmt.Errorf("%s must be mainnet or testnet, got %q", KeyNetworkMode, c.NetworkMode)
	}
	if c.RPCAlgorithm != "fastest" && c.RPCAlgorithm != "failover" {
		return fmt.Errorf("%s must be fastest or failover, got %q", KeyRPCAlgorithm, c.RPCAlgorithm)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyHTTPTimeoutSeconds, c.HTTPTimeoutSeconds)
	}
	for _, u := range []string{c.SourcifyURL, c.SignatureRegistryURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("service URL %q must start with http:// or https://", u)
		}
	}
	return nil
}

// Set updates one key from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyDefaultNetwork:
		c.DefaultNetwork = strings.ToLower(value)
	case KeyNetworkMode:
		c.NetworkMode = value
	case KeySourcifyURL:
		c.SourcifyURL = strings.TrimRight(value, "/")
	case KeySignatureRegistryURL:
		c.SignatureRegistryURL = strings.TrimRight(value, "/")
	case KeyRPCAlgorithm:
		c.RPCAlgorithm = value
	case KeyHTTPTimeoutSeconds:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.HTTPTimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return c.Validate()
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(envBindings))
	for k := range envBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefaultNetwork, defaultNetwork)
	v.SetDefault(KeyNetworkMode, defaultMode)
	v.SetDefault(KeySourcifyURL, defaultSourcifyURL)
	v.SetDefault(KeySignatureRegistryURL, defaultRegistryURL)
	v.SetDefault(KeyHTTPTimeoutSeconds, defaultHTTPTimeout)
	v.SetDefault(KeyRPCAlgorithm, defaultAlgorithm)
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}
