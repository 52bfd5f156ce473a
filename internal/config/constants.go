package config

import "time"

// Timeouts applied by the commands on top of the per-request HTTP timeout.
const (
	RPCSelectTimeout    = 10 * time.Second // probing a chain's RPC list
	ProxyResolveTimeout = 10 * time.Second // both implementation slot reads
	DecodeTimeout       = 30 * time.Second // whole decode pipeline
)

// HTTPTimeout returns the configured per-request timeout for metadata services.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
