// Package decoder turns unsigned transaction calldata into named methods and
// labeled parameters.
//
// Decoding is best-effort: a router-specific decoder runs first, then a
// verified-source decoder and a signature-registry decoder run side by side
// against the proxy-resolved contract. Any failure degrades to "no result".
package decoder

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/calldecode/internal/logger"
)

// ErrInvalidCalldata is returned for calldata too short to carry a selector.
var ErrInvalidCalldata = errors.New("calldata shorter than a 4-byte selector")

// Decoder runs the full decode pipeline. It holds no per-call state and is
// safe for concurrent use.
type Decoder struct {
	verified *VerifiedSourceDecoder
	registry *SignatureRegistryDecoder
	lggr     logger.Logger
}

// Option configures a Decoder.
type Option func(*decoderOptions)

type decoderOptions struct {
	sourcifyURL string
	registryURL string
	client      *http.Client
	lggr        logger.Logger
}

// WithSourcifyURL points the verified-source decoder at another server.
func WithSourcifyURL(u string) Option {
	return func(o *decoderOptions) { o.sourcifyURL = u }
}

// WithSignatureRegistryURL points the signature-registry decoder at another server.
func WithSignatureRegistryURL(u string) Option {
	return func(o *decoderOptions) { o.registryURL = u }
}

// WithHTTPClient sets the client used for both metadata services.
func WithHTTPClient(c *http.Client) Option {
	return func(o *decoderOptions) { o.client = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *decoderOptions) { o.lggr = l }
}

// New creates a Decoder.
func New(opts ...Option) *Decoder {
	o := decoderOptions{lggr: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{
		verified: NewVerifiedSourceDecoder(NewSourceClient(o.sourcifyURL, o.client)),
		registry: NewSignatureRegistryDecoder(NewSignatureRegistry(o.registryURL, o.client)),
		lggr:     o.lggr.Named("decoder"),
	}
}

type outcome struct {
	method *DecodedMethod
	err    error
}

// Decode returns the best available decoding of req, or nil when nothing
// could be decoded. Errors from individual strategies are logged, never
// returned.
func (d *Decoder) Decode(ctx context.Context, req Request) *Result {
	data, err := decodeHex(req.TransactionData)
	if err != nil || len(data) < 4 {
		d.lggr.Debugw("Calldata not decodable", "data", req.TransactionData, "err", err)
		return nil
	}

	if commands := decodeRouterCalldata(data); len(commands) > 0 {
		return normalizeResult(commands, SourceRouter)
	}

	address := req.ContractAddress
	if req.Provider != nil && address != "" {
		impl, err := ResolveProxy(ctx, address, req.Provider)
		switch {
		case err != nil:
			d.lggr.Debugw("Proxy resolution failed", "address", address, "err", err)
		case impl != "":
			d.lggr.Debugw("Resolved proxy implementation", "proxy", address, "implementation", impl)
			address = impl
		}
	}

	var verified, registry outcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		chainID, err := parseChainID(req.ChainID)
		if err != nil {
			verified.err = err
			return
		}
		if address == "" {
			return
		}
		verified.method, verified.err = d.verified.Decode(ctx, data, address, chainID)
	}()
	go func() {
		defer wg.Done()
		registry.method, registry.err = d.registry.Decode(ctx, data)
	}()
	wg.Wait()

	if verified.err != nil {
		d.lggr.Debugw("Verified-source decoding failed", "address", address, "err", verified.err)
	}
	if registry.err != nil {
		d.lggr.Debugw("Signature-registry decoding failed", "selector", hexutil.Encode(data[:4]), "err", registry.err)
	}

	switch {
	case verified.err == nil && verified.method != nil:
		return normalizeResult([]DecodedMethod{*verified.method}, SourceVerified)
	case registry.err == nil && registry.method != nil:
		return normalizeResult([]DecodedMethod{*registry.method}, SourceSignatureRegistry)
	default:
		return nil
	}
}

// DecodeOffline runs only the router decoder, which needs no network access.
func DecodeOffline(req Request) *Result {
	methods := DecodeRouter(req)
	if len(methods) == 0 {
		return nil
	}
	return normalizeResult(methods, SourceRouter)
}

func normalizeResult(methods []DecodedMethod, source Source) *Result {
	out := make([]DecodedMethod, len(methods))
	for i, m := range methods {
		out[i] = Normalize(m)
	}
	return &Result{Data: out, Source: source}
}

// decodeHex accepts hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// parseChainID accepts "0x1" or "1".
func parseChainID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() <= 0 || !n.IsUint64() {
		return 0, fmt.Errorf("invalid chain id %q", s)
	}
	return n.Uint64(), nil
}
