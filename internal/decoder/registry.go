package decoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultSignatureRegistryURL is the public selector-to-signature registry.
const DefaultSignatureRegistryURL = "https://www.4byte.directory"

// SignatureRegistry looks up text signatures by 4-byte selector.
type SignatureRegistry struct {
	baseURL string
	client  *http.Client
}

// NewSignatureRegistry creates a registry client. An empty baseURL uses
// DefaultSignatureRegistryURL.
func NewSignatureRegistry(baseURL string, client *http.Client) *SignatureRegistry {
	if baseURL == "" {
		baseURL = DefaultSignatureRegistryURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &SignatureRegistry{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Lookup returns every candidate signature for selector (0x-prefixed, 4 bytes).
func (r *SignatureRegistry) Lookup(ctx context.Context, selector string) ([]string, error) {
	u := fmt.Sprintf("%s/api/v1/signatures/?hex_signature=%s", r.baseURL, url.QueryEscape(selector))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying signature registry: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading signature registry response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signature registry: HTTP %d", resp.StatusCode)
	}

	var result struct {
		Results []struct {
			TextSignature string `json:"text_signature"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing signature registry response: %w", err)
	}

	signatures := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		if r.TextSignature != "" {
			signatures = append(signatures, r.TextSignature)
		}
	}
	return signatures, nil
}

// SignatureRegistryDecoder decodes calls using only a registry signature:
// params carry types and values but no names or descriptions.
type SignatureRegistryDecoder struct {
	registry *SignatureRegistry
}

// NewSignatureRegistryDecoder creates a decoder backed by registry.
func NewSignatureRegistryDecoder(registry *SignatureRegistry) *SignatureRegistryDecoder {
	return &SignatureRegistryDecoder{registry: registry}
}

// Decode returns nil, nil when the registry knows no signature for the selector.
func (d *SignatureRegistryDecoder) Decode(ctx context.Context, data []byte) (*DecodedMethod, error) {
	if len(data) < 4 {
		return nil, ErrInvalidCalldata
	}

	signatures, err := d.registry.Lookup(ctx, hexutil.Encode(data[:4]))
	if err != nil {
		return nil, err
	}
	if len(signatures) == 0 {
		return nil, nil
	}

	return DecodeWithSignature(data, signatures[0])
}

// DecodeWithSignature decodes data against a text signature such as
// "transfer(address,uint256)". The selector is not checked against the
// signature, so callers can try each registry candidate in turn.
func DecodeWithSignature(data []byte, signature string) (*DecodedMethod, error) {
	if len(data) < 4 {
		return nil, ErrInvalidCalldata
	}
	name, specs, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	args, err := arguments(specs, nil)
	if err != nil {
		return nil, fmt.Errorf("building types for %s: %w", signature, err)
	}
	values, err := args.UnpackValues(data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpacking %s arguments: %w", signature, err)
	}

	b := paramBuilder{}
	params := make([]DecodedParam, len(args))
	for i := range args {
		params[i] = b.build("", &args[i].Type, values[i])
	}
	return &DecodedMethod{Name: name, Params: params}, nil
}
