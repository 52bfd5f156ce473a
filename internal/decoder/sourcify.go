package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultSourcifyURL is the public source verification service.
const DefaultSourcifyURL = "https://sourcify.dev/server"

// ErrMetadataNotFound is returned when a verified contract has no metadata file.
var ErrMetadataNotFound = errors.New("verified sources contain no metadata.json")

// SourceFile is one verified source file.
type SourceFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SourceClient fetches verified source files.
type SourceClient struct {
	baseURL string
	client  *http.Client
}

// NewSourceClient creates a client for a Sourcify-compatible server.
// An empty baseURL uses DefaultSourcifyURL.
func NewSourceClient(baseURL string, client *http.Client) *SourceClient {
	if baseURL == "" {
		baseURL = DefaultSourcifyURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &SourceClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Files returns the verified files for address on chainID (decimal).
func (c *SourceClient) Files(ctx context.Context, chainID uint64, address string) ([]SourceFile, error) {
	url := fmt.Sprintf("%s/files/any/%d/%s", c.baseURL, chainID, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching verified sources: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading verified sources: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verified sources for %s on chain %d: HTTP %d", address, chainID, resp.StatusCode)
	}

	var result struct {
		Status string       `json:"status"`
		Files  []SourceFile `json:"files"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing verified sources response: %w", err)
	}
	return result.Files, nil
}

// contractMetadata is the subset of the compiler metadata file we read.
type contractMetadata struct {
	Output struct {
		ABI     json.RawMessage `json:"abi"`
		Devdoc  devDoc          `json:"devdoc"`
		Userdoc userDoc         `json:"userdoc"`
	} `json:"output"`
}

type devDoc struct {
	Methods map[string]devMethodDoc `json:"methods"`
}

type devMethodDoc struct {
	Details string            `json:"details"`
	Params  map[string]string `json:"params"`
}

type userDoc struct {
	Methods map[string]userMethodDoc `json:"methods"`
}

type userMethodDoc struct {
	Notice string `json:"notice"`
}

func findMetadata(files []SourceFile) (*contractMetadata, error) {
	for _, f := range files {
		if !strings.Contains(f.Name, "metadata.json") {
			continue
		}
		var md contractMetadata
		if err := json.Unmarshal([]byte(f.Content), &md); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		return &md, nil
	}
	return nil, ErrMetadataNotFound
}
