package decoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// VerifiedSourceDecoder decodes calls against the ABI and NatSpec of a
// verified contract.
type VerifiedSourceDecoder struct {
	sources *SourceClient
}

// NewVerifiedSourceDecoder creates a decoder backed by sources.
func NewVerifiedSourceDecoder(sources *SourceClient) *VerifiedSourceDecoder {
	return &VerifiedSourceDecoder{sources: sources}
}

// Decode returns nil, nil when no ABI function matches the selector. Fetch
// and metadata failures are returned as errors.
func (d *VerifiedSourceDecoder) Decode(ctx context.Context, data []byte, address string, chainID uint64) (*DecodedMethod, error) {
	if len(data) < 4 {
		return nil, ErrInvalidCalldata
	}

	files, err := d.sources.Files(ctx, chainID, address)
	if err != nil {
		return nil, err
	}
	md, err := findMetadata(files)
	if err != nil {
		return nil, err
	}
	if len(md.Output.ABI) == 0 {
		return nil, fmt.Errorf("metadata for %s has no ABI", address)
	}
	rawABI, err := nameAnonymousComponents(md.Output.ABI)
	if err != nil {
		return nil, fmt.Errorf("reading verified ABI of %s: %w", address, err)
	}
	contractABI, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("parsing verified ABI of %s: %w", address, err)
	}

	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil //nolint:nilerr // selector not in this ABI
	}
	values, err := method.Inputs.UnpackValues(data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpacking %s arguments: %w", method.RawName, err)
	}

	signature := canonicalSignature(method.RawName, method.Inputs)
	dev := md.Output.Devdoc.Methods[signature]
	user := md.Output.Userdoc.Methods[signature]

	description := user.Notice
	if description == "" {
		description = dev.Details
	}

	b := paramBuilder{componentNames: true}
	params := make([]DecodedParam, len(method.Inputs))
	for i, input := range method.Inputs {
		params[i] = b.build(input.Name, &method.Inputs[i].Type, values[i])
		params[i].Description = dev.Params[input.Name]
	}

	return &DecodedMethod{
		Name:        method.RawName,
		Description: description,
		Params:      params,
	}, nil
}

// nameAnonymousComponents gives unnamed tuple components a placeholder name
// so that one such function does not make the whole ABI unparseable.
// Top-level arguments may stay unnamed.
func nameAnonymousComponents(raw json.RawMessage) (json.RawMessage, error) {
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		for _, key := range []string{"inputs", "outputs"} {
			if args, ok := entry[key].([]any); ok {
				nameComponents(args, false)
			}
		}
	}
	return json.Marshal(entries)
}

func nameComponents(args []any, nested bool) {
	for i, a := range args {
		arg, ok := a.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := arg["name"].(string); nested && strings.Trim(name, "_") == "" {
			arg["name"] = placeholderField(i)
		}
		if components, ok := arg["components"].([]any); ok {
			nameComponents(components, true)
		}
	}
}
