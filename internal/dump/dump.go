// Package dump renders decoded documents as JSON, YAML or CBOR for
// inspection and diffing.
//
// Every format starts from the document's JSON encoding, so custom
// MarshalJSON methods shape all three outputs the same way.
package dump

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	JSON = "json"
	YAML = "yaml"
	CBOR = "cbor"
)

var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dump: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode renders v in format.
func Encode(v any, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dump: encode json: %w", err)
	}
	switch format {
	case JSON:
		return append(data, '\n'), nil
	case YAML:
		return toYAML(data)
	case CBOR:
		return toCBOR(data)
	}
	return nil, fmt.Errorf("dump: unknown format %q", format)
}

// toYAML re-reads the JSON as a YAML node tree, which keeps key order, and
// emits it in block style.
func toYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dump: convert to yaml: %w", err)
	}
	blockStyle(&doc)
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("dump: encode yaml: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func toCBOR(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("dump: convert to cbor: %w", err)
	}
	out, err := cborMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("dump: encode cbor: %w", err)
	}
	return out, nil
}
