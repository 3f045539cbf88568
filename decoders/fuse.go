package decoders

import (
	"encoding/json"
	"strings"
)

// Fuse concatenates all tokens into a single one. It takes no parameters.
type Fuse struct{}

// NewFuse creates a Fuse decoder.
func NewFuse() *Fuse {
	return &Fuse{}
}

// DecodeChain returns the concatenation of all tokens as a one-element
// sequence. An empty input stays empty.
func (d *Fuse) DecodeChain(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return tokens, nil
	}
	return []string{strings.Join(tokens, "")}, nil
}

type fuseWire struct {
	Type string `json:"type"`
}

func (d *Fuse) wire() any {
	return fuseWire{Type: "Fuse"}
}

func unmarshalFuse(data []byte) (Decoder, error) {
	var s struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "Fuse") {
		return nil, errVariantMismatch
	}
	return &Fuse{}, nil
}
