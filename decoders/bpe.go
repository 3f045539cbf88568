package decoders

import (
	"encoding/json"
	"strings"
)

// DefaultBPESuffix is the end-of-word marker BPE vocabularies append to the
// last sub-word of every word.
const DefaultBPESuffix = "</w>"

// BPEDecoder reverts classic (non byte-level) BPE tokenization: the
// end-of-word suffix becomes a space between words and is dropped from the
// last token.
type BPEDecoder struct {
	Suffix string
}

// NewBPEDecoder creates a BPEDecoder. An empty suffix selects
// DefaultBPESuffix.
func NewBPEDecoder(suffix string) *BPEDecoder {
	if suffix == "" {
		suffix = DefaultBPESuffix
	}
	return &BPEDecoder{Suffix: suffix}
}

// DecodeChain replaces the suffix with a space in every token but the last,
// where it is removed instead.
func (d *BPEDecoder) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	last := len(tokens) - 1
	for i, token := range tokens {
		replacement := " "
		if i == last {
			replacement = ""
		}
		out = append(out, strings.ReplaceAll(token, d.Suffix, replacement))
	}
	return out, nil
}

type bpeWire struct {
	Type   string `json:"type"`
	Suffix string `json:"suffix"`
}

func (d *BPEDecoder) wire() any {
	return bpeWire{Type: "BPE", Suffix: d.Suffix}
}

func unmarshalBPE(data []byte) (Decoder, error) {
	var s struct {
		Type   *string `json:"type"`
		Suffix *string `json:"suffix"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "BPE") {
		return nil, errVariantMismatch
	}
	suffix := DefaultBPESuffix
	if s.Suffix != nil {
		suffix = *s.Suffix
	}
	return &BPEDecoder{Suffix: suffix}, nil
}
