package decoders

import (
	"encoding/json"
	"strings"
)

// Defaults of the CTC wire schema.
const (
	DefaultCTCPadToken           = "<pad>"
	DefaultCTCWordDelimiterToken = "|"
)

// CTC collapses the output of a connectionist-temporal-classification head:
// consecutive duplicate tokens are merged, pad tokens dropped, and the word
// delimiter turned back into a space.
type CTC struct {
	PadToken           string
	WordDelimiterToken string
	Cleanup            bool
}

// NewCTC creates a CTC decoder. Empty tokens select the schema defaults.
func NewCTC(padToken, wordDelimiterToken string, cleanup bool) *CTC {
	if padToken == "" {
		padToken = DefaultCTCPadToken
	}
	if wordDelimiterToken == "" {
		wordDelimiterToken = DefaultCTCWordDelimiterToken
	}
	return &CTC{PadToken: padToken, WordDelimiterToken: wordDelimiterToken, Cleanup: cleanup}
}

// DecodeChain collapses repeats and removes CTC artifacts. Tokens that end
// up empty are dropped.
func (d *CTC) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if i > 0 && token == tokens[i-1] {
			continue
		}
		replaced := strings.ReplaceAll(token, d.PadToken, "")
		if d.Cleanup {
			replaced = strings.ReplaceAll(cleanupArtifacts(replaced), d.WordDelimiterToken, " ")
		}
		if replaced != "" {
			out = append(out, replaced)
		}
	}
	return out, nil
}

type ctcWire struct {
	Type               string `json:"type"`
	PadToken           string `json:"pad_token"`
	WordDelimiterToken string `json:"word_delimiter_token"`
	Cleanup            bool   `json:"cleanup"`
}

func (d *CTC) wire() any {
	return ctcWire{
		Type:               "CTC",
		PadToken:           d.PadToken,
		WordDelimiterToken: d.WordDelimiterToken,
		Cleanup:            d.Cleanup,
	}
}

func unmarshalCTC(data []byte) (Decoder, error) {
	var s struct {
		Type               *string `json:"type"`
		PadToken           *string `json:"pad_token"`
		WordDelimiterToken *string `json:"word_delimiter_token"`
		Cleanup            *bool   `json:"cleanup"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "CTC") {
		return nil, errVariantMismatch
	}
	d := &CTC{
		PadToken:           DefaultCTCPadToken,
		WordDelimiterToken: DefaultCTCWordDelimiterToken,
		Cleanup:            true,
	}
	if s.PadToken != nil {
		d.PadToken = *s.PadToken
	}
	if s.WordDelimiterToken != nil {
		d.WordDelimiterToken = *s.WordDelimiterToken
	}
	if s.Cleanup != nil {
		d.Cleanup = *s.Cleanup
	}
	return d, nil
}
