package decoders

import (
	"encoding/json"
	"strings"
)

// DefaultWordPiecePrefix marks tokens that continue the previous word in
// WordPiece vocabularies (BERT style).
const DefaultWordPiecePrefix = "##"

// WordPiece reverts WordPiece tokenization: continuation tokens lose their
// prefix and join the previous word, other tokens start a new word.
type WordPiece struct {
	Prefix  string
	Cleanup bool
}

// NewWordPiece creates a WordPiece decoder. An empty prefix selects
// DefaultWordPiecePrefix.
func NewWordPiece(prefix string, cleanup bool) *WordPiece {
	if prefix == "" {
		prefix = DefaultWordPiecePrefix
	}
	return &WordPiece{Prefix: prefix, Cleanup: cleanup}
}

// DecodeChain strips the continuation prefix (or prepends a word-separating
// space) from every token after the first, then optionally cleans up
// tokenization artifacts.
func (d *WordPiece) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if i != 0 {
			if strings.HasPrefix(token, d.Prefix) {
				token = strings.Replace(token, d.Prefix, "", 1)
			} else {
				token = " " + token
			}
		}
		if d.Cleanup {
			token = cleanupArtifacts(token)
		}
		out = append(out, token)
	}
	return out, nil
}

// cleanupArtifacts removes the spaces tokenization inserts before
// punctuation and English contractions. The replacements are applied in
// sequence, matching the reference behavior. Also used by the CTC decoder.
func cleanupArtifacts(s string) string {
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " ?", "?")
	s = strings.ReplaceAll(s, " !", "!")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, " ' ", "'")
	s = strings.ReplaceAll(s, " n't", "n't")
	s = strings.ReplaceAll(s, " 'm", "'m")
	s = strings.ReplaceAll(s, " 's", "'s")
	s = strings.ReplaceAll(s, " 've", "'ve")
	s = strings.ReplaceAll(s, " 're", "'re")
	return s
}

type wordPieceWire struct {
	Type    string `json:"type"`
	Prefix  string `json:"prefix"`
	Cleanup bool   `json:"cleanup"`
}

func (d *WordPiece) wire() any {
	return wordPieceWire{Type: "WordPiece", Prefix: d.Prefix, Cleanup: d.Cleanup}
}

func unmarshalWordPiece(data []byte) (Decoder, error) {
	var s struct {
		Type    *string `json:"type"`
		Prefix  *string `json:"prefix"`
		Cleanup *bool   `json:"cleanup"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "WordPiece") {
		return nil, errVariantMismatch
	}
	d := &WordPiece{Prefix: DefaultWordPiecePrefix, Cleanup: true}
	if s.Prefix != nil {
		d.Prefix = *s.Prefix
	}
	if s.Cleanup != nil {
		d.Cleanup = *s.Cleanup
	}
	return d, nil
}
