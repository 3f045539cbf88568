package decoders

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// DefaultMetaspaceReplacement is the rune SentencePiece-style tokenizers use
// in place of spaces: '▁' (U+2581, lower one eighth block).
const DefaultMetaspaceReplacement = '▁'

// PrependScheme says when the encode side prepends the replacement rune to
// the input. On the decode side it decides whether the first token's
// replacement runes stand for a real space or for that artificial prefix.
type PrependScheme string

const (
	// PrependAlways prepends the replacement to every encoded fragment.
	PrependAlways PrependScheme = "always"
	// PrependNever leaves encoded fragments untouched.
	PrependNever PrependScheme = "never"
	// PrependFirst prepends the replacement only to the first fragment.
	PrependFirst PrependScheme = "first"
)

func validPrependScheme(s PrependScheme) bool {
	return s == PrependAlways || s == PrependNever || s == PrependFirst
}

// Metaspace reverts SentencePiece-style space replacement: every replacement
// rune becomes a space, except in the first token where it is dropped unless
// the scheme is PrependNever.
//
// Older configurations carried an add_prefix_space boolean instead of
// prepend_scheme and had no split flag; both are migrated on load and never
// written back.
type Metaspace struct {
	Replacement   rune
	PrependScheme PrependScheme
	Split         bool
}

// NewMetaspace creates a Metaspace decoder. A zero replacement selects
// DefaultMetaspaceReplacement, an empty scheme selects PrependAlways.
func NewMetaspace(replacement rune, scheme PrependScheme, split bool) *Metaspace {
	if replacement == 0 {
		replacement = DefaultMetaspaceReplacement
	}
	if scheme == "" {
		scheme = PrependAlways
	}
	return &Metaspace{Replacement: replacement, PrependScheme: scheme, Split: split}
}

// DecodeChain turns replacement runes back into spaces.
func (d *Metaspace) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for i, token := range tokens {
		var sb strings.Builder
		sb.Grow(len(token))
		for _, r := range token {
			if r == d.Replacement {
				if i == 0 && d.PrependScheme != PrependNever {
					continue
				}
				sb.WriteRune(' ')
				continue
			}
			sb.WriteRune(r)
		}
		out = append(out, sb.String())
	}
	return out, nil
}

type metaspaceWire struct {
	Type          string `json:"type"`
	Replacement   string `json:"replacement"`
	PrependScheme string `json:"prepend_scheme"`
	Split         bool   `json:"split"`
}

func (d *Metaspace) wire() any {
	return metaspaceWire{
		Type:          "Metaspace",
		Replacement:   string(d.Replacement),
		PrependScheme: string(d.PrependScheme),
		Split:         d.Split,
	}
}

func unmarshalMetaspace(data []byte) (Decoder, error) {
	var s struct {
		Type          *string `json:"type"`
		Replacement   *string `json:"replacement"`
		PrependScheme *string `json:"prepend_scheme"`
		Split         *bool   `json:"split"`
		// Legacy, dropped on save.
		AddPrefixSpace *bool `json:"add_prefix_space"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "Metaspace") {
		return nil, errVariantMismatch
	}
	d := &Metaspace{
		Replacement:   DefaultMetaspaceReplacement,
		PrependScheme: PrependAlways,
		Split:         true,
	}
	if s.Replacement != nil {
		r, size := utf8.DecodeRuneInString(*s.Replacement)
		if r == utf8.RuneError || size != len(*s.Replacement) {
			// The replacement must be exactly one rune.
			return nil, errVariantMismatch
		}
		d.Replacement = r
	}
	switch {
	case s.PrependScheme != nil:
		d.PrependScheme = PrependScheme(*s.PrependScheme)
	case s.AddPrefixSpace != nil && !*s.AddPrefixSpace:
		d.PrependScheme = PrependNever
	}
	if !validPrependScheme(d.PrependScheme) {
		return nil, errVariantMismatch
	}
	if s.Split != nil {
		d.Split = *s.Split
	}
	return d, nil
}
