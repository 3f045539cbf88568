package decoders

import (
	"encoding/json"
	"unicode/utf8"
)

// Strip removes up to Start leading and up to Stop trailing copies of the
// Content rune from every token. Unlike most decoders all three fields are
// required on the wire.
type Strip struct {
	Content rune
	Start   int
	Stop    int
}

// NewStrip creates a Strip decoder.
func NewStrip(content rune, start, stop int) *Strip {
	return &Strip{Content: content, Start: start, Stop: stop}
}

// DecodeChain trims the configured rune from both ends of every token.
func (d *Strip) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		chars := []rune(token)
		cutStart := 0
		for i := 0; i < d.Start && i < len(chars); i++ {
			if chars[i] != d.Content {
				break
			}
			cutStart = i + 1
		}
		cutStop := len(chars)
		for i := 0; i < d.Stop; i++ {
			idx := len(chars) - i - 1
			if idx <= cutStart || chars[idx] != d.Content {
				break
			}
			cutStop = idx
		}
		out = append(out, string(chars[cutStart:cutStop]))
	}
	return out, nil
}

type stripWire struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Start   int    `json:"start"`
	Stop    int    `json:"stop"`
}

func (d *Strip) wire() any {
	return stripWire{Type: "Strip", Content: string(d.Content), Start: d.Start, Stop: d.Stop}
}

func unmarshalStrip(data []byte) (Decoder, error) {
	var s struct {
		Type    *string `json:"type"`
		Content *string `json:"content"`
		Start   *int    `json:"start"`
		Stop    *int    `json:"stop"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "Strip") || s.Content == nil || s.Start == nil || s.Stop == nil {
		return nil, errVariantMismatch
	}
	r, size := utf8.DecodeRuneInString(*s.Content)
	if r == utf8.RuneError || size != len(*s.Content) {
		// The content must be exactly one rune.
		return nil, errVariantMismatch
	}
	return &Strip{Content: r, Start: *s.Start, Stop: *s.Stop}, nil
}
