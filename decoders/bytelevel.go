package decoders

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ByteLevel reverts the GPT-2 byte-to-unicode remapping: every rune of every
// token is mapped back to the byte it stands for and the result is returned
// as one merged string.
//
// AddPrefixSpace, TrimOffsets and UseRegex mirror the encode-side options of
// the same component in tokenizer.json files; they do not affect decoding
// but are kept so configurations round-trip unchanged.
type ByteLevel struct {
	AddPrefixSpace bool
	TrimOffsets    bool
	UseRegex       bool
}

// NewByteLevel creates a ByteLevel decoder with all options enabled, the
// defaults of the wire format.
func NewByteLevel() *ByteLevel {
	return &ByteLevel{AddPrefixSpace: true, TrimOffsets: true, UseRegex: true}
}

// GPT-2 maps every byte to a printable rune: printable ASCII and two Latin-1
// ranges stay themselves, everything else shifts into U+0100 and up (so a
// space becomes 'Ġ'). The tables below invert that mapping.
var (
	byteToRune [256]rune
	runeToByte map[rune]byte
)

func init() {
	runeToByte = make(map[rune]byte, 256)
	shifted := 0
	for b := 0; b < 256; b++ {
		r := rune(b)
		printable := (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
		if !printable {
			r = rune(256 + shifted)
			shifted++
		}
		byteToRune[b] = r
		runeToByte[r] = byte(b)
	}
}

// DecodeChain maps all tokens back to bytes and returns the single resulting
// string. Runes outside the mapping pass through as their UTF-8 bytes;
// invalid byte runs are replaced with U+FFFD.
func (d *ByteLevel) DecodeChain(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return tokens, nil
	}
	raw := make([]byte, 0, 16*len(tokens))
	for _, token := range tokens {
		for _, r := range token {
			if b, ok := runeToByte[r]; ok {
				raw = append(raw, b)
			} else {
				raw = utf8.AppendRune(raw, r)
			}
		}
	}
	return []string{strings.ToValidUTF8(string(raw), "�")}, nil
}

type byteLevelWire struct {
	Type           string `json:"type"`
	AddPrefixSpace bool   `json:"add_prefix_space"`
	TrimOffsets    bool   `json:"trim_offsets"`
	UseRegex       bool   `json:"use_regex"`
}

func (d *ByteLevel) wire() any {
	return byteLevelWire{
		Type:           "ByteLevel",
		AddPrefixSpace: d.AddPrefixSpace,
		TrimOffsets:    d.TrimOffsets,
		UseRegex:       d.UseRegex,
	}
}

func unmarshalByteLevel(data []byte) (Decoder, error) {
	var s struct {
		Type           *string `json:"type"`
		AddPrefixSpace *bool   `json:"add_prefix_space"`
		TrimOffsets    *bool   `json:"trim_offsets"`
		UseRegex       *bool   `json:"use_regex"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "ByteLevel") {
		return nil, errVariantMismatch
	}
	d := NewByteLevel()
	if s.AddPrefixSpace != nil {
		d.AddPrefixSpace = *s.AddPrefixSpace
	}
	if s.TrimOffsets != nil {
		d.TrimOffsets = *s.TrimOffsets
	}
	if s.UseRegex != nil {
		d.UseRegex = *s.UseRegex
	}
	return d, nil
}
