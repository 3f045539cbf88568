package decoders

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ByteFallback reassembles tokens of the form "<0xHH>", which byte-fallback
// vocabularies emit for byte sequences outside the vocabulary. Consecutive
// byte tokens are accumulated and decoded together as UTF-8; a run that is
// not valid UTF-8 becomes one replacement character per byte. It takes no
// parameters.
type ByteFallback struct{}

// NewByteFallback creates a ByteFallback decoder.
func NewByteFallback() *ByteFallback {
	return &ByteFallback{}
}

// DecodeChain decodes runs of byte tokens and passes everything else
// through.
func (d *ByteFallback) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	var pending []byte
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if utf8.Valid(pending) {
			out = append(out, string(pending))
		} else {
			for range pending {
				out = append(out, "�")
			}
		}
		pending = pending[:0]
	}
	for _, token := range tokens {
		if b, ok := parseByteToken(token); ok {
			pending = append(pending, b)
			continue
		}
		flush()
		out = append(out, token)
	}
	flush()
	return out, nil
}

// parseByteToken recognizes "<0xHH>" with exactly two hex digits.
func parseByteToken(token string) (byte, bool) {
	if len(token) != 6 || !strings.HasPrefix(token, "<0x") || token[5] != '>' {
		return 0, false
	}
	v, err := strconv.ParseUint(token[3:5], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

type byteFallbackWire struct {
	Type string `json:"type"`
}

func (d *ByteFallback) wire() any {
	return byteFallbackWire{Type: "ByteFallback"}
}

func unmarshalByteFallback(data []byte) (Decoder, error) {
	var s struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "ByteFallback") {
		return nil, errVariantMismatch
	}
	return &ByteFallback{}, nil
}
