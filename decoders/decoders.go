// Package decoders implements the decoding side of a tokenizer pipeline:
// the strategies that turn a sequence of token strings (the output of a
// model's vocabulary lookup) back into human-readable text.
//
// The package follows the decoder section of HuggingFace's tokenizer.json
// format: each strategy has a JSON configuration object carrying a "type"
// discriminant, and strategies can be chained with the Sequence decoder,
// each step consuming the previous step's output. Wrapper is the union over
// all supported strategies and implements the (de)serialization contract,
// including acceptance of configurations written by older library versions.
package decoders

import (
	"strings"

	"github.com/pkg/errors"
)

// Decoder transforms a sequence of raw tokens into a sequence of readable
// string pieces. Implementations never mutate the input slice and hold no
// mutable state, so a single value can serve concurrent callers.
//
// An empty input always yields an empty output.
type Decoder interface {
	DecodeChain(tokens []string) ([]string, error)
}

// ErrNoVariantMatched is returned when a decoder configuration object
// satisfies none of the supported variants. It deliberately carries no
// detail about which variant came closest, so the message stays stable as
// schemas evolve.
var ErrNoVariantMatched = errors.New("data did not match any variant of the decoder configuration")

// Wrapper holds exactly one of the supported decoder types. It is the unit
// of configuration exchange: a tokenizer pipeline stores a Wrapper, not a
// concrete decoder, so the rest of the system never needs to know which
// strategy is in use.
//
// A Wrapper is built either by one of the Wrap constructors or by
// deserializing JSON, and is immutable afterwards. The zero value holds no
// decoder and fails DecodeChain.
type Wrapper struct {
	decoder Decoder
}

// Compile time assert that Wrapper itself is a Decoder.
var _ Decoder = Wrapper{}

// DecodeChain forwards to the held decoder, with no pre- or post-processing.
func (w Wrapper) DecodeChain(tokens []string) ([]string, error) {
	switch d := w.decoder.(type) {
	case *BPEDecoder:
		return d.DecodeChain(tokens)
	case *ByteLevel:
		return d.DecodeChain(tokens)
	case *WordPiece:
		return d.DecodeChain(tokens)
	case *Metaspace:
		return d.DecodeChain(tokens)
	case *CTC:
		return d.DecodeChain(tokens)
	case *Sequence:
		return d.DecodeChain(tokens)
	case *Replace:
		return d.DecodeChain(tokens)
	case *Fuse:
		return d.DecodeChain(tokens)
	case *Strip:
		return d.DecodeChain(tokens)
	case *ByteFallback:
		return d.DecodeChain(tokens)
	case nil:
		return nil, errors.New("decoder wrapper holds no decoder")
	default:
		return nil, errors.Errorf("decoder wrapper holds unsupported type %T", w.decoder)
	}
}

// Decode runs the full chain and concatenates the resulting pieces into the
// final text.
func (w Wrapper) Decode(tokens []string) (string, error) {
	pieces, err := w.DecodeChain(tokens)
	if err != nil {
		return "", err
	}
	return strings.Join(pieces, ""), nil
}

// Type returns the wire discriminant of the held decoder ("BPE",
// "ByteLevel", ...), or "" for the zero value.
func (w Wrapper) Type() string {
	switch w.decoder.(type) {
	case *BPEDecoder:
		return "BPE"
	case *ByteLevel:
		return "ByteLevel"
	case *WordPiece:
		return "WordPiece"
	case *Metaspace:
		return "Metaspace"
	case *CTC:
		return "CTC"
	case *Sequence:
		return "Sequence"
	case *Replace:
		return "Replace"
	case *Fuse:
		return "Fuse"
	case *Strip:
		return "Strip"
	case *ByteFallback:
		return "ByteFallback"
	default:
		return ""
	}
}

// Unwrap returns the held concrete decoder, or nil for the zero value.
func (w Wrapper) Unwrap() Decoder {
	return w.decoder
}

// The Wrap constructors lift a concrete decoder into a Wrapper. They never
// fail: all fallibility lives in deserialization. They exist so pipeline
// building code can accept any strategy and store it uniformly.

// WrapBPE lifts a BPEDecoder into a Wrapper.
func WrapBPE(d *BPEDecoder) Wrapper { return Wrapper{d} }

// WrapByteLevel lifts a ByteLevel into a Wrapper.
func WrapByteLevel(d *ByteLevel) Wrapper { return Wrapper{d} }

// WrapWordPiece lifts a WordPiece into a Wrapper.
func WrapWordPiece(d *WordPiece) Wrapper { return Wrapper{d} }

// WrapMetaspace lifts a Metaspace into a Wrapper.
func WrapMetaspace(d *Metaspace) Wrapper { return Wrapper{d} }

// WrapCTC lifts a CTC into a Wrapper.
func WrapCTC(d *CTC) Wrapper { return Wrapper{d} }

// WrapSequence lifts a Sequence into a Wrapper.
func WrapSequence(d *Sequence) Wrapper { return Wrapper{d} }

// WrapReplace lifts a Replace into a Wrapper.
func WrapReplace(d *Replace) Wrapper { return Wrapper{d} }

// WrapFuse lifts a Fuse into a Wrapper.
func WrapFuse(d *Fuse) Wrapper { return Wrapper{d} }

// WrapStrip lifts a Strip into a Wrapper.
func WrapStrip(d *Strip) Wrapper { return Wrapper{d} }

// WrapByteFallback lifts a ByteFallback into a Wrapper.
func WrapByteFallback(d *ByteFallback) Wrapper { return Wrapper{d} }
