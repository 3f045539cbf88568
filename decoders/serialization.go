package decoders

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// errVariantMismatch is the internal signal that a configuration object does
// not satisfy one particular variant's schema. It never escapes the package:
// after every variant rejects the object, UnmarshalJSON reports
// ErrNoVariantMatched instead.
var errVariantMismatch = errors.New("configuration does not satisfy this variant")

// variantOrder lists the per-variant unmarshalers in the fixed declaration
// order of the union. Matching tries every entry in turn, even when the
// object carries a "type" field: legacy documents may name one variant while
// structurally satisfying another, so the discriminant only participates in
// each variant's own check and never short-circuits the match order.
//
// Populated in init: unmarshalSequence recurses through UnmarshalJSON, so a
// static initializer would form an initialization cycle.
var variantOrder []func(data []byte) (Decoder, error)

func init() {
	variantOrder = []func(data []byte) (Decoder, error){
		unmarshalBPE,
		unmarshalByteLevel,
		unmarshalWordPiece,
		unmarshalMetaspace,
		unmarshalCTC,
		unmarshalSequence,
		unmarshalReplace,
		unmarshalFuse,
		unmarshalStrip,
		unmarshalByteFallback,
	}
}

// UnmarshalJSON selects the first variant (in fixed order) whose schema the
// object satisfies: discriminant present and correctly named, required
// fields present with the right types. Unknown or legacy fields are
// tolerated; fields absent from older configurations get their current
// defaults. If no variant matches, the error is ErrNoVariantMatched, with no
// partial-match diagnostics.
func (w *Wrapper) UnmarshalJSON(data []byte) error {
	for _, unmarshal := range variantOrder {
		d, err := unmarshal(data)
		if err != nil {
			continue
		}
		w.decoder = d
		return nil
	}
	return ErrNoVariantMatched
}

// MarshalJSON emits the canonical, current-version schema of the held
// decoder: fixed field order, legacy fields never re-emitted, and no HTML
// escaping so configurations like a "<pad>" token round-trip byte for byte.
func (w Wrapper) MarshalJSON() ([]byte, error) {
	type wirer interface{ wire() any }
	d, ok := w.decoder.(wirer)
	if !ok {
		return nil, errors.New("cannot serialize a decoder wrapper holding no decoder")
	}
	return marshalNoEscape(d.wire())
}

// marshalNoEscape is json.Marshal without the default HTML escaping of
// "<", ">" and "&".
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encode appends a newline after every value.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// typeIs reports whether the discriminant is present and names the given
// variant. Every variant requires its discriminant: an otherwise empty
// object must not spuriously match a no-parameter decoder.
func typeIs(typ *string, name string) bool {
	return typ != nil && *typ == name
}
