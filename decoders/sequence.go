package decoders

import (
	"encoding/json"
	"slices"
)

// Sequence chains decoders: each step's output feeds the next step's input,
// in declaration order. A Sequence may contain another Sequence to arbitrary
// depth; an empty Sequence is the identity.
type Sequence struct {
	decoders []Wrapper
}

// NewSequence creates a Sequence over a copy of the given decoders.
func NewSequence(decoders ...Wrapper) *Sequence {
	return &Sequence{decoders: slices.Clone(decoders)}
}

// Decoders returns the chained decoders in application order. The returned
// slice is owned by the Sequence and must not be modified.
func (d *Sequence) Decoders() []Wrapper {
	return d.decoders
}

// DecodeChain pipes the tokens through every contained decoder in order. If
// any step fails, the whole call fails with that step's error and no partial
// output.
func (d *Sequence) DecodeChain(tokens []string) ([]string, error) {
	var err error
	for _, w := range d.decoders {
		tokens, err = w.DecodeChain(tokens)
		if err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

type sequenceWire struct {
	Type     string    `json:"type"`
	Decoders []Wrapper `json:"decoders"`
}

func (d *Sequence) wire() any {
	decoders := d.decoders
	if decoders == nil {
		decoders = []Wrapper{}
	}
	return sequenceWire{Type: "Sequence", Decoders: decoders}
}

func unmarshalSequence(data []byte) (Decoder, error) {
	var s struct {
		Type     *string            `json:"type"`
		Decoders *[]json.RawMessage `json:"decoders"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "Sequence") || s.Decoders == nil {
		return nil, errVariantMismatch
	}
	decoders := make([]Wrapper, 0, len(*s.Decoders))
	for _, raw := range *s.Decoders {
		var w Wrapper
		if err := w.UnmarshalJSON(raw); err != nil {
			// A nested mismatch fails the Sequence variant as a whole.
			return nil, err
		}
		decoders = append(decoders, w)
	}
	return &Sequence{decoders: decoders}, nil
}
