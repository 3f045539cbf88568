package decoders

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip deserializes canonical JSON and re-serializes it, asserting the
// bytes are unchanged.
func roundTrip(t *testing.T, canonical string) Wrapper {
	t.Helper()
	var w Wrapper
	require.NoError(t, json.Unmarshal([]byte(canonical), &w))
	got, err := w.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, canonical, string(got))
	return w
}

func TestRoundTripCanonical(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
	}{
		{"BPE", `{"type":"BPE","suffix":"</w>"}`},
		{"ByteLevel", `{"type":"ByteLevel","add_prefix_space":true,"trim_offsets":true,"use_regex":true}`},
		{"WordPiece", `{"type":"WordPiece","prefix":"##","cleanup":true}`},
		{"Metaspace", `{"type":"Metaspace","replacement":"▁","prepend_scheme":"always","split":true}`},
		{"CTC", `{"type":"CTC","pad_token":"<pad>","word_delimiter_token":"|","cleanup":true}`},
		{"Sequence empty", `{"type":"Sequence","decoders":[]}`},
		{"Replace string pattern", `{"type":"Replace","pattern":{"String":"▁"},"content":" "}`},
		{"Replace regex pattern", `{"type":"Replace","pattern":{"Regex":"\\s+"},"content":" "}`},
		{"Fuse", `{"type":"Fuse"}`},
		{"Strip", `{"type":"Strip","content":"▁","start":1,"stop":0}`},
		{"ByteFallback", `{"type":"ByteFallback"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := roundTrip(t, tt.canonical)
			assert.NotEmpty(t, w.Type())
		})
	}
}

func TestRoundTripNestedSequence(t *testing.T) {
	canonical := `{"type":"Sequence","decoders":[{"type":"ByteFallback"},{"type":"Metaspace","replacement":"▁","prepend_scheme":"always","split":true}]}`
	w := roundTrip(t, canonical)
	require.Equal(t, "Sequence", w.Type())
	seq := w.Unwrap().(*Sequence)
	require.Len(t, seq.Decoders(), 2)
	assert.Equal(t, "ByteFallback", seq.Decoders()[0].Type())
	assert.Equal(t, "Metaspace", seq.Decoders()[1].Type())

	// A Sequence may contain another Sequence to arbitrary depth.
	deep := `{"type":"Sequence","decoders":[{"type":"Sequence","decoders":[{"type":"Fuse"}]}]}`
	roundTrip(t, deep)
}

func TestLegacySchemaMigration(t *testing.T) {
	// Configurations written under older schemas must re-serialize to the
	// current canonical layout, not the legacy one.
	tests := []struct {
		name      string
		legacy    string
		canonical string
	}{
		{
			"Metaspace add_prefix_space inside Sequence",
			`{"type":"Sequence","decoders":[{"type":"ByteFallback"},{"type":"Metaspace","replacement":"▁","add_prefix_space":true,"prepend_scheme":"always"}]}`,
			`{"type":"Sequence","decoders":[{"type":"ByteFallback"},{"type":"Metaspace","replacement":"▁","prepend_scheme":"always","split":true}]}`,
		},
		{
			"Metaspace add_prefix_space false without scheme",
			`{"type":"Metaspace","replacement":"▁","add_prefix_space":false}`,
			`{"type":"Metaspace","replacement":"▁","prepend_scheme":"never","split":true}`,
		},
		{
			"Metaspace bare",
			`{"type":"Metaspace"}`,
			`{"type":"Metaspace","replacement":"▁","prepend_scheme":"always","split":true}`,
		},
		{
			"BPE without suffix",
			`{"type":"BPE"}`,
			`{"type":"BPE","suffix":"</w>"}`,
		},
		{
			"CTC bare",
			`{"type":"CTC"}`,
			`{"type":"CTC","pad_token":"<pad>","word_delimiter_token":"|","cleanup":true}`,
		},
		{
			"ByteLevel bare",
			`{"type":"ByteLevel"}`,
			`{"type":"ByteLevel","add_prefix_space":true,"trim_offsets":true,"use_regex":true}`,
		},
		{
			"WordPiece with unknown legacy field",
			`{"type":"WordPiece","prefix":"##","cleanup":false,"max_word_len":100}`,
			`{"type":"WordPiece","prefix":"##","cleanup":false}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Wrapper
			require.NoError(t, json.Unmarshal([]byte(tt.legacy), &w))
			got, err := w.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, string(got))
		})
	}
}

func TestNoVariantMatched(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty object inside Sequence", `{"type":"Sequence","decoders":[{},{"type":"Metaspace","replacement":"▁","prepend_scheme":"always"}]}`},
		{"missing discriminant", `{"replacement":"▁","prepend_scheme":"always"}`},
		{"Sequence without decoders", `{"type":"Sequence","prepend_scheme":"always"}`},
		{"unknown type", `{"type":"NotADecoder"}`},
		{"empty object", `{}`},
		{"unrelated fields only", `{"content":"x","start":1}`},
		{"Strip with missing fields", `{"type":"Strip","content":"▁"}`},
		{"Replace without pattern", `{"type":"Replace","content":" "}`},
		{"Replace with ambiguous pattern", `{"type":"Replace","pattern":{"String":"a","Regex":"a"},"content":" "}`},
		{"Replace with invalid regex", `{"type":"Replace","pattern":{"Regex":"("},"content":" "}`},
		{"Metaspace with bad scheme", `{"type":"Metaspace","prepend_scheme":"sometimes"}`},
		{"Metaspace with multi-rune replacement", `{"type":"Metaspace","replacement":"ab"}`},
		{"wrong field type", `{"type":"BPE","suffix":5}`},
		{"not an object", `5`},
		{"array", `[{"type":"Fuse"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Wrapper
			err := json.Unmarshal([]byte(tt.data), &w)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoVariantMatched), "got: %v", err)
			assert.EqualError(t, err, "data did not match any variant of the decoder configuration")
		})
	}
}

func TestNoArgVariantStrictness(t *testing.T) {
	// A no-parameter decoder still requires its discriminant...
	var w Wrapper
	err := json.Unmarshal([]byte(`{"unrelated":true}`), &w)
	require.ErrorIs(t, err, ErrNoVariantMatched)

	// ...but tolerates unknown extra fields once the discriminant matches.
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Fuse","unrelated":true}`), &w))
	assert.Equal(t, "Fuse", w.Type())
}

func TestDiscriminantIsAdvisory(t *testing.T) {
	// A "type" naming one variant whose schema is not satisfied must not
	// short-circuit matching with a variant-specific error: the fixed order
	// is exhausted and the generic error returned.
	var w Wrapper
	err := json.Unmarshal([]byte(`{"type":"Strip"}`), &w)
	require.ErrorIs(t, err, ErrNoVariantMatched)
}

func TestVariantOrderComplete(t *testing.T) {
	// variantOrder is populated in init (a static initializer would cycle
	// through unmarshalSequence); every variant must be registered.
	require.Len(t, variantOrder, 10)
	for i, unmarshal := range variantOrder {
		assert.NotNil(t, unmarshal, "variant %d", i)
	}
}

func TestMarshalZeroWrapper(t *testing.T) {
	var w Wrapper
	_, err := w.MarshalJSON()
	require.Error(t, err)
}

func TestUnmarshalDefaultsApplied(t *testing.T) {
	var w Wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Metaspace"}`), &w))
	ms := w.Unwrap().(*Metaspace)
	assert.Equal(t, DefaultMetaspaceReplacement, ms.Replacement)
	assert.Equal(t, PrependAlways, ms.PrependScheme)
	assert.True(t, ms.Split)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"WordPiece"}`), &w))
	wp := w.Unwrap().(*WordPiece)
	assert.Equal(t, "##", wp.Prefix)
	assert.True(t, wp.Cleanup)
}
