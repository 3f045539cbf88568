package decoders

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapperDispatch(t *testing.T) {
	replace, err := NewReplace(StringPattern("▁"), " ")
	require.NoError(t, err)

	wrappers := []Wrapper{
		WrapBPE(NewBPEDecoder("")),
		WrapByteLevel(NewByteLevel()),
		WrapWordPiece(NewWordPiece("", true)),
		WrapMetaspace(NewMetaspace(0, "", true)),
		WrapCTC(NewCTC("", "", true)),
		WrapSequence(NewSequence()),
		WrapReplace(replace),
		WrapFuse(NewFuse()),
		WrapStrip(NewStrip('▁', 1, 0)),
		WrapByteFallback(NewByteFallback()),
	}
	wantTypes := []string{
		"BPE", "ByteLevel", "WordPiece", "Metaspace", "CTC",
		"Sequence", "Replace", "Fuse", "Strip", "ByteFallback",
	}
	for i, w := range wrappers {
		assert.Equal(t, wantTypes[i], w.Type())
		// Dispatch itself never fails, and empty input stays empty.
		got, err := w.DecodeChain(nil)
		require.NoError(t, err, "type %s", w.Type())
		assert.Empty(t, got, "type %s", w.Type())
	}
}

func TestWrapperZeroValue(t *testing.T) {
	var w Wrapper
	_, err := w.DecodeChain([]string{"a"})
	require.Error(t, err)
	assert.Equal(t, "", w.Type())
	assert.Nil(t, w.Unwrap())
}

func TestWrapperDecodeConcatenates(t *testing.T) {
	w := WrapWordPiece(NewWordPiece("##", true))
	text, err := w.Decode([]string{"hel", "##lo", "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestSequenceAppliesInOrder(t *testing.T) {
	replace, err := NewReplace(StringPattern("▁"), " ")
	require.NoError(t, err)
	seq := NewSequence(
		WrapReplace(replace),
		WrapByteFallback(NewByteFallback()),
		WrapFuse(NewFuse()),
	)
	got, err := seq.DecodeChain([]string{"▁Hello", "▁there", "<0x21>"})
	require.NoError(t, err)
	assert.Equal(t, []string{" Hello there!"}, got)
}

func TestSequenceOrderMatters(t *testing.T) {
	// Strip-then-fuse removes the leading marker of every token; fuse-then-
	// strip only sees one token, so interior markers survive. Reordering a
	// chain of non-commutative steps must change the output.
	strip := NewStrip('▁', 1, 0)
	fuse := NewFuse()
	input := []string{"▁a", "▁b"}

	stripFirst := NewSequence(WrapStrip(strip), WrapFuse(fuse))
	got1, err := stripFirst.DecodeChain(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab"}, got1)

	fuseFirst := NewSequence(WrapFuse(fuse), WrapStrip(strip))
	got2, err := fuseFirst.DecodeChain(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"a▁b"}, got2)

	assert.NotEqual(t, got1, got2)
}

func TestSequenceEmptyIsIdentity(t *testing.T) {
	seq := NewSequence()
	input := []string{"a", "b"}
	got, err := seq.DecodeChain(input)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestDecodeChainDoesNotMutateInput(t *testing.T) {
	input := []string{"▁Hey", "▁you"}
	w := WrapMetaspace(NewMetaspace(0, "", true))
	_, err := w.DecodeChain(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"▁Hey", "▁you"}, input)
}

func TestConcurrentDecodeChain(t *testing.T) {
	// A constructed Wrapper is immutable, so one value may serve many
	// goroutines without coordination.
	replace, err := NewReplace(StringPattern("▁"), " ")
	require.NoError(t, err)
	w := WrapSequence(NewSequence(
		WrapReplace(replace),
		WrapByteFallback(NewByteFallback()),
		WrapFuse(NewFuse()),
	))
	input := []string{"▁Hello", "▁there", "<0x21>"}

	const goroutines = 16
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				got, err := w.DecodeChain(input)
				assert.NoError(t, err)
				assert.Equal(t, []string{" Hello there!"}, got)
			}
		}()
	}
	wg.Wait()
}

func TestConstructedEqualsDeserialized(t *testing.T) {
	// Lifting a programmatically built pipeline must serialize to the same
	// canonical form a configuration file would.
	replace, err := NewReplace(StringPattern("▁"), " ")
	require.NoError(t, err)
	w := WrapSequence(NewSequence(
		WrapReplace(replace),
		WrapByteFallback(NewByteFallback()),
		WrapFuse(NewFuse()),
		WrapStrip(NewStrip(' ', 1, 0)),
	))
	data, err := w.MarshalJSON()
	require.NoError(t, err)

	var back Wrapper
	require.NoError(t, json.Unmarshal(data, &back))
	again, err := back.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
