// Package api defines the Tokenizer API shared by the implementations.
// It's a separate package to break the cyclic dependency, and allow the
// users to import `tokenizers` and get the default implementations.
package api

// Tokenizer converts token ids (model output) back to text. Implementations
// are immutable once built, so one value can serve concurrent callers.
//
// Decoding configuration errors surface when the tokenizer is built, not
// here: a constructed Tokenizer only fails Decode when one of its decoding
// steps does.
type Tokenizer interface {
	// Decode converts a sequence of token ids back into text.
	// With skipSpecialTokens, ids of special tokens (padding, BOS/EOS, ...)
	// are left out of the result.
	Decode(ids []int, skipSpecialTokens bool) (string, error)

	// IDToToken converts a token id to its string, reporting whether the id
	// is part of the vocabulary.
	IDToToken(id int) (string, bool)

	// VocabSize returns the size of the vocabulary, added tokens included.
	VocabSize() int
}
