// Package hftokenizer reads HuggingFace's tokenizer.json format (the "fast"
// tokenizers) and converts model output ids back into text.
//
// Only the decode side of the pipeline is implemented: the vocabulary maps
// ids to token strings, and the file's decoder section — parsed into a
// decoders.Wrapper — turns those tokens into readable text. Encoding,
// normalization and pre-tokenization are separate pipeline stages and out of
// scope for this package.
package hftokenizer

import (
	"encoding/json"
	"os"

	"github.com/gomlx/go-tokenizers/decoders"
	"github.com/gomlx/go-tokenizers/hub"
	"github.com/gomlx/go-tokenizers/tokenizers/api"
	"github.com/pkg/errors"
)

// TokenizerJSON represents the parts of HuggingFace's tokenizer.json file
// needed for decoding. Encode-side sections (normalizer, pre_tokenizer,
// post_processor, merges) are ignored.
type TokenizerJSON struct {
	Version     string          `json:"version"`
	AddedTokens []AddedToken    `json:"added_tokens"`
	Decoder     json.RawMessage `json:"decoder"`
	Model       Model           `json:"model"`
}

// AddedToken represents a special token added to the vocabulary.
type AddedToken struct {
	ID         int    `json:"id"`
	Content    string `json:"content"`
	SingleWord bool   `json:"single_word"`
	Lstrip     bool   `json:"lstrip"`
	Rstrip     bool   `json:"rstrip"`
	Normalized bool   `json:"normalized"`
	Special    bool   `json:"special"`
}

// Model represents the tokenizer model section. Only the vocabulary and the
// decode-relevant markers are read.
type Model struct {
	Type                    string         `json:"type"`
	Vocab                   map[string]int `json:"vocab"`
	UnkToken                string         `json:"unk_token"`
	ContinuingSubwordPrefix string         `json:"continuing_subword_prefix"`
	EndOfWordSuffix         string         `json:"end_of_word_suffix"`
}

// Tokenizer decodes token ids produced under a tokenizer.json vocabulary.
type Tokenizer struct {
	model     Model
	decoder   decoders.Wrapper
	idToToken map[int]string
	special   map[int]bool

	// Added tokens lookup (content -> id).
	addedTokens map[string]int
}

// Compile time assert that Tokenizer implements the api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// New creates a tokenizer from the "tokenizer.json" file of a hub
// repository, downloading it if needed.
func New(repo *hub.Repo) (*Tokenizer, error) {
	if !repo.HasFile("tokenizer.json") {
		return nil, errors.Errorf("\"tokenizer.json\" file not found in repo %q", repo.ID)
	}
	tokenizerFile, err := repo.DownloadFile("tokenizer.json")
	if err != nil {
		return nil, errors.WithMessagef(err, "can't download tokenizer.json file")
	}
	return NewFromFile(tokenizerFile)
}

// NewFromFile creates a tokenizer from a local tokenizer.json file path.
func NewFromFile(filePath string) (*Tokenizer, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
	}
	return NewFromContent(content)
}

// NewFromContent creates a tokenizer from tokenizer.json content. Decoder
// configuration errors are reported here, before any decoding is attempted.
func NewFromContent(content []byte) (*Tokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}

	t := &Tokenizer{
		model:       tj.Model,
		idToToken:   make(map[int]string, len(tj.Model.Vocab)+len(tj.AddedTokens)),
		special:     make(map[int]bool),
		addedTokens: make(map[string]int, len(tj.AddedTokens)),
	}
	for token, id := range tj.Model.Vocab {
		t.idToToken[id] = token
	}
	for _, at := range tj.AddedTokens {
		t.idToToken[at.ID] = at.Content
		t.addedTokens[at.Content] = at.ID
		if at.Special {
			t.special[at.ID] = true
		}
	}

	decoder, err := resolveDecoder(tj)
	if err != nil {
		return nil, err
	}
	t.decoder = decoder
	return t, nil
}

// resolveDecoder parses the decoder section, or builds the implied default
// when the file has none: WordPiece-marker stripping using the model's
// continuing_subword_prefix.
func resolveDecoder(tj TokenizerJSON) (decoders.Wrapper, error) {
	raw := tj.Decoder
	if len(raw) == 0 || string(raw) == "null" {
		return decoders.WrapWordPiece(decoders.NewWordPiece(tj.Model.ContinuingSubwordPrefix, true)), nil
	}
	var w decoders.Wrapper
	if err := json.Unmarshal(raw, &w); err != nil {
		return decoders.Wrapper{}, errors.WithMessagef(err, "parsing the decoder section of tokenizer.json")
	}
	return w, nil
}

// Decoder returns the decoding pipeline of this tokenizer.
func (t *Tokenizer) Decoder() decoders.Wrapper {
	return t.decoder
}

// Decode converts a sequence of token ids back to text. Ids not in the
// vocabulary are skipped; with skipSpecialTokens, ids of special added
// tokens are skipped too.
func (t *Tokenizer) Decode(ids []int, skipSpecialTokens bool) (string, error) {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		token, ok := t.idToToken[id]
		if !ok {
			continue
		}
		if skipSpecialTokens && t.special[id] {
			continue
		}
		tokens = append(tokens, token)
	}
	return t.DecodeTokens(tokens)
}

// DecodeTokens runs the decoding pipeline over already-resolved token
// strings.
func (t *Tokenizer) DecodeTokens(tokens []string) (string, error) {
	return t.decoder.Decode(tokens)
}

// IDToToken converts a token id to its string.
func (t *Tokenizer) IDToToken(id int) (string, bool) {
	token, ok := t.idToToken[id]
	return token, ok
}

// TokenToID converts a token string to its id.
func (t *Tokenizer) TokenToID(token string) (int, bool) {
	if id, ok := t.addedTokens[token]; ok {
		return id, true
	}
	id, ok := t.model.Vocab[token]
	return id, ok
}

// VocabSize returns the size of the vocabulary, added tokens included.
func (t *Tokenizer) VocabSize() int {
	return len(t.idToToken)
}

// ModelType returns the model section's type ("BPE", "WordPiece", ...).
func (t *Tokenizer) ModelType() string {
	return t.model.Type
}
