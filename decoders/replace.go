package decoders

import (
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
)

// Pattern selects what a Replace decoder matches: a literal string or a
// regular expression. Exactly one of the two is set. On the wire it is a
// one-key object, {"String":...} or {"Regex":...}.
type Pattern struct {
	String string `json:"String,omitempty"`
	Regex  string `json:"Regex,omitempty"`
}

// StringPattern matches every occurrence of the literal s.
func StringPattern(s string) Pattern {
	return Pattern{String: s}
}

// RegexPattern matches every occurrence of the expression (RE2 syntax).
func RegexPattern(expr string) Pattern {
	return Pattern{Regex: expr}
}

func (p Pattern) compile() (*regexp.Regexp, error) {
	switch {
	case p.String != "" && p.Regex == "":
		return regexp.Compile(regexp.QuoteMeta(p.String))
	case p.Regex != "" && p.String == "":
		return regexp.Compile(p.Regex)
	default:
		return nil, errors.New("pattern must set exactly one of String or Regex")
	}
}

// Replace substitutes every match of a pattern with a fixed content string,
// token by token.
type Replace struct {
	pattern Pattern
	content string
	re      *regexp.Regexp
}

// NewReplace creates a Replace decoder. It fails when the pattern is empty,
// ambiguous, or an invalid regular expression.
func NewReplace(pattern Pattern, content string) (*Replace, error) {
	re, err := pattern.compile()
	if err != nil {
		return nil, errors.WithMessage(err, "building Replace decoder")
	}
	return &Replace{pattern: pattern, content: content, re: re}, nil
}

// Pattern returns the configured pattern.
func (d *Replace) Pattern() Pattern { return d.pattern }

// Content returns the replacement string.
func (d *Replace) Content() string { return d.content }

// DecodeChain replaces every pattern match in every token with the content,
// taken literally.
func (d *Replace) DecodeChain(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, d.re.ReplaceAllLiteralString(token, d.content))
	}
	return out, nil
}

type replaceWire struct {
	Type    string  `json:"type"`
	Pattern Pattern `json:"pattern"`
	Content string  `json:"content"`
}

func (d *Replace) wire() any {
	return replaceWire{Type: "Replace", Pattern: d.pattern, Content: d.content}
}

func unmarshalReplace(data []byte) (Decoder, error) {
	var s struct {
		Type    *string `json:"type"`
		Pattern *struct {
			String *string `json:"String"`
			Regex  *string `json:"Regex"`
		} `json:"pattern"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if !typeIs(s.Type, "Replace") || s.Pattern == nil || s.Content == nil {
		return nil, errVariantMismatch
	}
	var pattern Pattern
	switch {
	case s.Pattern.String != nil && s.Pattern.Regex == nil:
		pattern = StringPattern(*s.Pattern.String)
	case s.Pattern.Regex != nil && s.Pattern.String == nil:
		pattern = RegexPattern(*s.Pattern.Regex)
	default:
		return nil, errVariantMismatch
	}
	d, err := NewReplace(pattern, *s.Content)
	if err != nil {
		// An uncompilable pattern fails the structural match.
		return nil, errVariantMismatch
	}
	return d, nil
}
