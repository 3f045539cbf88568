// decoder-inspect shows the decoding pipeline configured in a tokenizer.json
// file (or in a bare decoder configuration file) and optionally runs it.
//
// Usage:
//
//	decoder-inspect tokenizer.json
//	decoder-inspect -canonical decoder.json
//	decoder-inspect tokenizer.json ▁Hello ▁world
//
// With token arguments, the pipeline is applied to them and the decoded text
// printed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gomlx/go-tokenizers/decoders"
)

var flagCanonical = flag.Bool("canonical", false,
	"print the canonical JSON of the decoder configuration and exit")

var (
	typeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	paramStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	textStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: decoder-inspect [-canonical] <tokenizer.json|decoder.json> [token...]")
		os.Exit(2)
	}

	w, err := loadDecoder(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "decoder-inspect: %+v\n", err)
		os.Exit(1)
	}

	if *flagCanonical {
		data, err := w.MarshalJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "decoder-inspect: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printPipeline(w, 0)

	if tokens := flag.Args()[1:]; len(tokens) > 0 {
		text, err := w.Decode(tokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decoder-inspect: decoding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s %s\n", textStyle.Render("decoded:"), text)
	}
}

// loadDecoder reads the decoder section of a tokenizer.json, or — when the
// file has no such section — parses the whole file as one decoder
// configuration.
func loadDecoder(path string) (decoders.Wrapper, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return decoders.Wrapper{}, err
	}

	var envelope struct {
		Decoder json.RawMessage `json:"decoder"`
	}
	if err := json.Unmarshal(content, &envelope); err == nil &&
		len(envelope.Decoder) > 0 && string(envelope.Decoder) != "null" {
		content = envelope.Decoder
	}

	var w decoders.Wrapper
	if err := json.Unmarshal(content, &w); err != nil {
		return decoders.Wrapper{}, err
	}
	return w, nil
}

// printPipeline renders the decoder tree, one line per step, nested
// sequences indented.
func printPipeline(w decoders.Wrapper, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s %s\n", indent, typeStyle.Render(w.Type()), paramStyle.Render(paramSummary(w)))
	if seq, ok := w.Unwrap().(*decoders.Sequence); ok {
		for _, child := range seq.Decoders() {
			printPipeline(child, depth+1)
		}
	}
}

// paramSummary is the canonical JSON of one step without its discriminant,
// or "" for steps without parameters.
func paramSummary(w decoders.Wrapper) string {
	if _, ok := w.Unwrap().(*decoders.Sequence); ok {
		return ""
	}
	data, err := w.MarshalJSON()
	if err != nil {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	delete(fields, "type")
	if len(fields) == 0 {
		return ""
	}
	summary, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(summary)
}
