// Package tok drives a resolver over running text: it splits input into
// words, feeds them through a lex.Engine one at a time, turns sentence
// punctuation into phrase stops and re-tokenizes glued words the
// splitter rule broke apart.
package tok

import (
	"strings"
	"unicode"

	"github.com/arvhem/wordtag/pkg/lex"
)

// DefaultStopMarks are the sentence-ending characters Text peels off the
// end of a chunk and turns into a phrase stop.
const DefaultStopMarks = ".!?;:"

// Options configures a Tokenizer.
type Options struct {
	// StopMarks overrides DefaultStopMarks.
	StopMarks string

	// InjectPunct feeds the separator runs of split words into the
	// engine's phrase buffer, so slashes and hyphens count as phrase
	// members.
	InjectPunct bool
}

// Tokenizer feeds words to one engine. It holds no run state of its
// own; restarting the engine restarts the run.
type Tokenizer struct {
	eng       lex.Engine
	stopMarks string
	inject    bool
}

// New returns a Tokenizer driving eng.
func New(eng lex.Engine, opts Options) *Tokenizer {
	marks := opts.StopMarks
	if marks == "" {
		marks = DefaultStopMarks
	}
	return &Tokenizer{eng: eng, stopMarks: marks, inject: opts.InjectPunct}
}

// Words resolves the given words in order and returns their tokens,
// with splitter results expanded into their pieces.
func (tk *Tokenizer) Words(words ...string) []lex.Token {
	var out []lex.Token
	for _, w := range words {
		out = tk.resolveWord(out, w)
	}
	return out
}

// Text splits s on whitespace and resolves the chunks in order. A
// trailing run of stop marks ends the current phrase; other punctuation
// stays attached and is the splitter rule's business.
func (tk *Tokenizer) Text(s string) []lex.Token {
	var out []lex.Token
	for _, chunk := range strings.Fields(s) {
		core := strings.TrimRight(chunk, tk.stopMarks)
		if core != "" {
			out = tk.resolveWord(out, core)
		}
		if len(core) < len(chunk) {
			tk.eng.SignalStop()
		}
	}
	return out
}

// resolveWord resolves one word, re-tokenizing splitter pieces as new
// words. The glued original never becomes a token.
func (tk *Tokenizer) resolveWord(out []lex.Token, word string) []lex.Token {
	tok := tk.eng.Resolve(word)
	if tok.Tag != lex.TagSplit {
		return append(out, tok)
	}
	return tk.expand(out, word)
}

// expand walks a glued word as alternating separator and word runs. The
// word runs resolve as fresh words; the separator runs are dropped, or
// injected into the phrase buffer in inject mode.
func (tk *Tokenizer) expand(out []lex.Token, word string) []lex.Token {
	runes := []rune(word)
	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && isSeparator(runes[j]) {
			j++
		}
		if j > i && tk.inject {
			tk.eng.InjectPunctuation(string(runes[i:j]))
		}
		i = j
		for j < len(runes) && !isSeparator(runes[j]) {
			j++
		}
		if j > i {
			out = tk.resolveWord(out, string(runes[i:j]))
		}
		i = j
	}
	return out
}

// isSeparator matches the splitter rule's boundary set.
func isSeparator(r rune) bool {
	return unicode.IsPunct(r) || r == '='
}
