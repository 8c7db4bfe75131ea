// Package lex resolves single words into lexical tokens: a part-of-speech
// tag plus a trace of how the word was decomposed when it was not found
// directly in a lexicon.
package lex

import "regexp"

// TagUnknown marks a word no resolver could account for.
const TagUnknown = "?"

// TagSplit marks a word that is really several words glued together by
// punctuation. The pieces ride along in Extra and the caller is expected
// to feed them back in one at a time.
const TagSplit = "SPLIT"

// Token is the result of resolving one word.
type Token struct {
	// Tag is the part-of-speech tag, TagUnknown when resolution failed.
	// Suffix-derived tags are composites in canonical form: core first,
	// then feature names sorted and joined with "+".
	Tag string

	// Surface is the word exactly as it was handed in.
	Surface string

	// Trace records the decomposition for derived results, e.g.
	// "un+happy" or "happy+ness". Empty for direct lexicon hits.
	Trace string

	// RawTag holds the unsimplified composite tag when the suffix
	// algebra produced one, so later merges stack on the full form.
	RawTag string

	// Extra carries recognizer by-products: pattern captures, or the
	// pieces of a TagSplit result.
	Extra []string
}

// Unknown returns the token for an unresolvable word.
func Unknown(word string) Token {
	return Token{Tag: TagUnknown, Surface: word}
}

// Known reports whether the token carries a definite tag.
func (t Token) Known() bool {
	return t.Tag != "" && t.Tag != TagUnknown
}

// WordRecord is one lexicon entry for a word.
type WordRecord struct {
	// Word is the stored written form, which may differ in case from
	// the query that found it.
	Word  string
	Tag   string
	Flags string

	// Stop marks an entry that ends the current phrase when resolved.
	Stop bool
}

// AffixCandidate is a leading fragment (prefix or compound head) that a
// provider matched at the start of a query word.
type AffixCandidate struct {
	Fragment string
	Tag      string
	Flags    string
}

// SuffixRule is one stripping rule a provider matched at the end of a
// query word.
type SuffixRule struct {
	// Category names the rule group in the source table, e.g. "decl".
	Category string

	// Suffix is the literal ending the rule removes.
	Suffix string

	// Substitution is appended to the stem after the suffix is removed,
	// e.g. "y" to turn "babies" back into "baby".
	Substitution string

	// TagDelta is merged into the stem's tag: either a replacement tag
	// or a feature delta such as "+pl" or "-f-n+m".
	TagDelta string

	// Constraint, when non-nil, must match the end of the raw stem for
	// the rule to apply.
	Constraint *regexp.Regexp

	// Chain is reserved for follow-up rule chaining.
	Chain string
}

// Provider supplies lexicon lookups to a resolver. Implementations return
// nil slices freely; order is contractual: LookupExact follows the
// configured table order, PrefixCandidates and CompoundCandidates run
// longest fragment first, SuffixCandidates runs longest suffix first and,
// within one suffix, shortest resulting stem first.
type Provider interface {
	LookupExact(word string) []WordRecord
	PrefixCandidates(word string) []AffixCandidate
	CompoundCandidates(word string) []AffixCandidate
	SuffixCandidates(word string) []SuffixRule
}

// StopTagDeclarer is implemented by providers whose backing source
// declares default stop tags alongside the word tables.
type StopTagDeclarer interface {
	DeclaredStopTags() []string
}

// TraceSink receives one event per decision point during resolution.
// Stage names: "cache", "memo", "exact", "acronym", "fold", "prefix",
// "compound", "suffix", "unknown".
type TraceSink func(stage, word, note string)

// Engine is the word-at-a-time surface shared by Lex and Cascade.
type Engine interface {
	// Resolve resolves one word, updating run statistics, the result
	// cache and the phrase tracker.
	Resolve(word string) Token

	// SignalStop ends the current phrase without resolving anything.
	SignalStop()

	// InjectPunctuation feeds punctuation marks into the phrase buffer
	// as if they were words, for callers that count them as phrase
	// members.
	InjectPunctuation(marks ...string)

	// Restart clears every per-run accumulator.
	Restart()

	Lookups() int
	UnknownCount() int
	WordCounts() map[string]int
	UnknownWordCounts() map[string]int
	NgramCounts() map[string]int

	// NormalizeNgrams removes nested double counting from an n-gram
	// map. A nil argument normalizes a copy of the engine's own counts.
	NormalizeNgrams(counts map[string]int) map[string]int

	DeclaredStopTags() []string
}

// Member is a resolver that can take part in a Cascade: a Lex engine, a
// recognizer Chain, or another Cascade.
type Member interface {
	// resolveQuiet runs one resolution on behalf of an enclosing
	// cascade: full matching semantics, no statistics or tracker
	// side effects.
	resolveQuiet(word string) (tok Token, stop bool, ok bool)

	// Restart clears any member-held run state, so a cascade restart
	// reaches every level.
	Restart()

	DeclaredStopTags() []string
}
