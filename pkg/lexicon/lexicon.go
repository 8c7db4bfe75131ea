// Package lexicon backs the resolver with tab-separated text tables:
// word tables, leading-fragment tables for prefixes and compound heads,
// and a suffix rule table. Queries implement lex.Provider with patricia
// tries answering the ordered fragment lookups.
package lexicon

import (
	"sort"
	"strings"
	"time"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/arvhem/wordtag/pkg/lex"
)

// Reserved file names next to the word tables.
const (
	PrefixFile   = "prefixes.lex"
	CompoundFile = "compounds.lex"
	SuffixFile   = "suffixes.lex"
)

// DefaultWordTag is the tag for bare entries when neither Options nor a
// !default directive names one.
const DefaultWordTag = "w"

// Options configures Open.
type Options struct {
	// Tables lists word table names (file name without .lex) in lookup
	// order. Empty means every non-reserved .lex file in the directory,
	// sorted by name.
	Tables []string

	// DefaultTag applies to entries whose tag column is empty and no
	// table-level default overrides it. Empty means DefaultWordTag.
	DefaultTag string
}

// Lexicon holds the loaded tables and serves resolver queries. It is
// built for the engine's single-threaded run model; use one Lexicon per
// run, or reload between runs.
type Lexicon struct {
	dir        string
	defaultTag string
	tables     []*wordTable
	prefixes   *patricia.Trie
	compounds  *patricia.Trie
	suffixes   *patricia.Trie
	mtimes     map[string]time.Time
}

// wordTable is one loaded word table. entries keys are lower-cased and
// hold at most one record each; a later line for the same key replaces
// the earlier one. Records keep the written form.
type wordTable struct {
	name       string
	path       string
	defaultTag string
	stopTags   []string
	entries    map[string]lex.WordRecord
}

// LookupExact returns at most one record per table for word, in table
// order. The match is case-insensitive; records keep their stored
// written form.
func (lx *Lexicon) LookupExact(word string) []lex.WordRecord {
	key := strings.ToLower(word)
	var out []lex.WordRecord
	for _, t := range lx.tables {
		if rec, ok := t.entries[key]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// PrefixCandidates returns prefix fragments matching the start of word,
// longest first.
func (lx *Lexicon) PrefixCandidates(word string) []lex.AffixCandidate {
	return leadingCandidates(lx.prefixes, word)
}

// CompoundCandidates returns compound-head fragments matching the start
// of word, longest first.
func (lx *Lexicon) CompoundCandidates(word string) []lex.AffixCandidate {
	return leadingCandidates(lx.compounds, word)
}

func leadingCandidates(trie *patricia.Trie, word string) []lex.AffixCandidate {
	if trie == nil {
		return nil
	}
	key := strings.ToLower(word)
	var out []lex.AffixCandidate
	trie.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		out = append(out, item.(lex.AffixCandidate))
		return nil
	})
	// VisitPrefixes walks shortest to longest; the resolver wants the
	// longest fragment first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SuffixCandidates returns the rules whose suffix ends word: longest
// suffix first and, within one suffix, shortest substituted stem first.
// The trie keys are reversed suffixes, so walking the reversed word
// visits exactly the matching rules.
func (lx *Lexicon) SuffixCandidates(word string) []lex.SuffixRule {
	if lx.suffixes == nil {
		return nil
	}
	key := reverseString(strings.ToLower(word))
	var buckets [][]lex.SuffixRule
	lx.suffixes.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		buckets = append(buckets, item.([]lex.SuffixRule))
		return nil
	})
	var out []lex.SuffixRule
	for i := len(buckets) - 1; i >= 0; i-- {
		out = append(out, buckets[i]...)
	}
	return out
}

// DeclaredStopTags returns the union of every table's !stop directives,
// sorted.
func (lx *Lexicon) DeclaredStopTags() []string {
	set := make(map[string]struct{})
	for _, t := range lx.tables {
		for _, tag := range t.stopTags {
			set[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Tables returns the loaded word table names in lookup order.
func (lx *Lexicon) Tables() []string {
	names := make([]string, len(lx.tables))
	for i, t := range lx.tables {
		names[i] = t.name
	}
	return names
}

// WordCount counts records across all word tables.
func (lx *Lexicon) WordCount() int {
	n := 0
	for _, t := range lx.tables {
		n += len(t.entries)
	}
	return n
}

// Dir returns the lexicon directory.
func (lx *Lexicon) Dir() string {
	return lx.dir
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
