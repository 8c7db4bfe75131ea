package lex

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex resolves words against a lexicon Provider. A word missing from the
// tables is decomposed recursively: case-fold fallback for accented
// upper-case forms, prefix stripping, compound-head stripping, then
// suffix rules with tag merging. Results surface as a Token with the
// decomposition recorded in Trace.
//
// A Lex is single-threaded by design: one engine per resolution run.
type Lex struct {
	*runState
	provider Provider

	// memo holds words proven unresolvable during the current top-level
	// call, so decomposition never retries a dead branch or cycles.
	memo map[string]struct{}
}

// New builds an engine over a provider. The provider's declared stop
// tags, if any, merge with opts.StopTags.
func New(p Provider, opts Options) (*Lex, error) {
	if p == nil {
		return nil, errors.New("lex: nil provider")
	}
	var declared []string
	if d, ok := p.(StopTagDeclarer); ok {
		declared = d.DeclaredStopTags()
	}
	rs, err := newRunState(opts, declared)
	if err != nil {
		return nil, err
	}
	return &Lex{
		runState: rs,
		provider: p,
		memo:     make(map[string]struct{}),
	}, nil
}

// Resolve resolves one word. Definite results are cached for the rest of
// the run; unknown results never are, so a later lexicon reload can cure
// them. Statistics and the phrase tracker update on every call, cache
// hits included.
func (l *Lex) Resolve(word string) Token {
	clear(l.memo)
	if ent, ok := l.cache.Get(word); ok {
		l.trace("cache", word, ent.tok.Tag)
		l.recordKnown(word, ent)
		return ent.tok
	}
	if tok, stop, ok := l.lookup(word, false); ok {
		ent := cacheEntry{tok: tok, stop: stop}
		l.cache.Add(word, ent)
		l.recordKnown(word, ent)
		return tok
	}
	l.trace("unknown", word, "")
	return l.recordUnknown(word)
}

// resolveQuiet implements Member: full matching, cache shared, no
// statistics or tracker side effects.
func (l *Lex) resolveQuiet(word string) (Token, bool, bool) {
	clear(l.memo)
	if ent, ok := l.cache.Get(word); ok {
		return ent.tok, ent.stop, true
	}
	tok, stop, ok := l.lookup(word, false)
	if ok {
		l.cache.Add(word, cacheEntry{tok: tok, stop: stop})
	}
	return tok, stop, ok
}

// resolveInternal resolves a sub-word during decomposition. Nothing is
// counted and nothing new is cached; a failure marks the word dead in
// the memo for the rest of the top-level call.
func (l *Lex) resolveInternal(word string) (Token, bool) {
	if _, dead := l.memo[word]; dead {
		l.trace("memo", word, "")
		return Unknown(word), false
	}
	if ent, ok := l.cache.Get(word); ok {
		l.trace("cache", word, ent.tok.Tag)
		return ent.tok, ent.stop
	}
	if tok, stop, ok := l.lookup(word, true); ok {
		return tok, stop
	}
	l.memo[word] = struct{}{}
	return Unknown(word), false
}

// lookup runs the decomposition ladder. internal marks a recursive call:
// all-caps lexicon entries then only match the exact written form, so an
// acronym never passes as a bound morpheme.
func (l *Lex) lookup(word string, internal bool) (Token, bool, bool) {
	for _, rec := range l.provider.LookupExact(word) {
		if internal && rec.Word != word && isAcronym(rec.Word) {
			l.trace("acronym", word, rec.Word)
			continue
		}
		l.trace("exact", word, rec.Tag)
		return Token{Tag: rec.Tag, Surface: word}, rec.Stop, true
	}

	if hasAccentedUpper(word) {
		folded := strings.ToLower(word)
		if sub, stop := l.resolveInternal(folded); sub.Known() {
			l.trace("fold", word, folded)
			sub.Surface = word
			return sub, stop, true
		}
	}

	if tok, ok := l.stripLeading(word, l.provider.PrefixCandidates(word), "prefix"); ok {
		return tok, false, true
	}
	if tok, ok := l.stripLeading(word, l.provider.CompoundCandidates(word), "compound"); ok {
		return tok, false, true
	}
	if tok, ok := l.stripSuffix(word); ok {
		return tok, false, true
	}
	return Token{}, false, false
}

// stripLeading tries each matched leading fragment, longest first, and
// keeps the first whose remainder resolves. The result carries the
// remainder's tag; the fragment survives only in the trace.
func (l *Lex) stripLeading(word string, cands []AffixCandidate, stage string) (Token, bool) {
	if len(cands) == 0 {
		return Token{}, false
	}
	runes := []rune(word)
	for _, cand := range cands {
		n := utf8.RuneCountInString(cand.Fragment)
		if len(runes)-n < 2 {
			continue
		}
		rest := string(runes[n:])
		sub, _ := l.resolveInternal(rest)
		if !sub.Known() {
			continue
		}
		l.trace(stage, word, cand.Fragment+"+"+rest)
		return Token{
			Tag:     sub.Tag,
			Surface: word,
			Trace:   cand.Fragment + "+" + rest,
			RawTag:  sub.RawTag,
		}, true
	}
	return Token{}, false
}

// stripSuffix tries the provider's suffix rules in order. A rule applies
// when its suffix is strictly shorter than the word, the substituted
// stem is at least two runes and shorter than the word, the raw stem is
// not already dead this call, and the stem passes the rule's constraint.
// The first rule whose substituted stem resolves wins; its tag delta
// merges into the stem's tag.
func (l *Lex) stripSuffix(word string) (Token, bool) {
	wlen := utf8.RuneCountInString(word)
	for _, rule := range l.provider.SuffixCandidates(word) {
		slen := utf8.RuneCountInString(rule.Suffix)
		if slen >= wlen {
			continue
		}
		stem := trimTail(word, slen)
		subbed := stem + rule.Substitution
		blen := utf8.RuneCountInString(subbed)
		if blen < 2 || blen >= wlen {
			continue
		}
		if _, dead := l.memo[stem]; dead {
			continue
		}
		if rule.Constraint != nil && !rule.Constraint.MatchString(stem) {
			continue
		}
		sub, _ := l.resolveInternal(subbed)
		if !sub.Known() {
			continue
		}
		merged := MergeTags(sub.Tag, sub.RawTag, rule.TagDelta)
		inner := sub.Trace
		if inner == "" {
			inner = subbed
		}
		l.trace("suffix", word, rule.Suffix)
		return Token{
			Tag:     merged,
			Surface: word,
			Trace:   inner + "+" + rule.Suffix,
			RawTag:  merged,
		}, true
	}
	return Token{}, false
}

// trimTail removes n runes from the end of s.
func trimTail(s string, n int) string {
	runes := []rune(s)
	return string(runes[:len(runes)-n])
}

// hasAccentedUpper reports whether s contains an upper-case letter
// outside ASCII, the trigger for the case-fold fallback. Plain ASCII
// case differences are already absorbed by case-insensitive lookup.
func hasAccentedUpper(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// isAcronym reports whether a stored form is written entirely in
// upper-case letters.
func isAcronym(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
