package lex

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the resolution cache when no capacity is
// configured.
const DefaultCacheSize = 4096

// Options configures a Lex engine or a Cascade.
type Options struct {
	// MaxNgram bounds the phrase buffer; DefaultMaxNgram when zero.
	MaxNgram int

	// CacheSize caps the resolution cache; DefaultCacheSize when zero.
	CacheSize int

	// StopTags end the current phrase whenever a resolved token carries
	// one of them. Merged with whatever the provider or the cascade
	// members declare.
	StopTags []string

	// Trace, when set, receives one event per decision point.
	Trace TraceSink
}

type cacheEntry struct {
	tok  Token
	stop bool
}

// runState owns the per-run accumulators shared by Lex and Cascade: the
// resolution cache, the phrase tracker, frequency maps and counters.
// Only definite results ever enter the cache; unknowns are re-derived on
// every call so a lexicon change can cure them.
type runState struct {
	cache        *lru.Cache[string, cacheEntry]
	track        *tracker
	stopTags     map[string]struct{}
	words        map[string]int
	unknownWords map[string]int
	lookups      int
	unknowns     int
	traceSink    TraceSink
}

func newRunState(opts Options, declared []string) (*runState, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("lex: cache size %d: %w", size, err)
	}
	stops := make(map[string]struct{}, len(declared)+len(opts.StopTags))
	for _, tag := range declared {
		stops[tag] = struct{}{}
	}
	for _, tag := range opts.StopTags {
		stops[tag] = struct{}{}
	}
	return &runState{
		cache:        cache,
		track:        newTracker(opts.MaxNgram),
		stopTags:     stops,
		words:        make(map[string]int),
		unknownWords: make(map[string]int),
		traceSink:    opts.Trace,
	}, nil
}

func (rs *runState) trace(stage, word, note string) {
	if rs.traceSink != nil {
		rs.traceSink(stage, word, note)
	}
}

func (rs *runState) isStopTag(tag string) bool {
	_, ok := rs.stopTags[tag]
	return ok
}

// recordKnown applies the side effects of one definite top-level
// resolution: counters, word frequency and the phrase tracker. Cache
// hits re-run it so repeated calls count and phrase alike. Split
// results only signal re-tokenization and touch nothing.
func (rs *runState) recordKnown(word string, ent cacheEntry) {
	if ent.tok.Tag == TagSplit {
		return
	}
	rs.lookups++
	rs.words[word]++
	if ent.stop || rs.isStopTag(ent.tok.Tag) {
		rs.track.stop()
		return
	}
	rs.track.accept(ent.tok.Surface)
}

// recordUnknown counts a failed top-level resolution and returns its
// token. Unknown words still join the phrase buffer; TagUnknown stops
// the phrase only if a caller registered it as a stop tag.
func (rs *runState) recordUnknown(word string) Token {
	tok := Unknown(word)
	rs.unknowns++
	rs.unknownWords[word]++
	if rs.isStopTag(tok.Tag) {
		rs.track.stop()
	} else {
		rs.track.accept(word)
	}
	return tok
}

// SignalStop ends the current phrase without resolving anything.
func (rs *runState) SignalStop() {
	rs.track.stop()
}

// InjectPunctuation feeds punctuation marks into the phrase buffer as if
// they were words.
func (rs *runState) InjectPunctuation(marks ...string) {
	for _, mark := range marks {
		rs.track.accept(mark)
	}
}

// Restart clears every per-run accumulator: counters, frequency maps,
// n-gram counts, the phrase buffer and the resolution cache.
func (rs *runState) Restart() {
	rs.cache.Purge()
	rs.track.reset()
	rs.words = make(map[string]int)
	rs.unknownWords = make(map[string]int)
	rs.lookups = 0
	rs.unknowns = 0
}

// Lookups counts definite top-level resolutions this run.
func (rs *runState) Lookups() int {
	return rs.lookups
}

// UnknownCount counts failed top-level resolutions this run.
func (rs *runState) UnknownCount() int {
	return rs.unknowns
}

func (rs *runState) WordCounts() map[string]int {
	return copyCounts(rs.words)
}

func (rs *runState) UnknownWordCounts() map[string]int {
	return copyCounts(rs.unknownWords)
}

func (rs *runState) NgramCounts() map[string]int {
	return copyCounts(rs.track.counts)
}

// NormalizeNgrams removes nested double counting from counts, in place,
// and returns it. A nil argument works on a copy of the engine's own
// counts, leaving the engine's raw counts intact.
func (rs *runState) NormalizeNgrams(counts map[string]int) map[string]int {
	if counts == nil {
		counts = copyCounts(rs.track.counts)
	}
	return normalizeNgramMap(counts)
}

func (rs *runState) DeclaredStopTags() []string {
	tags := make([]string, 0, len(rs.stopTags))
	for tag := range rs.stopTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
