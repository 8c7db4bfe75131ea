package lex

import "strings"

// DefaultMaxNgram bounds the phrase buffer when no limit is configured.
const DefaultMaxNgram = 5

// tracker accumulates n-gram counts over a bounded buffer of recent
// words. Every accepted word counts one occurrence of each trailing
// subsequence of length 2 up to the buffer length.
type tracker struct {
	maxLen int
	buf    []string
	counts map[string]int
}

func newTracker(maxLen int) *tracker {
	if maxLen <= 0 {
		maxLen = DefaultMaxNgram
	}
	return &tracker{
		maxLen: maxLen,
		counts: make(map[string]int),
	}
}

func (t *tracker) accept(word string) {
	t.buf = append(t.buf, word)
	if len(t.buf) > t.maxLen {
		t.buf = t.buf[len(t.buf)-t.maxLen:]
	}
	for n := 2; n <= len(t.buf); n++ {
		t.counts[strings.Join(t.buf[len(t.buf)-n:], " ")]++
	}
}

// stop ends the current phrase: the buffer empties, counts stay.
func (t *tracker) stop() {
	t.buf = t.buf[:0]
}

func (t *tracker) reset() {
	t.buf = t.buf[:0]
	t.counts = make(map[string]int)
}

// normalizeNgramMap removes the double counting that nested phrases
// produce: a phrase seen inside a longer phrase was also counted on its
// own. Working from the longest phrases down to length 3, each phrase's
// count is subtracted from both sub-phrases one word shorter (drop the
// first word, drop the last word); a sub-phrase whose count falls to
// zero or below is deleted. The transform is destructive on m and
// returns it. Order within one length level does not affect the result.
func normalizeNgramMap(m map[string]int) map[string]int {
	byLen := make(map[int][]string)
	maxLen := 0
	for phrase := range m {
		n := strings.Count(phrase, " ") + 1
		byLen[n] = append(byLen[n], phrase)
		if n > maxLen {
			maxLen = n
		}
	}
	for n := maxLen; n > 2; n-- {
		for _, phrase := range byLen[n] {
			count, live := m[phrase]
			if !live {
				continue
			}
			words := strings.Split(phrase, " ")
			dropFirst := strings.Join(words[1:], " ")
			dropLast := strings.Join(words[:len(words)-1], " ")
			for _, sub := range []string{dropFirst, dropLast} {
				cur, ok := m[sub]
				if !ok {
					continue
				}
				if cur-count <= 0 {
					delete(m, sub)
				} else {
					m[sub] = cur - count
				}
			}
		}
	}
	return m
}
