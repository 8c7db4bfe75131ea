package lex

import "errors"

// Cascade tries an ordered list of members until one produces a definite
// result. Members run quiet: the cascade alone owns the result cache,
// the statistics and the phrase tracker, so member-level state never
// shadows the run. A Cascade is itself a Member, so cascades nest.
type Cascade struct {
	*runState
	members []Member
}

// NewCascade builds a cascade over members, first match wins. Stop tags
// declared by any member merge with opts.StopTags into one registry.
func NewCascade(members []Member, opts Options) (*Cascade, error) {
	if len(members) == 0 {
		return nil, errors.New("lex: cascade needs at least one member")
	}
	var declared []string
	for _, m := range members {
		declared = append(declared, m.DeclaredStopTags()...)
	}
	rs, err := newRunState(opts, declared)
	if err != nil {
		return nil, err
	}
	return &Cascade{runState: rs, members: members}, nil
}

// Resolve asks each member in order and records the first definite
// answer. The cascade cache answers before any member runs, so a word
// one member resolved never reaches the members again this run.
func (c *Cascade) Resolve(word string) Token {
	if ent, ok := c.cache.Get(word); ok {
		c.trace("cache", word, ent.tok.Tag)
		c.recordKnown(word, ent)
		return ent.tok
	}
	if ent, ok := c.ask(word); ok {
		c.cache.Add(word, ent)
		c.recordKnown(word, ent)
		return ent.tok
	}
	c.trace("unknown", word, "")
	return c.recordUnknown(word)
}

// resolveQuiet implements Member, letting this cascade serve inside an
// outer one.
func (c *Cascade) resolveQuiet(word string) (Token, bool, bool) {
	if ent, ok := c.cache.Get(word); ok {
		return ent.tok, ent.stop, true
	}
	ent, ok := c.ask(word)
	if ok {
		c.cache.Add(word, ent)
	}
	return ent.tok, ent.stop, ok
}

func (c *Cascade) ask(word string) (cacheEntry, bool) {
	for _, m := range c.members {
		if tok, stop, ok := m.resolveQuiet(word); ok {
			return cacheEntry{tok: tok, stop: stop}, true
		}
	}
	return cacheEntry{}, false
}

// Restart clears the cascade's accumulators and every member's, so no
// member-held cache outlives the run.
func (c *Cascade) Restart() {
	c.runState.Restart()
	for _, m := range c.members {
		m.Restart()
	}
}
