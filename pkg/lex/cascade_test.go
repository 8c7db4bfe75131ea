package lex

import "testing"

func newTestCascade(t *testing.T, members []Member, opts Options) *Cascade {
	t.Helper()
	c, err := NewCascade(members, opts)
	if err != nil {
		t.Fatalf("NewCascade failed: %v", err)
	}
	return c
}

// earlier members shadow later ones, the dictionary never sees what a
// recognizer already claimed
func TestCascadePrecedence(t *testing.T) {
	chain, err := NewChain(Named("NUM"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	p := testProvider()
	p.records["42"] = []WordRecord{{Word: "42", Tag: "s"}}
	dict := newTestLex(t, p)

	c := newTestCascade(t, []Member{chain, dict}, Options{})

	if tok := c.Resolve("42"); tok.Tag != "NUM" {
		t.Errorf("Expected recognizer to win, got %+v", tok)
	}
	if p.calls != 0 {
		t.Errorf("Dictionary consulted despite recognizer hit: %d calls", p.calls)
	}
	if tok := c.Resolve("rot"); tok.Tag != "aa" {
		t.Errorf("Expected dictionary fallthrough, got %+v", tok)
	}
}

// statistics live on the cascade, member engines stay silent
func TestCascadeOwnsStatistics(t *testing.T) {
	dict := newTestLex(t, testProvider())
	c := newTestCascade(t, []Member{dict}, Options{})

	c.Resolve("rot")
	c.Resolve("rot")
	c.Resolve("blargh")

	if c.Lookups() != 2 || c.UnknownCount() != 1 {
		t.Errorf("Cascade counters wrong: %d / %d", c.Lookups(), c.UnknownCount())
	}
	if dict.Lookups() != 0 || dict.UnknownCount() != 0 {
		t.Errorf("Member counters moved: %d / %d", dict.Lookups(), dict.UnknownCount())
	}
	if len(dict.NgramCounts()) != 0 {
		t.Errorf("Member tracker moved: %v", dict.NgramCounts())
	}
	if c.WordCounts()["rot"] != 2 {
		t.Errorf("Cascade word counts wrong: %v", c.WordCounts())
	}
}

func TestCascadeCache(t *testing.T) {
	p := testProvider()
	dict := newTestLex(t, p)
	c := newTestCascade(t, []Member{dict}, Options{})

	c.Resolve("unhappy")
	calls := p.calls
	c.Resolve("unhappy")

	if p.calls != calls {
		t.Errorf("Cascade cache miss on repeat: %d extra calls", p.calls-calls)
	}
	if c.Lookups() != 2 {
		t.Errorf("Cache hits must still count: %d", c.Lookups())
	}
}

// stop tags declared by members aggregate on the cascade
func TestCascadeStopAggregation(t *testing.T) {
	dict := newTestLex(t, testProvider())
	c := newTestCascade(t, []Member{dict}, Options{StopTags: []string{"punct"}})

	tags := c.DeclaredStopTags()
	if len(tags) != 2 || tags[0] != "det" || tags[1] != "punct" {
		t.Errorf("Expected [det punct], got %v", tags)
	}

	c.Resolve("rot")
	c.Resolve("eine")
	c.Resolve("rot")

	if _, ok := c.NgramCounts()["rot rot"]; ok {
		t.Errorf("Member-declared stop tag ignored: %v", c.NgramCounts())
	}
}

func TestCascadeNested(t *testing.T) {
	chain, err := NewChain(Named("NUM"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	inner := newTestCascade(t, []Member{chain}, Options{})
	dict := newTestLex(t, testProvider())
	outer := newTestCascade(t, []Member{inner, dict}, Options{})

	if tok := outer.Resolve("42"); tok.Tag != "NUM" {
		t.Errorf("Nested cascade member failed: %+v", tok)
	}
	if tok := outer.Resolve("rot"); tok.Tag != "aa" {
		t.Errorf("Fallthrough past nested cascade failed: %+v", tok)
	}
	if inner.Lookups() != 0 {
		t.Errorf("Inner cascade counted while serving quiet: %d", inner.Lookups())
	}
}

// split results only signal re-tokenization: no counting, no phrase feed
func TestCascadeSplitSideEffects(t *testing.T) {
	chain, err := NewChain(Named("SPLIT"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	dict := newTestLex(t, testProvider())
	c := newTestCascade(t, []Member{chain, dict}, Options{})

	c.Resolve("rot")
	tok := c.Resolve("foo-bar")
	c.Resolve("rot")

	if tok.Tag != TagSplit || len(tok.Extra) != 2 {
		t.Fatalf("Expected split token, got %+v", tok)
	}
	if c.Lookups() != 2 {
		t.Errorf("Split result counted as a lookup: %d", c.Lookups())
	}
	if c.NgramCounts()["rot rot"] != 1 {
		t.Errorf("Split result disturbed the phrase buffer: %v", c.NgramCounts())
	}
	if _, ok := c.WordCounts()["foo-bar"]; ok {
		t.Errorf("Split result entered word counts: %v", c.WordCounts())
	}
}

func TestCascadeUnknown(t *testing.T) {
	dict := newTestLex(t, testProvider())
	c := newTestCascade(t, []Member{dict}, Options{})

	tok := c.Resolve("blargh")
	if tok.Known() {
		t.Fatalf("Expected unknown, got %+v", tok)
	}
	if c.UnknownWordCounts()["blargh"] != 1 {
		t.Errorf("Unknown word not counted: %v", c.UnknownWordCounts())
	}

	// unknowns are never cached, a lexicon change cures them
	p := testProvider()
	p.records["blargh"] = []WordRecord{{Word: "blargh", Tag: "s"}}
	c2 := newTestCascade(t, []Member{newTestLex(t, p)}, Options{})
	c2.Resolve("blargh")
	if tok := c2.Resolve("blargh"); tok.Tag != "s" {
		t.Errorf("Expected cure after lexicon change, got %+v", tok)
	}
}

func TestCascadeNoMembers(t *testing.T) {
	if _, err := NewCascade(nil, Options{}); err == nil {
		t.Errorf("Expected error for empty cascade")
	}
}

func TestCascadeRestart(t *testing.T) {
	p := testProvider()
	dict := newTestLex(t, p)
	c := newTestCascade(t, []Member{dict}, Options{})

	c.Resolve("rot")
	c.Restart()

	if c.Lookups() != 0 || len(c.WordCounts()) != 0 {
		t.Errorf("Restart left state behind")
	}
	calls := p.calls
	c.Resolve("rot")
	if p.calls == calls {
		t.Errorf("Cascade cache survived restart")
	}
}
