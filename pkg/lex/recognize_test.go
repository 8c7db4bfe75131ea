package lex

import (
	"reflect"
	"testing"
)

func TestStandardRules(t *testing.T) {
	chain, err := NewChain(
		Named("SPECIALS"),
		Named("DATE"),
		Named("URL"),
		Named("NUM"),
		Named("ID"),
		Named("SPLIT"),
	)
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}

	testCases := []struct {
		word        string
		wantTag     string
		wantExtra   []string
		description string
	}{
		// literals
		{"©", "COPY", nil, "Copyright sign"},
		{"(c)", "COPY", nil, "Spelled copyright"},
		{"§", "LSEC", nil, "Section sign"},
		{"§§", "LSEC", nil, "Double section sign"},

		// numbers
		{"99", "NUM", nil, "Plain integer"},
		{"99.9", "NUM", []string{"."}, "Decimal captures dot separator"},
		{"99,9", "NUM", []string{","}, "Decimal captures comma separator"},
		{"1.2.3.4", "NUM", nil, "Dotted number run has no capture"},

		// dates and times
		{"3/4/2004", "DATE", nil, "Slash date"},
		{"2004.03.04", "DATE", nil, "Dotted date, year first"},
		{"4.3.2004", "DATE", nil, "Dotted date, year last"},
		{"04-03-2004", "DATE", nil, "Dashed date"},
		{"4:05", "TIME", nil, "Clock time"},
		{"16:05:30", "TIME", nil, "Clock time with seconds"},
		{"4:05-5:10", "TIME", nil, "Time range"},

		// urls and addresses
		{"http://example.com/x", "URL", nil, "Scheme URL"},
		{"mailto:bob@example.com", "URL", nil, "Mailto URL"},
		{"michael@vivtek.com", "EMAIL", nil, "Email address"},
		{"vivtek.com", "URL", nil, "Bare host with known TLD"},
		{"sub.domain.io", "URL", nil, "Multi-label host"},
		{"foo.de", "URL", nil, "Two-letter country TLD"},

		// identifiers
		{"word2vec", "ID", nil, "Letters with a digit"},
		{"foo_bar", "ID", nil, "Underscore identifier"},

		// glued words
		{"foo-bar", TagSplit, []string{"foo", "bar"}, "Hyphen glue"},
		{"a=b", TagSplit, []string{"a", "b"}, "Equals glue"},
		{"e-mail,too", TagSplit, []string{"e", "mail", "too"}, "Mixed glue"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			tok := chain.Match(tc.word)
			if tok == nil {
				t.Fatalf("Match(%q): expected tag %q, got no match", tc.word, tc.wantTag)
			}
			if tok.Tag != tc.wantTag {
				t.Errorf("Match(%q): expected tag %q, got %q", tc.word, tc.wantTag, tok.Tag)
			}
			if !reflect.DeepEqual(tok.Extra, tc.wantExtra) {
				t.Errorf("Match(%q): expected extra %v, got %v", tc.word, tc.wantExtra, tok.Extra)
			}
			if tok.Surface != tc.word {
				t.Errorf("Match(%q): surface mangled to %q", tc.word, tok.Surface)
			}
		})
	}
}

// each rule alone must decline the near misses of its own shape
func TestStandardRulesNoMatch(t *testing.T) {
	testCases := []struct {
		rule        string
		word        string
		description string
	}{
		{"DATE", "4.03.1", "No component reads as a year"},
		{"DATE", "99.9", "Two components are a decimal, not a date"},
		{"DATE", "2004.33.04", "Day and month values out of range"},
		{"DATE", "rot", "Plain word"},
		{"URL", "something.else", "Implausible TLD"},
		{"URL", "a@b@c.com", "Two at signs"},
		{"URL", "2004.03.04", "Numeric TLD"},
		{"URL", "rot", "No dot at all"},
		{"NUM", "9a", "Trailing letter"},
		{"NUM", "rot", "Plain word"},
		{"ID", "abc", "No digit or underscore"},
		{"ID", "2abc", "Opens with a digit"},
		{"SPLIT", "--", "Glue with nothing to split"},
		{"SPLIT", "foo", "Nothing glued"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			chain, err := NewChain(Named(tc.rule))
			if err != nil {
				t.Fatalf("NewChain(%s) failed: %v", tc.rule, err)
			}
			if tok := chain.Match(tc.word); tok != nil {
				t.Errorf("%s.Match(%q): expected no match, got %+v", tc.rule, tc.word, tok)
			}
		})
	}
}

// the first matching rule wins, later rules never run
func TestChainOrder(t *testing.T) {
	chain, err := NewChain(Named("SPLIT"), Named("DATE"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}

	tok := chain.Match("2004.03.04")
	if tok == nil || tok.Tag != TagSplit {
		t.Errorf("Expected SPLIT to shadow DATE, got %+v", tok)
	}
}

func TestChainCustomRules(t *testing.T) {
	smiley := func(word string) *Token {
		if word == ":)" || word == ":(" {
			return &Token{Tag: "SMILEY", Surface: word}
		}
		return nil
	}
	chain, err := NewChain(
		Literal("ARROW", "->", "=>"),
		Pattern("HEX", `0x([0-9a-fA-F]+)`),
		PredicateRule("SMILEY", smiley),
	)
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}

	if tok := chain.Match("->"); tok == nil || tok.Tag != "ARROW" {
		t.Errorf("Literal rule failed: %+v", tok)
	}
	if tok := chain.Match("0xff"); tok == nil || len(tok.Extra) != 1 || tok.Extra[0] != "ff" {
		t.Errorf("Pattern capture failed: %+v", tok)
	}
	if tok := chain.Match(":)"); tok == nil || tok.Tag != "SMILEY" {
		t.Errorf("Predicate rule failed: %+v", tok)
	}
	if tok := chain.Match("plain"); tok != nil {
		t.Errorf("Expected no match, got %+v", tok)
	}
}

func TestChainConstructionErrors(t *testing.T) {
	testCases := []struct {
		spec        RuleSpec
		description string
	}{
		{Named("NOSUCH"), "Unknown catalog name"},
		{Pattern("BAD", `(`), "Unbalanced pattern"},
		{PredicateRule("NIL", nil), "Nil predicate"},
		{Literal("EMPTY"), "Literal without values"},
		{RuleSpec{}, "Zero value spec resolves as empty name"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if _, err := NewChain(tc.spec); err == nil {
				t.Errorf("Expected construction error")
			}
		})
	}
}

func TestRegisterStandardRule(t *testing.T) {
	RegisterStandardRule("TESTARROW", Literal("ARROW", "->"))
	t.Cleanup(func() { delete(standardRules, "TESTARROW") })

	chain, err := NewChain(Named("TESTARROW"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	if tok := chain.Match("->"); tok == nil || tok.Tag != "ARROW" {
		t.Errorf("Registered rule not usable: %+v", tok)
	}
}

func TestRegisterStandardGroup(t *testing.T) {
	RegisterStandardGroup("TESTGROUP", Named("COPY"), Literal("DASH", "--"))
	t.Cleanup(func() { delete(standardGroups, "TESTGROUP") })

	chain, err := NewChain(Named("TESTGROUP"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	if tok := chain.Match("©"); tok == nil || tok.Tag != "COPY" {
		t.Errorf("Group member COPY not spliced: %+v", tok)
	}
	if tok := chain.Match("--"); tok == nil || tok.Tag != "DASH" {
		t.Errorf("Group member literal not spliced: %+v", tok)
	}
}

// a group referencing itself must fail construction, not hang
func TestSelfReferencingGroup(t *testing.T) {
	RegisterStandardGroup("TESTLOOP", Named("TESTLOOP"))
	t.Cleanup(func() { delete(standardGroups, "TESTLOOP") })

	if _, err := NewChain(Named("TESTLOOP")); err == nil {
		t.Errorf("Expected depth error for self-referencing group")
	}
}

func TestRegisterTLDs(t *testing.T) {
	RegisterTLDs([]string{"test", "example"})
	t.Cleanup(func() { RegisterTLDs(nil) })

	chain, err := NewChain(Named("URL"))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}

	if tok := chain.Match("foo.test"); tok == nil || tok.Tag != "URL" {
		t.Errorf("Registered TLD not honored: %+v", tok)
	}
	// the registered list replaces the fallback completely
	if tok := chain.Match("foo.com"); tok != nil {
		t.Errorf("Fallback TLD still active: %+v", tok)
	}

	RegisterTLDs(nil)
	if tok := chain.Match("foo.com"); tok == nil || tok.Tag != "URL" {
		t.Errorf("Fallback not restored: %+v", tok)
	}
}
