package lex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Predicate inspects one word and returns a token for it, or nil when
// the word is not its business.
type Predicate func(word string) *Token

type ruleKind int

const (
	kindNamed ruleKind = iota
	kindLiteral
	kindPattern
	kindPredicate
)

// RuleSpec declares one recognizer rule before compilation. Build specs
// with Named, Literal, Pattern or PredicateRule.
type RuleSpec struct {
	kind    ruleKind
	name    string
	tag     string
	values  []string
	pattern string
	fn      Predicate
}

// Named references a rule or group from the standard catalog.
func Named(name string) RuleSpec {
	return RuleSpec{kind: kindNamed, name: name}
}

// Literal matches any of the given values exactly.
func Literal(tag string, values ...string) RuleSpec {
	return RuleSpec{kind: kindLiteral, tag: tag, values: values}
}

// Pattern matches a regular expression against the whole word. Captured
// groups that matched non-empty text are appended to the token's Extra
// fields in order.
func Pattern(tag, pattern string) RuleSpec {
	return RuleSpec{kind: kindPattern, tag: tag, pattern: pattern}
}

// PredicateRule delegates matching to fn, which decides tag and token
// shape on its own.
func PredicateRule(tag string, fn Predicate) RuleSpec {
	return RuleSpec{kind: kindPredicate, tag: tag, fn: fn}
}

type rule struct {
	tag    string
	values []string
	re     *regexp.Regexp
	fn     Predicate
}

// Chain is an ordered recognizer list: the first matching rule wins.
// A Chain can stand alone via Match or serve as a Cascade member.
type Chain struct {
	rules []rule
}

// groupDepthLimit caps catalog recursion so a self-referencing group
// registration fails at construction instead of looping.
const groupDepthLimit = 10

// NewChain compiles rule specs in order. Named specs resolve against the
// standard catalog; unknown names, bad patterns and nil predicates all
// fail construction.
func NewChain(specs ...RuleSpec) (*Chain, error) {
	c := &Chain{}
	for _, spec := range specs {
		if err := c.compile(spec, 0); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Chain) compile(spec RuleSpec, depth int) error {
	switch spec.kind {
	case kindLiteral:
		if spec.tag == "" || len(spec.values) == 0 {
			return fmt.Errorf("lex: literal rule %q needs a tag and at least one value", spec.tag)
		}
		c.rules = append(c.rules, rule{tag: spec.tag, values: spec.values})
	case kindPattern:
		re, err := regexp.Compile("^(?:" + spec.pattern + ")$")
		if err != nil {
			return fmt.Errorf("lex: pattern rule %q: %w", spec.tag, err)
		}
		c.rules = append(c.rules, rule{tag: spec.tag, re: re})
	case kindPredicate:
		if spec.fn == nil {
			return fmt.Errorf("lex: predicate rule %q has a nil func", spec.tag)
		}
		c.rules = append(c.rules, rule{tag: spec.tag, fn: spec.fn})
	case kindNamed:
		return c.compileNamed(spec.name, depth)
	default:
		return fmt.Errorf("lex: empty rule spec")
	}
	return nil
}

func (c *Chain) compileNamed(name string, depth int) error {
	if depth > groupDepthLimit {
		return fmt.Errorf("lex: rule group %q nests too deep", name)
	}
	if spec, ok := standardRules[name]; ok {
		return c.compile(spec, depth+1)
	}
	if members, ok := standardGroups[name]; ok {
		for _, member := range members {
			if err := c.compile(member, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("lex: unknown rule %q", name)
}

// Match evaluates the chain and returns the first matching token, or nil
// when no rule applies.
func (c *Chain) Match(word string) *Token {
	for _, r := range c.rules {
		switch {
		case r.fn != nil:
			if tok := r.fn(word); tok != nil {
				return tok
			}
		case r.re != nil:
			m := r.re.FindStringSubmatch(word)
			if m == nil {
				continue
			}
			tok := &Token{Tag: r.tag, Surface: word}
			for _, group := range m[1:] {
				if group != "" {
					tok.Extra = append(tok.Extra, group)
				}
			}
			return tok
		default:
			for _, v := range r.values {
				if word == v {
					return &Token{Tag: r.tag, Surface: word}
				}
			}
		}
	}
	return nil
}

// resolveQuiet implements Member.
func (c *Chain) resolveQuiet(word string) (Token, bool, bool) {
	tok := c.Match(word)
	if tok == nil {
		return Token{}, false, false
	}
	return *tok, false, true
}

// DeclaredStopTags implements Member. Recognizer chains declare none.
func (c *Chain) DeclaredStopTags() []string {
	return nil
}

// Restart implements Member. A chain holds no run state.
func (c *Chain) Restart() {}

// The standard catalog. RegisterStandardRule and RegisterStandardGroup
// extend it; both are meant for startup wiring, not concurrent use.
var standardRules = map[string]RuleSpec{
	"COPY":  Literal("COPY", "©", "(c)"),
	"LSEC":  Literal("LSEC", "§", "§§"),
	"NUM":   Pattern("NUM", `\d+|\d+([.,])\d+|\d[\d.]+`),
	"DATE":  PredicateRule("DATE", recognizeDate),
	"URL":   PredicateRule("URL", recognizeURL),
	"ID":    Pattern("ID", `(?i)[a-z][a-z0-9]*[0-9_][a-z0-9_]*`),
	"SPLIT": PredicateRule(TagSplit, splitGlued),
}

var standardGroups = map[string][]RuleSpec{
	"SPECIALS": {Named("COPY"), Named("LSEC")},
}

// RegisterStandardRule adds or replaces a named rule in the catalog.
func RegisterStandardRule(name string, spec RuleSpec) {
	standardRules[name] = spec
}

// RegisterStandardGroup adds or replaces a named group in the catalog.
func RegisterStandardGroup(name string, members ...RuleSpec) {
	standardGroups[name] = members
}

var (
	reSlashDate = regexp.MustCompile(`^\d+/\d+/\d+$`)
	reClock     = regexp.MustCompile(`^\d+:\d{2}(?::\d{2})?(?:-\d+:\d{2}(?::\d{2})?)?$`)
	reDotDate   = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)
	reDashDate  = regexp.MustCompile(`^(\d+)-(\d+)-(\d+)$`)
	reScheme    = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://\S+$`)
)

// recognizeDate covers slash dates, clock times and ranges, and dotted
// or dashed dates. The latter two shapes are ambiguous with decimal
// numbers and ranges, so they only count when one component reads as a
// year and the others as day or month values.
func recognizeDate(word string) *Token {
	if reSlashDate.MatchString(word) {
		return &Token{Tag: "DATE", Surface: word}
	}
	if reClock.MatchString(word) {
		return &Token{Tag: "TIME", Surface: word}
	}
	m := reDotDate.FindStringSubmatch(word)
	if m == nil {
		m = reDashDate.FindStringSubmatch(word)
	}
	if m != nil && plausibleDate(m[1], m[2], m[3]) {
		return &Token{Tag: "DATE", Surface: word}
	}
	return nil
}

func plausibleDate(a, b, c string) bool {
	x, y, z := atoi(a), atoi(b), atoi(c)
	if isYear(x) && isDayOrMonth(y) && isDayOrMonth(z) {
		return true
	}
	return isYear(z) && isDayOrMonth(x) && isDayOrMonth(y)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func isYear(n int) bool {
	return n >= 1500 && n <= 3000
}

func isDayOrMonth(n int) bool {
	return n >= 0 && n < 32
}

// recognizeURL tags URLs by scheme or mailto prefix, addresses as EMAIL,
// and bare host names whose last dotted component is a plausible TLD.
func recognizeURL(word string) *Token {
	lower := strings.ToLower(word)
	if reScheme.MatchString(word) || isMailto(lower) {
		return &Token{Tag: "URL", Surface: word}
	}
	if isEmail(word) {
		return &Token{Tag: "EMAIL", Surface: word}
	}
	if isBareHost(lower) {
		return &Token{Tag: "URL", Surface: word}
	}
	return nil
}

func isMailto(lower string) bool {
	rest, ok := strings.CutPrefix(lower, "mailto:")
	if !ok || rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsLetter(r)
}

func isEmail(word string) bool {
	at := strings.IndexByte(word, '@')
	if at <= 0 || strings.IndexByte(word[at+1:], '@') >= 0 {
		return false
	}
	domain := word[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func isBareHost(lower string) bool {
	if strings.ContainsAny(lower, "@/:") {
		return false
	}
	parts := strings.Split(lower, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return plausibleTLD(parts[len(parts)-1])
}

// fallbackTLDs serves when no external TLD list was registered. Two
// letter country codes pass generically.
var fallbackTLDs = map[string]struct{}{
	"com": {}, "net": {}, "org": {}, "edu": {}, "gov": {}, "mil": {},
	"int": {}, "arpa": {}, "info": {}, "biz": {}, "name": {}, "pro": {},
	"aero": {}, "coop": {}, "museum": {}, "io": {}, "dev": {}, "app": {},
}

var registeredTLDs map[string]struct{}

// RegisterTLDs installs an external TLD list for the URL recognizer,
// replacing the fallback set entirely. Nil restores the fallback.
func RegisterTLDs(tlds []string) {
	if tlds == nil {
		registeredTLDs = nil
		return
	}
	set := make(map[string]struct{}, len(tlds))
	for _, tld := range tlds {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if tld != "" {
			set[tld] = struct{}{}
		}
	}
	registeredTLDs = set
}

func plausibleTLD(s string) bool {
	if registeredTLDs != nil {
		_, ok := registeredTLDs[s]
		return ok
	}
	if _, ok := fallbackTLDs[s]; ok {
		return true
	}
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// splitGlued recognizes words glued together by punctuation or equals
// signs. The pieces land in Extra; the caller re-resolves them one at a
// time.
func splitGlued(word string) *Token {
	pieces := strings.FieldsFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || r == '='
	})
	if len(pieces) < 2 {
		return nil
	}
	return &Token{Tag: TagSplit, Surface: word, Extra: pieces}
}
