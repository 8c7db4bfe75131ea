package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/arvhem/wordtag/pkg/lex"
)

// Open loads a lexicon directory. Word tables are required (at least
// one); the prefix, compound and suffix files are optional. Any parse
// error is fatal and names the file and line.
func Open(dir string, opts Options) (*Lexicon, error) {
	names := opts.Tables
	if len(names) == 0 {
		var err error
		names, err = scanTables(dir)
		if err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("lexicon: no word tables in %s", dir)
	}
	if opts.DefaultTag == "" {
		opts.DefaultTag = DefaultWordTag
	}

	lx := &Lexicon{
		dir:        dir,
		defaultTag: opts.DefaultTag,
		mtimes:     make(map[string]time.Time),
	}

	for _, name := range names {
		path := filepath.Join(dir, name+".lex")
		table, err := parseWordTable(path, name, opts.DefaultTag)
		if err != nil {
			return nil, err
		}
		lx.tables = append(lx.tables, table)
		if err := lx.remember(path); err != nil {
			return nil, err
		}
		log.Debugf("Loaded table %s: %d words", name, len(table.entries))
	}

	if err := lx.loadAffixFile(PrefixFile, &lx.prefixes); err != nil {
		return nil, err
	}
	if err := lx.loadAffixFile(CompoundFile, &lx.compounds); err != nil {
		return nil, err
	}
	if err := lx.loadSuffixFile(); err != nil {
		return nil, err
	}

	return lx, nil
}

// scanTables lists non-reserved .lex files in dir, sorted by name.
func scanTables(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.lex"))
	if err != nil {
		return nil, fmt.Errorf("lexicon: scanning %s: %w", dir, err)
	}
	var names []string
	for _, path := range matches {
		base := filepath.Base(path)
		if base == PrefixFile || base == CompoundFile || base == SuffixFile {
			continue
		}
		names = append(names, strings.TrimSuffix(base, ".lex"))
	}
	sort.Strings(names)
	return names, nil
}

func (lx *Lexicon) remember(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("lexicon: stat %s: %w", path, err)
	}
	lx.mtimes[path] = info.ModTime()
	return nil
}

// parseWordTable reads one word table: word TAB tag TAB flags, with the
// tag and flags columns optional. Lines opening with ! are directives,
// # comments and blank lines are skipped.
func parseWordTable(path, name, fallbackTag string) (*wordTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open table %s: %w", path, err)
	}
	defer file.Close()

	table := &wordTable{
		name:       name,
		path:       path,
		defaultTag: fallbackTag,
		entries:    make(map[string]lex.WordRecord),
	}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if skipLine(line) {
			continue
		}
		if strings.HasPrefix(line, "!") {
			if err := table.directive(line); err != nil {
				return nil, fmt.Errorf("lexicon: %s:%d: %w", path, lineNo, err)
			}
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) > 3 {
			return nil, fmt.Errorf("lexicon: %s:%d: too many columns", path, lineNo)
		}
		word := fields[0]
		if word == "" {
			return nil, fmt.Errorf("lexicon: %s:%d: empty word", path, lineNo)
		}
		tag := table.defaultTag
		if len(fields) >= 2 && fields[1] != "" {
			tag = fields[1]
		}
		flags := ""
		if len(fields) == 3 {
			flags = fields[2]
		}
		// a later line for the same key wins
		table.entries[strings.ToLower(word)] = lex.WordRecord{
			Word:  word,
			Tag:   tag,
			Flags: flags,
			Stop:  strings.ContainsRune(flags, 's'),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lexicon: reading %s: %w", path, err)
	}
	return table, nil
}

func skipLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

// directive handles !default and !stop lines.
func (t *wordTable) directive(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "!default":
		if len(fields) != 2 {
			return fmt.Errorf("!default takes one tag")
		}
		t.defaultTag = fields[1]
	case "!stop":
		if len(fields) < 2 {
			return fmt.Errorf("!stop takes at least one tag")
		}
		t.stopTags = append(t.stopTags, fields[1:]...)
	default:
		return fmt.Errorf("unknown directive %s", fields[0])
	}
	return nil
}

// loadAffixFile reads an optional leading-fragment table into a trie
// keyed by the lower-cased fragment.
func (lx *Lexicon) loadAffixFile(base string, dst **patricia.Trie) error {
	path := filepath.Join(lx.dir, base)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Debugf("No %s, skipping", base)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer file.Close()

	trie := patricia.NewTrie()
	count := 0
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if skipLine(line) || strings.HasPrefix(line, "!") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) > 3 {
			return fmt.Errorf("lexicon: %s:%d: too many columns", path, lineNo)
		}
		fragment := strings.ToLower(fields[0])
		if fragment == "" {
			return fmt.Errorf("lexicon: %s:%d: empty fragment", path, lineNo)
		}
		cand := lex.AffixCandidate{Fragment: fragment}
		if len(fields) >= 2 {
			cand.Tag = fields[1]
		}
		if len(fields) == 3 {
			cand.Flags = fields[2]
		}
		trie.Set(patricia.Prefix(fragment), cand)
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("lexicon: reading %s: %w", path, err)
	}

	*dst = trie
	if err := lx.remember(path); err != nil {
		return err
	}
	log.Debugf("Loaded %s: %d fragments", base, count)
	return nil
}

// loadSuffixFile reads the optional suffix rule table. Columns are
// category, stem constraint, substitution, suffix, tag delta and an
// optional chain, tab separated, with "-" standing for an empty
// constraint or substitution. The trie keys rules by reversed suffix;
// each bucket is sorted by substitution length so shorter stems try
// first.
func (lx *Lexicon) loadSuffixFile() error {
	path := filepath.Join(lx.dir, SuffixFile)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Debugf("No %s, skipping", SuffixFile)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer file.Close()

	buckets := make(map[string][]lex.SuffixRule)
	count := 0
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if skipLine(line) {
			continue
		}
		rule, err := parseSuffixRule(line)
		if err != nil {
			return fmt.Errorf("lexicon: %s:%d: %w", path, lineNo, err)
		}
		key := reverseString(strings.ToLower(rule.Suffix))
		buckets[key] = append(buckets[key], rule)
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("lexicon: reading %s: %w", path, err)
	}

	trie := patricia.NewTrie()
	for key, rules := range buckets {
		sort.SliceStable(rules, func(i, j int) bool {
			return utf8.RuneCountInString(rules[i].Substitution) <
				utf8.RuneCountInString(rules[j].Substitution)
		})
		trie.Set(patricia.Prefix(key), rules)
	}

	lx.suffixes = trie
	if err := lx.remember(path); err != nil {
		return err
	}
	log.Debugf("Loaded %s: %d rules", SuffixFile, count)
	return nil
}

func parseSuffixRule(line string) (lex.SuffixRule, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 || len(fields) > 6 {
		return lex.SuffixRule{}, fmt.Errorf("expected 5 or 6 columns, got %d", len(fields))
	}
	rule := lex.SuffixRule{
		Category:     fields[0],
		Substitution: blankDash(fields[2]),
		Suffix:       fields[3],
		TagDelta:     fields[4],
	}
	if rule.Suffix == "" {
		return lex.SuffixRule{}, fmt.Errorf("empty suffix")
	}
	if pat := blankDash(fields[1]); pat != "" {
		re, err := regexp.Compile("(?:" + pat + ")$")
		if err != nil {
			return lex.SuffixRule{}, fmt.Errorf("constraint %q: %w", pat, err)
		}
		rule.Constraint = re
	}
	if len(fields) == 6 {
		rule.Chain = fields[5]
	}
	return rule, nil
}

// blankDash maps the "-" placeholder to an empty column.
func blankDash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// ExportTable writes a word table back out in the lexicon text format,
// directives first, entries sorted by key.
func (lx *Lexicon) ExportTable(name string, w io.Writer) error {
	var table *wordTable
	for _, t := range lx.tables {
		if t.name == name {
			table = t
			break
		}
	}
	if table == nil {
		return fmt.Errorf("lexicon: no table %q", name)
	}

	bw := bufio.NewWriter(w)
	if table.defaultTag != "" {
		fmt.Fprintf(bw, "!default %s\n", table.defaultTag)
	}
	if len(table.stopTags) > 0 {
		fmt.Fprintf(bw, "!stop %s\n", strings.Join(table.stopTags, " "))
	}

	keys := make([]string, 0, len(table.entries))
	for key := range table.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rec := table.entries[key]
		if rec.Flags != "" {
			fmt.Fprintf(bw, "%s\t%s\t%s\n", rec.Word, rec.Tag, rec.Flags)
		} else {
			fmt.Fprintf(bw, "%s\t%s\n", rec.Word, rec.Tag)
		}
	}
	return bw.Flush()
}
