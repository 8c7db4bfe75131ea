package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arvhem/wordtag/pkg/lex"
)

func writeLexFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testLexiconDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeLexFile(t, dir, "core.lex",
		"# core table\n"+
			"!default w\n"+
			"!stop det punct\n"+
			"rot\taa\n"+
			"Rot\tnp\n"+
			"red\taa\n"+
			"happy\taa\n"+
			"baby\ts\n"+
			"eine\tdet\n"+
			".\tpunct\ts\n"+
			"plain\n")
	writeLexFile(t, dir, "extra.lex",
		"rot\tv\n")
	writeLexFile(t, dir, PrefixFile,
		"un\tpf\n"+
			"über\tpf\n")
	writeLexFile(t, dir, CompoundFile,
		"haus\ts\n"+
			"hausbau\ts\n")
	writeLexFile(t, dir, SuffixFile,
		"nom\t-\t-\tness\ts\n"+
			"pl\t-\ty\ties\t+pl\n"+
			"decl\t-\t-\ten\t+pl\n"+
			"inf\t-\te\ten\tv\tx\n"+
			"decl\t-\t-\ts\t+c\n")
	return dir
}

func TestOpenAndLookup(t *testing.T) {
	lx, err := Open(testLexiconDir(t), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// tables load in sorted name order: core before extra
	if got := lx.Tables(); len(got) != 2 || got[0] != "core" || got[1] != "extra" {
		t.Fatalf("Expected tables [core extra], got %v", got)
	}

	// at most one record per table; the later core.lex line for the
	// same key replaced the earlier one
	recs := lx.LookupExact("rot")
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records for 'rot', got %v", recs)
	}
	if recs[0].Tag != "np" || recs[1].Tag != "v" {
		t.Errorf("Record order wrong: %v", recs)
	}
	if recs[0].Word != "Rot" {
		t.Errorf("Stored written form lost: %v", recs[0])
	}

	// the bare line picks up the table default tag
	if recs := lx.LookupExact("plain"); len(recs) != 1 || recs[0].Tag != "w" {
		t.Errorf("Default tag not applied: %v", recs)
	}

	// flags column
	if recs := lx.LookupExact("."); len(recs) != 1 || !recs[0].Stop {
		t.Errorf("Stop flag not parsed: %v", recs)
	}

	if tags := lx.DeclaredStopTags(); len(tags) != 2 || tags[0] != "det" || tags[1] != "punct" {
		t.Errorf("Expected stop tags [det punct], got %v", tags)
	}

	if lx.WordCount() == 0 {
		t.Errorf("WordCount is zero")
	}
}

func TestBuiltinDefaultTag(t *testing.T) {
	dir := t.TempDir()
	writeLexFile(t, dir, "core.lex", "plain\n")

	lx, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if recs := lx.LookupExact("plain"); len(recs) != 1 || recs[0].Tag != DefaultWordTag {
		t.Errorf("Expected built-in default tag, got %v", recs)
	}
}

func TestLeadingCandidatesLongestFirst(t *testing.T) {
	lx, err := Open(testLexiconDir(t), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	cands := lx.CompoundCandidates("hausbauplan")
	if len(cands) != 2 {
		t.Fatalf("Expected 2 candidates, got %v", cands)
	}
	if cands[0].Fragment != "hausbau" || cands[1].Fragment != "haus" {
		t.Errorf("Expected longest first, got %v", cands)
	}

	if cands := lx.PrefixCandidates("unhappy"); len(cands) != 1 || cands[0].Fragment != "un" {
		t.Errorf("Prefix candidates wrong: %v", cands)
	}
	if cands := lx.PrefixCandidates("Überbau"); len(cands) != 1 || cands[0].Fragment != "über" {
		t.Errorf("Case-insensitive fragment match failed: %v", cands)
	}
	if cands := lx.PrefixCandidates("rot"); cands != nil {
		t.Errorf("Expected no candidates, got %v", cands)
	}
}

func TestSuffixCandidateOrder(t *testing.T) {
	lx, err := Open(testLexiconDir(t), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// babies ends both "ies" and "s": longest suffix first
	rules := lx.SuffixCandidates("babies")
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %v", rules)
	}
	if rules[0].Suffix != "ies" || rules[1].Suffix != "s" {
		t.Errorf("Expected longest suffix first, got %v", rules)
	}

	// within one suffix, the shorter substitution (shorter stem) first
	rules = lx.SuffixCandidates("laufen")
	var en []lex.SuffixRule
	for _, r := range rules {
		if r.Suffix == "en" {
			en = append(en, r)
		}
	}
	if len(en) != 2 || en[0].Substitution != "" || en[1].Substitution != "e" {
		t.Errorf("Substitution order wrong: %v", en)
	}
	if en[1].Chain != "x" {
		t.Errorf("Chain column lost: %v", en[1])
	}
}

func TestOpenErrors(t *testing.T) {
	testCases := []struct {
		name        string
		file        string
		content     string
		description string
	}{
		{"bad.lex", "bad.lex", "!bogus x\n", "Unknown directive"},
		{"bad.lex", "bad.lex", "a\tb\tc\td\n", "Too many columns"},
		{"bad.lex", "bad.lex", "\taa\n", "Empty word"},
		{"bad.lex", SuffixFile, "nom\t-\tness\ts\n", "Suffix rule missing a column"},
		{"bad.lex", SuffixFile, "nom\t(\t-\tness\ts\n", "Unbalanced constraint"},
		{"bad.lex", SuffixFile, "nom\t-\t-\t\ts\n", "Empty suffix literal"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			dir := t.TempDir()
			writeLexFile(t, dir, "ok.lex", "rot\taa\n")
			writeLexFile(t, dir, tc.file, tc.content)
			names := []string{"ok"}
			if tc.file == "bad.lex" {
				names = append(names, "bad")
			}
			if _, err := Open(dir, Options{Tables: names}); err == nil {
				t.Errorf("Expected error for %s", tc.description)
			}
		})
	}
}

func TestOpenEmptyDir(t *testing.T) {
	if _, err := Open(t.TempDir(), Options{}); err == nil {
		t.Errorf("Expected error for directory without tables")
	}
}

func TestOpenMissingNamedTable(t *testing.T) {
	if _, err := Open(t.TempDir(), Options{Tables: []string{"nosuch"}}); err == nil {
		t.Errorf("Expected error for missing named table")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeLexFile(t, dir, "core.lex", "rot\taa\n")

	lx, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if recs := lx.LookupExact("blargh"); len(recs) != 0 {
		t.Fatalf("Unexpected hit before reload: %v", recs)
	}

	// untouched files stay put
	changed, err := lx.Reload()
	if err != nil || changed {
		t.Fatalf("Expected no-op reload, got changed=%v err=%v", changed, err)
	}

	writeLexFile(t, dir, "core.lex", "rot\taa\nblargh\ts\n")
	bump := lx.mtimes[path].Add(2 * time.Second)
	if err := os.Chtimes(path, bump, bump); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	changed, err = lx.Reload()
	if err != nil || !changed {
		t.Fatalf("Expected reload, got changed=%v err=%v", changed, err)
	}
	if recs := lx.LookupExact("blargh"); len(recs) != 1 || recs[0].Tag != "s" {
		t.Errorf("Reloaded data not visible: %v", recs)
	}

	// an optional file created after Open is picked up
	writeLexFile(t, dir, PrefixFile, "un\tpf\n")
	changed, err = lx.Reload()
	if err != nil || !changed {
		t.Fatalf("Expected reload for new prefix file, got changed=%v err=%v", changed, err)
	}
	if cands := lx.PrefixCandidates("unhappy"); len(cands) != 1 {
		t.Errorf("New prefix file not loaded: %v", cands)
	}
}

func TestExportTable(t *testing.T) {
	lx, err := Open(testLexiconDir(t), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var buf strings.Builder
	if err := lx.ExportTable("core", &buf); err != nil {
		t.Fatalf("ExportTable failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"!default w", "!stop det punct", "Rot\tnp", ".\tpunct\ts"} {
		if !strings.Contains(out, want) {
			t.Errorf("Export missing %q:\n%s", want, out)
		}
	}

	// the exported text parses back to the same records
	dir := t.TempDir()
	writeLexFile(t, dir, "core.lex", out)
	back, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Reopening export failed: %v", err)
	}
	if recs := back.LookupExact("rot"); len(recs) != 1 || recs[0].Tag != "np" {
		t.Errorf("Roundtrip lost records: %v", recs)
	}
	if tags := back.DeclaredStopTags(); len(tags) != 2 {
		t.Errorf("Roundtrip lost stop tags: %v", tags)
	}

	if err := lx.ExportTable("nosuch", &buf); err == nil {
		t.Errorf("Expected error for unknown table")
	}
}

// the lexicon drives the resolver end to end
func TestLexiconWithEngine(t *testing.T) {
	lx, err := Open(testLexiconDir(t), Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	eng, err := lex.New(lx, lex.Options{})
	if err != nil {
		t.Fatalf("lex.New failed: %v", err)
	}

	if tok := eng.Resolve("unhappy"); tok.Tag != "aa" || tok.Trace != "un+happy" {
		t.Errorf("Prefix resolution failed: %+v", tok)
	}
	if tok := eng.Resolve("redness"); tok.Tag != "s" || tok.Trace != "red+ness" {
		t.Errorf("Suffix resolution failed: %+v", tok)
	}
	if tok := eng.Resolve("babies"); tok.Tag != "s+pl" || tok.Trace != "baby+ies" {
		t.Errorf("Substituting suffix failed: %+v", tok)
	}
	if got := eng.DeclaredStopTags(); len(got) != 2 {
		t.Errorf("Declared stop tags not adopted: %v", got)
	}
}
