package lexicon

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Reload re-reads every lexicon file whose modification time moved since
// it was loaded, swapping tables and tries in place, and reports whether
// anything was replaced. An optional file created after Open is picked
// up too. A file that disappeared keeps its loaded data; a file that no
// longer parses aborts the reload with the previous data still live.
func (lx *Lexicon) Reload() (bool, error) {
	changed := false

	for i, t := range lx.tables {
		if !lx.isStale(t.path) {
			continue
		}
		table, err := parseWordTable(t.path, t.name, lx.defaultTag)
		if err != nil {
			return changed, err
		}
		lx.tables[i] = table
		if err := lx.remember(t.path); err != nil {
			return changed, err
		}
		log.Debugf("Reloaded table %s: %d words", t.name, len(table.entries))
		changed = true
	}

	if lx.isStale(filepath.Join(lx.dir, PrefixFile)) {
		if err := lx.loadAffixFile(PrefixFile, &lx.prefixes); err != nil {
			return changed, err
		}
		changed = true
	}
	if lx.isStale(filepath.Join(lx.dir, CompoundFile)) {
		if err := lx.loadAffixFile(CompoundFile, &lx.compounds); err != nil {
			return changed, err
		}
		changed = true
	}
	if lx.isStale(filepath.Join(lx.dir, SuffixFile)) {
		if err := lx.loadSuffixFile(); err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

// isStale reports whether path changed on disk since it was recorded. A
// path never recorded counts as stale once the file exists.
func (lx *Lexicon) isStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Stat %s failed: %v", path, err)
		} else if _, loaded := lx.mtimes[path]; loaded {
			log.Warnf("Lexicon file %s disappeared, keeping loaded data", path)
		}
		return false
	}
	loadedAt, loaded := lx.mtimes[path]
	if !loaded {
		return true
	}
	return info.ModTime().After(loadedAt)
}
