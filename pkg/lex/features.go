package lex

import (
	"sort"
	"strings"
)

// Composite tags are a core followed by feature names, joined with "+":
// "v+inf", "s+f+pl". A suffix rule contributes a delta in the same
// syntax extended with "-" for removal, and may open with a replacement
// core: "-f-n+m" keeps the core and swaps gender features, "v+part"
// replaces the core outright.

type featOp struct {
	add  bool
	name string
}

// MergeTags applies a suffix rule's tag delta to a resolved base tag and
// returns the canonical composite: core first, features sorted. rawTag,
// when non-empty, is the unsimplified composite from an earlier merge and
// takes precedence over tag as the base, so chained suffixes stack.
func MergeTags(tag, rawTag, delta string) string {
	base := tag
	if rawTag != "" {
		base = rawTag
	}
	core, feats := splitComposite(base)
	newCore, ops := parseDelta(delta)
	if newCore != "" {
		core = newCore
	}
	for _, op := range ops {
		if op.add {
			feats[op.name] = struct{}{}
		} else {
			delete(feats, op.name)
		}
	}
	if len(feats) == 0 {
		return core
	}
	names := make([]string, 0, len(feats))
	for name := range feats {
		names = append(names, name)
	}
	sort.Strings(names)
	return core + "+" + strings.Join(names, "+")
}

// splitComposite breaks "core+f1+f2" into the core and a feature set.
func splitComposite(tag string) (string, map[string]struct{}) {
	parts := strings.Split(tag, "+")
	feats := make(map[string]struct{}, len(parts)-1)
	for _, f := range parts[1:] {
		if f != "" {
			feats[f] = struct{}{}
		}
	}
	return parts[0], feats
}

// parseDelta reads an optional replacement core followed by signed
// feature operations. Removing a feature the base never had is a no-op.
func parseDelta(delta string) (string, []featOp) {
	i := strings.IndexAny(delta, "+-")
	if i < 0 {
		return delta, nil
	}
	core := delta[:i]
	rest := delta[i:]
	var ops []featOp
	for rest != "" {
		add := rest[0] == '+'
		rest = rest[1:]
		j := strings.IndexAny(rest, "+-")
		name := rest
		if j >= 0 {
			name, rest = rest[:j], rest[j:]
		} else {
			rest = ""
		}
		if name != "" {
			ops = append(ops, featOp{add: add, name: name})
		}
	}
	return core, ops
}
