package vocab

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table is the compiled vocabulary: synonym map, canonical set and the
// longest-first key order the normalizer scans in. Tables are immutable after
// construction and safe for concurrent reads.
type Table struct {
	synonyms   map[string]Component
	canonical  map[string]Component // keyed by exact canonical spelling
	components []Component
	// Synonym keys sorted longest first so the most specific variant wins
	// ("gps portatil" before "gps"). Computed once, not per call.
	keysByLength []string
}

var defaultTable = build(Components, synonyms)

// Default returns the builtin vocabulary table.
func Default() *Table { return defaultTable }

func build(components []Component, syn map[string]Component) *Table {
	t := &Table{
		synonyms:   make(map[string]Component, len(syn)),
		canonical:  make(map[string]Component, len(components)),
		components: append([]Component(nil), components...),
	}
	for _, c := range components {
		t.canonical[string(c)] = c
	}
	for k, v := range syn {
		t.synonyms[k] = v
	}
	t.keysByLength = make([]string, 0, len(t.synonyms))
	for k := range t.synonyms {
		t.keysByLength = append(t.keysByLength, k)
	}
	sort.Slice(t.keysByLength, func(i, j int) bool {
		a, b := t.keysByLength[i], t.keysByLength[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return t
}

// Components returns the canonical component set.
func (t *Table) Components() []Component {
	return append([]Component(nil), t.components...)
}

// Synonyms returns a copy of the synonym table, for embedding in prompts.
func (t *Table) Synonyms() map[string]Component {
	out := make(map[string]Component, len(t.synonyms))
	for k, v := range t.synonyms {
		out[k] = v
	}
	return out
}

type overrideFile struct {
	Components []string          `yaml:"components"`
	Synonyms   map[string]string `yaml:"synonyms"`
}

// LoadFile merges a YAML override file into the builtin tables and returns a
// new Table. The file may add canonical components and synonym entries;
// synonym values must name a canonical component.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: read %s: %w", path, err)
	}
	var ov overrideFile
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return nil, fmt.Errorf("vocab: parse %s: %w", path, err)
	}

	comps := append([]Component(nil), Components...)
	known := make(map[Component]bool, len(comps))
	for _, c := range comps {
		known[c] = true
	}
	for _, c := range ov.Components {
		cc := Component(c)
		if !known[cc] {
			comps = append(comps, cc)
			known[cc] = true
		}
	}

	syn := make(map[string]Component, len(synonyms)+len(ov.Synonyms))
	for k, v := range synonyms {
		syn[k] = v
	}
	for k, v := range ov.Synonyms {
		cc := Component(v)
		if !known[cc] {
			return nil, fmt.Errorf("vocab: synonym %q maps to unknown component %q", k, v)
		}
		syn[collapse(k)] = cc
	}
	return build(comps, syn), nil
}
