package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTables []byte

// Registry is the immutable set of vocabulary tables. It is built once at
// startup and safe for concurrent reads without synchronization.
type Registry struct {
	tables map[Name]table
}

type table struct {
	byCode map[uint64]string
	byName map[string]uint64
}

// New validates the given tables and builds a Registry.
// Names must be non-empty and unique within a vocabulary.
func New(tables map[Name]map[uint64]string) (*Registry, error) {
	r := &Registry{tables: make(map[Name]table, len(tables))}
	for n, codes := range tables {
		if !n.IsValid() {
			return nil, fmt.Errorf("unknown vocabulary %q", n)
		}
		t := table{
			byCode: make(map[uint64]string, len(codes)),
			byName: make(map[string]uint64, len(codes)),
		}
		for code, name := range codes {
			if name == "" {
				return nil, fmt.Errorf("vocabulary %s: empty name for code %d", n, code)
			}
			if prev, dup := t.byName[name]; dup {
				return nil, fmt.Errorf("vocabulary %s: name %q used by codes %d and %d", n, name, prev, code)
			}
			t.byCode[code] = name
			t.byName[name] = code
		}
		r.tables[n] = t
	}
	return r, nil
}

// Parse builds a Registry from YAML. Every known vocabulary must be present.
func Parse(data []byte) (*Registry, error) {
	var raw map[Name]map[uint64]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse vocabulary tables: %w", err)
	}
	for _, n := range All {
		if len(raw[n]) == 0 {
			return nil, fmt.Errorf("vocabulary %q is missing or empty", n)
		}
	}
	return New(raw)
}

// Load reads vocabulary tables from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in tables.
func Default() (*Registry, error) {
	return Parse(defaultTables)
}

// MustDefault returns the built-in tables or panics.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the symbolic name registered for code.
func (r *Registry) Lookup(n Name, code uint64) (string, bool) {
	name, ok := r.tables[n].byCode[code]
	return name, ok
}

// Code returns the code registered for a symbolic name.
func (r *Registry) Code(n Name, name string) (uint64, bool) {
	code, ok := r.tables[n].byName[name]
	return code, ok
}

// Codes returns the registered codes of a vocabulary in ascending order.
func (r *Registry) Codes(n Name) []uint64 {
	t := r.tables[n]
	codes := make([]uint64, 0, len(t.byCode))
	for c := range t.byCode {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Len returns the number of entries in a vocabulary.
func (r *Registry) Len(n Name) int {
	return len(r.tables[n].byCode)
}
