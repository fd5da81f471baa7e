// README: Immutable fixed-fare table loaded once from the versioned fares document.
package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const tableVersion = 1

//go:embed fares.yaml
var defaultFares []byte

var ErrInvalidTable = errors.New("invalid fare table")

type tableDoc struct {
	Version  int                 `yaml:"version"`
	Currency string              `yaml:"currency"`
	Classes  map[string]classDoc `yaml:"classes"`
	Base     []string            `yaml:"base"`
	Quick    []string            `yaml:"quick"`
	Fares    []fareDoc           `yaml:"fares"`
	Aliases  map[string]string   `yaml:"aliases"`
	Geocode  map[string]string   `yaml:"geocode"`
}

type classDoc struct {
	Title string `yaml:"title"`
	PerKm int    `yaml:"per_km"`
}

type fareDoc struct {
	Name    string `yaml:"name"`
	Economy int    `yaml:"economy"`
	Sedan   int    `yaml:"sedan"`
	Minivan int    `yaml:"minivan"`
}

// Table is read-only after construction and safe for concurrent use.
type Table struct {
	version  int
	currency string
	classes  map[VehicleClass]ClassInfo
	entries  map[string]Entry
	aliases  map[string]string
	known    map[string]string
	base     map[string]struct{}
	geocode  map[string]string
	quick    []string
}

// DefaultTable parses the fares document compiled into the binary.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultFares)
}

// LoadTable reads a fares document from path, or the built-in one when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fares file: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if doc.Version != tableVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidTable, doc.Version)
	}

	t := &Table{
		version:  doc.Version,
		currency: doc.Currency,
		classes:  make(map[VehicleClass]ClassInfo, len(Classes)),
		aliases:  make(map[string]string, len(doc.Aliases)),
		known:    make(map[string]string),
		base:     make(map[string]struct{}, len(doc.Base)),
		geocode:  make(map[string]string, len(doc.Geocode)),
	}
	if t.currency == "" {
		t.currency = "RUB"
	}
	for _, c := range Classes {
		cd, ok := doc.Classes[string(c)]
		if !ok {
			return nil, fmt.Errorf("%w: missing class %s", ErrInvalidTable, c)
		}
		if cd.PerKm <= 0 {
			return nil, fmt.Errorf("%w: class %s has rate %d", ErrInvalidTable, c, cd.PerKm)
		}
		t.classes[c] = ClassInfo{Title: cd.Title, PerKm: cd.PerKm}
	}

	entries := make([]Entry, 0, len(doc.Fares))
	for _, f := range doc.Fares {
		entries = append(entries, Entry{
			Name:   f.Name,
			Prices: Prices{Economy: f.Economy, Sedan: f.Sedan, Minivan: f.Minivan},
		})
	}
	if err := t.setEntries(entries); err != nil {
		return nil, err
	}

	for _, name := range doc.Base {
		key := Normalize(name)
		t.base[key] = struct{}{}
		t.known[key] = name
	}
	for raw, canonical := range doc.Aliases {
		key := Normalize(raw)
		if key == "" || canonical == "" {
			return nil, fmt.Errorf("%w: empty alias %q", ErrInvalidTable, raw)
		}
		if prev, dup := t.aliases[key]; dup && prev != canonical {
			return nil, fmt.Errorf("%w: alias %q maps to both %q and %q", ErrInvalidTable, raw, prev, canonical)
		}
		t.aliases[key] = canonical
	}
	for name, query := range doc.Geocode {
		t.geocode[Normalize(name)] = query
	}
	t.quick = append(t.quick, doc.Quick...)
	return t, nil
}

func (t *Table) setEntries(entries []Entry) error {
	t.entries = make(map[string]Entry, len(entries))
	for _, e := range entries {
		key := Normalize(e.Name)
		if key == "" {
			return fmt.Errorf("%w: fare without a name", ErrInvalidTable)
		}
		if _, dup := t.entries[key]; dup {
			return fmt.Errorf("%w: duplicate fare %q", ErrInvalidTable, e.Name)
		}
		for _, c := range Classes {
			if e.Prices.For(c) < 0 {
				return fmt.Errorf("%w: negative %s price for %q", ErrInvalidTable, c, e.Name)
			}
		}
		t.entries[key] = e
		t.known[key] = e.Name
	}
	return nil
}

// WithFares returns a copy of the table whose fixed fares are replaced by entries.
// Classes, aliases and base places are kept.
func (t *Table) WithFares(entries []Entry) (*Table, error) {
	cp := *t
	cp.known = make(map[string]string, len(t.known))
	for k, v := range t.known {
		if _, isFare := t.entries[k]; !isFare {
			cp.known[k] = v
		}
	}
	if err := cp.setEntries(entries); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (t *Table) Version() int     { return t.version }
func (t *Table) Currency() string { return t.currency }

func (t *Table) Class(c VehicleClass) ClassInfo {
	return t.classes[c]
}

// Canonical resolves a user-typed place to its display name: aliases first,
// then known fares and base places. Unknown input is returned trimmed.
func (t *Table) Canonical(raw string) string {
	key := Normalize(raw)
	if name, ok := t.aliases[key]; ok {
		return name
	}
	if name, ok := t.known[key]; ok {
		return name
	}
	return displayName(raw)
}

// Lookup is an exact key match after alias resolution. No fuzzy matching.
func (t *Table) Lookup(place string) (Entry, bool) {
	e, ok := t.entries[Normalize(t.Canonical(place))]
	return e, ok
}

// IsBase reports whether place is the service's home city or its airport.
func (t *Table) IsBase(place string) bool {
	_, ok := t.base[Normalize(t.Canonical(place))]
	return ok
}

// GeocodeQuery is the text sent to the geocoder for place.
func (t *Table) GeocodeQuery(place string) string {
	canonical := t.Canonical(place)
	if q, ok := t.geocode[Normalize(canonical)]; ok {
		return q
	}
	return canonical
}

func (t *Table) QuickPlaces() []string {
	return append([]string(nil), t.quick...)
}

// Entries returns the fixed fares sorted by name.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func displayName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
