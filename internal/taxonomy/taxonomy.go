// Package taxonomy maps source property fields to controlled-vocabulary slugs for park
// amenities and activities, and restricts slug lists to those vocabularies.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category names a vocabulary.
type Category string

const (
	Amenities  Category = "amenities"
	Activities Category = "activities"
)

// Categories lists every vocabulary in storage order.
var Categories = []Category{Amenities, Activities}

// FieldSlug pairs a source property field with the slug it signals.
type FieldSlug struct {
	Field string `yaml:"field"`
	Slug  string `yaml:"slug"`
}

// Table is an immutable pair of field->slug tables plus their allowed-slug sets.
// Several fields may map to the same slug.
type Table struct {
	fields  map[Category][]FieldSlug
	allowed map[Category]map[string]struct{}
	order   map[Category][]string
}

// New builds a Table from ordered field maps. The inputs are copied.
func New(amenities, activities []FieldSlug) *Table {
	t := &Table{
		fields:  make(map[Category][]FieldSlug, 2),
		allowed: make(map[Category]map[string]struct{}, 2),
		order:   make(map[Category][]string, 2),
	}
	t.add(Amenities, amenities)
	t.add(Activities, activities)
	return t
}

func (t *Table) add(c Category, pairs []FieldSlug) {
	cp := make([]FieldSlug, len(pairs))
	copy(cp, pairs)
	t.fields[c] = cp

	set := make(map[string]struct{}, len(pairs))
	var order []string
	for _, p := range pairs {
		if _, ok := set[p.Slug]; ok {
			continue
		}
		set[p.Slug] = struct{}{}
		order = append(order, p.Slug)
	}
	t.allowed[c] = set
	t.order[c] = order
}

// Fields returns the ordered field map of a category. The slice is a copy.
func (t *Table) Fields(c Category) []FieldSlug {
	src := t.fields[c]
	out := make([]FieldSlug, len(src))
	copy(out, src)
	return out
}

// Allowed returns the allowed slugs of a category in table order.
func (t *Table) Allowed(c Category) []string {
	src := t.order[c]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// IsAllowed reports whether slug belongs to the category's vocabulary.
func (t *Table) IsAllowed(c Category, slug string) bool {
	_, ok := t.allowed[c][slug]
	return ok
}

// FilterAllowed keeps the candidates that belong to the category's vocabulary,
// in first-seen order and without duplicates. Unknown slugs and unknown
// categories are dropped without error. The result is never nil.
func (t *Table) FilterAllowed(candidates []string, c Category) []string {
	set := t.allowed[c]
	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, s := range candidates {
		if _, ok := set[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Label turns a slug into a display label: "park_picnic_tables" -> "Picnic tables".
func Label(slug string) string {
	s := strings.TrimPrefix(slug, "park_")
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type fileFormat struct {
	Amenities  []FieldSlug `yaml:"amenities"`
	Activities []FieldSlug `yaml:"activities"`
}

// Load reads a YAML vocabulary file:
//
//	amenities:
//	  - field: PARKING
//	    slug: park_parking
//	activities:
//	  - field: SOCCFOOT
//	    slug: park_soccer
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes the YAML vocabulary format accepted by Load.
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	for _, c := range []struct {
		name  Category
		pairs []FieldSlug
	}{{Amenities, f.Amenities}, {Activities, f.Activities}} {
		for i, p := range c.pairs {
			if p.Field == "" || p.Slug == "" {
				return nil, fmt.Errorf("taxonomy: %s[%d]: field and slug are required", c.name, i)
			}
		}
	}
	return New(f.Amenities, f.Activities), nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
