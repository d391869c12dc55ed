// Package mapper converts one decoded GeoJSON feature into a park.Park.
//
// Info fields are read from a prioritized, case-sensitive list of property keys (first
// non-empty wins). Amenities and activities come from two sources, merged in this order and
// then restricted to the vocabulary: explicit slug lists under properties.amenities /
// properties.activities (array or comma-separated string), and the taxonomy field map, where a
// field contributes its slug when its value reads as yes or positive (number > 0, or
// "yes"/"true"/"1" in any case).
package mapper

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"parks-geojson/internal/park"
	"parks-geojson/internal/taxonomy"
)

var (
	// ErrMissingGeometry rejects features without a geometry type and non-empty coordinates.
	ErrMissingGeometry = errors.New("missing or empty geometry")
	// ErrMissingGlobalID rejects features without any identifier.
	ErrMissingGlobalID = errors.New("missing global id")
)

// IsRejection reports whether err is one of the mapper's rejection errors.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingGeometry) || errors.Is(err, ErrMissingGlobalID)
}

// Feature is a decoded GeoJSON feature. Numbers are expected as json.Number
// (decoder with UseNumber) but float64 is accepted too.
type Feature = map[string]any

// globalIDKeys are the property keys consulted after feature.id, in priority order.
var globalIDKeys = []string{"GlobalID", "global_id", "globalid", "id"}

// InfoKeys lists, per info field, the property keys tried in order.
type InfoKeys struct {
	Name    []string
	Address []string
	Type    []string
	Size    []string
	URL     []string
}

// DefaultInfoKeys matches the reference exports first, then common lowercase and prefixed names.
func DefaultInfoKeys() InfoKeys {
	return InfoKeys{
		Name:    []string{"NAME", "name", "PARK_NAME", "Name"},
		Address: []string{"FULLADDR", "address", "PARK_ADDRESS", "Address"},
		Type:    []string{"TYPE", "type", "PARK_TYPE", "Type"},
		Size:    []string{"PARKAREA", "size", "PARK_SIZE", "Size"},
		URL:     []string{"PARKURL", "url", "PARK_URL", "Url", "external_url"},
	}
}

// Mapper holds the lookup tables used for every feature. It is safe for concurrent use.
type Mapper struct {
	tax  *taxonomy.Table
	keys InfoKeys
}

// New returns a Mapper using tax and the default info keys.
func New(tax *taxonomy.Table) *Mapper {
	return NewWithKeys(tax, DefaultInfoKeys())
}

// NewWithKeys returns a Mapper with custom info keys.
func NewWithKeys(tax *taxonomy.Table, keys InfoKeys) *Mapper {
	return &Mapper{tax: tax, keys: keys}
}

// FromFeature builds a Park or returns ErrMissingGeometry / ErrMissingGlobalID.
// Any other error means the geometry could not be re-encoded.
func (m *Mapper) FromFeature(f Feature) (*park.Park, error) {
	geom, ok := f["geometry"].(map[string]any)
	if !ok {
		return nil, ErrMissingGeometry
	}
	gtype, _ := geom["type"].(string)
	coords, ok := geom["coordinates"].([]any)
	if gtype == "" || !ok || len(coords) == 0 {
		return nil, ErrMissingGeometry
	}

	props, _ := f["properties"].(map[string]any)

	gid := GlobalID(f)
	if gid == "" {
		return nil, ErrMissingGlobalID
	}

	rawCoords, err := json.Marshal(coords)
	if err != nil {
		return nil, err
	}

	p := &park.Park{
		GlobalID: gid,
		Info: park.Info{
			Name:    firstString(props, m.keys.Name),
			Address: firstString(props, m.keys.Address),
			Type:    firstString(props, m.keys.Type),
			Size:    firstString(props, m.keys.Size),
			URL:     firstString(props, m.keys.URL),
		},
		Geometry: park.Geometry{
			Type:        gtype,
			Coordinates: rawCoords,
		},
		Amenities:  m.terms(props, taxonomy.Amenities),
		Activities: m.terms(props, taxonomy.Activities),
	}
	return p, nil
}

// GlobalID resolves the upsert key: feature.id, then properties GlobalID,
// global_id, globalid, id. The first non-empty value wins; "" means none.
func GlobalID(f Feature) string {
	if s, ok := scalarString(f["id"]); ok && s != "" {
		return s
	}
	props, _ := f["properties"].(map[string]any)
	for _, k := range globalIDKeys {
		if s, ok := scalarString(props[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func (m *Mapper) terms(props map[string]any, c taxonomy.Category) []string {
	candidates := explicitSlugs(props[string(c)])
	for _, fs := range m.tax.Fields(c) {
		if yesOrPositive(props[fs.Field]) {
			candidates = append(candidates, fs.Slug)
		}
	}
	return m.tax.FilterAllowed(candidates, c)
}

// explicitSlugs reads an array of slugs or a comma-separated string.
func explicitSlugs(v any) []string {
	var out []string
	switch x := v.(type) {
	case []any:
		for _, it := range x {
			if s, ok := scalarString(it); ok {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func firstString(props map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := scalarString(props[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

// scalarString coerces a JSON scalar to a string. true becomes "1" and false "",
// null and non-scalars report false.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return numberString(x), true
	case float64:
		return formatFloat(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		if x {
			return "1", true
		}
		return "", true
	}
	return "", false
}

// numberString keeps integer literals as written and spells other numbers
// in their shortest form, so 1e3 and 1000.0 both read as "1000".
func numberString(n json.Number) string {
	if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	if math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// yesOrPositive: numbers (and numeric strings) > 0, or "yes"/"true" ignoring case and spaces.
func yesOrPositive(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f > 0
	case float64:
		return x > 0
	case int:
		return x > 0
	case int64:
		return x > 0
	case string:
		s := strings.TrimSpace(x)
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f > 0
		}
		switch strings.ToLower(s) {
		case "yes", "true":
			return true
		}
	}
	return false
}
