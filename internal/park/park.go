// Package park holds the canonical Park record shared by the import and render paths.
package park

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Park is the unit of persistence. Values are built once, by the feature mapper on import or by
// FromStored on the render path, and are not modified afterwards.
type Park struct {
	GlobalID   string   `json:"global_id"`
	Info       Info     `json:"info"`
	Geometry   Geometry `json:"geometry"`
	Amenities  []string `json:"amenities"`
	Activities []string `json:"activities"`
}

// Info is the descriptive part of a park shown in the map tooltip.
type Info struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Type    string `json:"type"`
	Size    string `json:"size"`
	URL     string `json:"url"`
}

// Geometry carries a GeoJSON geometry type and its coordinates verbatim.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Empty reports whether the geometry has no usable coordinates (missing, null, not an array, or []).
func (g Geometry) Empty() bool {
	if len(g.Coordinates) == 0 {
		return true
	}
	c := gjson.ParseBytes(g.Coordinates)
	if !c.IsArray() {
		return true
	}
	return len(c.Array()) == 0
}

// Fallback geometry type used when a stored geometry cannot be decoded.
const DefaultGeometryType = "Polygon"

// Stored is the flat shape of a persisted park record.
type Stored struct {
	GlobalID   string
	Title      string
	Info       Info
	Geometry   []byte
	Amenities  []string
	Activities []string
}

// FromStored rebuilds a Park from persisted fields.
// The name falls back to the record title; a geometry that does not decode
// falls back to an empty Polygon.
func FromStored(s Stored) Park {
	info := s.Info
	if info.Name == "" {
		info.Name = s.Title
	}

	geom := Geometry{Type: DefaultGeometryType, Coordinates: json.RawMessage("[]")}
	var decoded Geometry
	if len(s.Geometry) > 0 && json.Unmarshal(s.Geometry, &decoded) == nil {
		if decoded.Type != "" {
			geom.Type = decoded.Type
		}
		if len(decoded.Coordinates) > 0 && string(decoded.Coordinates) != "null" {
			geom.Coordinates = decoded.Coordinates
		}
	}

	return Park{
		GlobalID:   s.GlobalID,
		Info:       info,
		Geometry:   geom,
		Amenities:  nonNil(s.Amenities),
		Activities: nonNil(s.Activities),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
