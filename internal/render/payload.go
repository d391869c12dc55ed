package render

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"

	"parks-geojson/internal/park"
)

// Payload is what the map page receives as window.PARK_DATA.
type Payload struct {
	GlobalID   string        `json:"global_id"`
	Geometry   park.Geometry `json:"geometry"`
	Info       park.Info     `json:"info"`
	Amenities  []string      `json:"amenities"`
	Activities []string      `json:"activities"`
	// BBox is [minLon, minLat, maxLon, maxLat]; omitted when the geometry is empty or unreadable.
	BBox []float64 `json:"bbox,omitempty"`
}

// NewPayload builds the payload of a park. Empty geometry is passed through as
// {type, coordinates: []} and never fails.
func NewPayload(p park.Park) Payload {
	geom := p.Geometry
	if len(geom.Coordinates) == 0 {
		geom.Coordinates = json.RawMessage("[]")
	}
	if geom.Type == "" {
		geom.Type = park.DefaultGeometryType
	}
	return Payload{
		GlobalID:   p.GlobalID,
		Geometry:   geom,
		Info:       p.Info,
		Amenities:  nonNil(p.Amenities),
		Activities: nonNil(p.Activities),
		BBox:       bbox(geom),
	}
}

func bbox(g park.Geometry) []float64 {
	if g.Empty() {
		return nil
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return nil
	}
	gg, err := geojson.UnmarshalGeometry(raw)
	if err != nil || gg.Geometry() == nil {
		return nil
	}
	b := gg.Geometry().Bound()
	return []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
