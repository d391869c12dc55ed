// Package schema checks that a parks GeoJSON document has the minimum shape the importer needs
// before any feature is mapped.
package schema

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Validate checks a parsed document and returns human-readable errors; an empty result means
// the document is valid. It never fails: unexpected shapes turn into messages.
//
// Constraint: when "features" is missing or not an array only that error (plus a root type
// error, if any) is reported, since per-feature checks are meaningless without it.
func Validate(data gjson.Result) []string {
	var errs []string

	if t := data.Get("type"); t.Type != gjson.String || t.Str != "FeatureCollection" {
		errs = append(errs, `Root must have "type": "FeatureCollection".`)
	}

	features := data.Get("features")
	if !present(features) {
		return append(errs, `Root must have "features" array.`)
	}
	if !features.IsArray() {
		return append(errs, `"features" must be an array.`)
	}

	for i, f := range features.Array() {
		if !f.IsObject() {
			errs = append(errs, fmt.Sprintf("Feature at index %d must be an object.", i))
			continue
		}
		errs = append(errs, ValidateFeature(f, i)...)
	}
	return errs
}

// ValidateFeature checks one feature object; index only qualifies the messages.
func ValidateFeature(f gjson.Result, index int) []string {
	var errs []string
	prefix := fmt.Sprintf("Feature[%d]: ", index)

	if t := f.Get("type"); t.Type != gjson.String || t.Str != "Feature" {
		errs = append(errs, prefix+`must have "type": "Feature".`)
	}

	if !nonEmpty(f.Get("id")) && !nonEmpty(f.Get("properties.GlobalID")) {
		errs = append(errs, prefix+`must have "id" or "properties.GlobalID" for upsert.`)
	}

	geometry := f.Get("geometry")
	if !present(geometry) {
		return append(errs, prefix+`must have "geometry" object.`)
	}
	if !geometry.IsObject() {
		return append(errs, prefix+`"geometry" must be an object.`)
	}

	if t := geometry.Get("type"); t.Type != gjson.String {
		errs = append(errs, prefix+`"geometry" must have "type" (string).`)
	}

	coords := geometry.Get("coordinates")
	switch {
	case !present(coords):
		errs = append(errs, prefix+`"geometry" must have "coordinates".`)
	case !coords.IsArray():
		errs = append(errs, prefix+`"geometry.coordinates" must be an array.`)
	}
	return errs
}

// present treats JSON null like a missing member.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// nonEmpty is present and not the empty string.
func nonEmpty(r gjson.Result) bool {
	if !present(r) {
		return false
	}
	return !(r.Type == gjson.String && r.Str == "")
}
