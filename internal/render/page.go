package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"parks-geojson/internal/logger"
	"parks-geojson/internal/taxonomy"
)

//go:embed assets/parks-map.js
var mapScript string

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Payload}}{{or .Payload.Info.Name .Payload.GlobalID}}{{else}}Parks map{{end}}</title>
</head>
<body>
{{- if not .Payload}}
<p>No park found.</p>
{{- else}}
{{- if .MapsAPIKey}}
<div id="parks-map" style="width:100%;height:500px;"></div>
<script>window.PARK_DATA = {{.Payload}};</script>
<script src="https://maps.googleapis.com/maps/api/js?key={{.MapsAPIKey}}"></script>
<script>{{.Script}}</script>
{{- else}}
<p>Parks map is not configured. Set PARKS_MAPS_API_KEY to enable the map.</p>
{{- end}}
{{- range .Lists}}
<ul class="parks-geojson-{{.Category}}-list">{{range .Labels}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- end}}
</body>
</html>
`

type termList struct {
	Category string
	Labels   []string
}

type pageData struct {
	Payload    *Payload
	MapsAPIKey string
	Script     template.JS
	Lists      []termList
}

type pageBuilder struct {
	tmpl    *template.Template
	min     *minify.M
	mapsKey string
}

func newPageBuilder(mapsKey string) (*pageBuilder, error) {
	tmpl, err := template.New("park").Parse(pageTemplate)
	if err != nil {
		return nil, err
	}
	m := minify.New()
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &pageBuilder{tmpl: tmpl, min: m, mapsKey: mapsKey}, nil
}

// build renders and minifies a page; a minifier failure returns the unminified page.
func (b *pageBuilder) build(pl *Payload) ([]byte, error) {
	data := pageData{Payload: pl, MapsAPIKey: b.mapsKey, Script: template.JS(mapScript)}
	if pl != nil {
		data.Lists = termLists(pl)
	}
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	out, err := b.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		logger.L().Warn().Err(err).Msg("render_minify_error")
		return buf.Bytes(), nil
	}
	return out, nil
}

// termLists omits empty categories.
func termLists(pl *Payload) []termList {
	var out []termList
	for _, c := range taxonomy.Categories {
		slugs := pl.Amenities
		if c == taxonomy.Activities {
			slugs = pl.Activities
		}
		if len(slugs) == 0 {
			continue
		}
		labels := make([]string, 0, len(slugs))
		for _, s := range slugs {
			labels = append(labels, taxonomy.Label(s))
		}
		out = append(out, termList{Category: string(c), Labels: labels})
	}
	return out
}
