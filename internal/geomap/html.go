// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Interactive street map generation.
//
// Renders the aligned sample sequence as a self-contained Leaflet HTML page:
// one marker per sample with all four camera views in the popup, and a
// polyline tracing the drive.

package geomap

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"camsync/internal/report"
)

// Marker is one map marker with its four camera views.
type Marker struct {
	SampleIndex       int
	Lat               float64
	Lon               float64
	FrontRightImage   string
	FrontLeftImage    string
	SideRightImage    string
	SideLeftImage     string
	LowSyncConfidence bool
}

// mapContext is the data handed to the HTML template.
type mapContext struct {
	Title     string
	Generated string
	CenterLat float64
	CenterLon float64
	Markers   []Marker
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .hdr { position: absolute; z-index: 1000; left: 50px; top: 10px;
         background: white; padding: 4px 10px; border-radius: 3px; }
  .views { display: grid; grid-template-columns: 1fr 1fr; gap: 5px; text-align: center; }
  .views img { max-width: 150px; max-height: 150px; }
</style>
</head>
<body>
<div class="hdr"><b>{{.Title}}</b><br>Generated {{.Generated}} &middot; {{len .Markers}} locations</div>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], 17);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var path = [];
{{range .Markers}}
path.push([{{.Lat}}, {{.Lon}}]);
L.marker([{{.Lat}}, {{.Lon}}]).addTo(map)
  .bindTooltip('Sample {{.SampleIndex}}{{if .LowSyncConfidence}} (low sync confidence){{end}}')
  .bindPopup('<div class="views">' +
    '<div><p><b>Front Right</b></p><img src="{{.FrontRightImage}}"></div>' +
    '<div><p><b>Front Left</b></p><img src="{{.FrontLeftImage}}"></div>' +
    '<div><p><b>Side Right</b></p><img src="{{.SideRightImage}}"></div>' +
    '<div><p><b>Side Left</b></p><img src="{{.SideLeftImage}}"></div>' +
    '</div>', {maxWidth: 400});
{{end}}
L.polyline(path, {color: 'red', weight: 3, opacity: 0.7}).addTo(map);
map.on('click', function(e) {
  console.log('Clicked at', e.latlng.lat.toFixed(6), e.latlng.lng.toFixed(6));
});
</script>
</body>
</html>
`))

// WriteMap renders the interactive map for a run report.
//
// Samples extracted without a GPS fix contribute nothing; a run with no
// usable coordinates is an error since there is nothing to place on the map.
func WriteMap(w io.Writer, rep *report.Report, title string) error {
	markers := make([]Marker, 0, len(rep.Samples))
	var sumLat, sumLon float64
	for _, s := range rep.Samples {
		if s.NoGps {
			continue
		}
		markers = append(markers, Marker{
			SampleIndex:       s.SampleIndex,
			Lat:               s.Lat,
			Lon:               s.Lon,
			FrontRightImage:   s.FrontRightImage,
			FrontLeftImage:    s.FrontLeftImage,
			SideRightImage:    s.SideRightImage,
			SideLeftImage:     s.SideLeftImage,
			LowSyncConfidence: s.LowSyncConfidence,
		})
		sumLat += s.Lat
		sumLon += s.Lon
	}
	if len(markers) == 0 {
		return fmt.Errorf("no samples with valid coordinates to map")
	}

	ctx := mapContext{
		Title:     title,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		CenterLat: sumLat / float64(len(markers)),
		CenterLon: sumLon / float64(len(markers)),
		Markers:   markers,
	}
	return mapTemplate.Execute(w, ctx)
}
