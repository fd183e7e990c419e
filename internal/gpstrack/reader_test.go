// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gpstrack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixMetadataXML is a trimmed down exiftool -ee -G3 -X dump with a timed GPS
// track in the Track4 namespace.
const fixMetadataXML = `<?xml version='1.0' encoding='UTF-8'?>
<rdf:RDF xmlns:rdf='http://www.w3.org/1999/02/22-rdf-syntax-ns#'>
<rdf:Description rdf:about=''
  xmlns:Track4='http://ns.exiftool.org/QuickTime/Track4/1.0/'>
 <Track4:GPSDateTime>2023:05:12 14:30:00.000Z</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 23.40&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.00&quot; W</Track4:GPSLongitude>
 <Track4:GPSDateTime>2023:05:12 14:30:00.100Z</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 23.76&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.36&quot; W</Track4:GPSLongitude>
 <Track4:GPSDateTime>2023:05:12 14:30:00.200Z</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 24.12&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.72&quot; W</Track4:GPSLongitude>
</rdf:Description>
</rdf:RDF>`

func Test_Parse(t *testing.T) {
	stream, err := Parse(strings.NewReader(fixMetadataXML))
	require.NoError(t, err)
	require.Len(t, stream, 3)

	// Timestamps normalized to offsets from the first fix.
	assert.InDelta(t, 0, stream[0].Timestamp, 1e-9)
	assert.InDelta(t, 0.1, stream[1].Timestamp, 1e-9)
	assert.InDelta(t, 0.2, stream[2].Timestamp, 1e-9)

	// 34 deg 38' 23.40" S is -34.639833 decimal.
	assert.InDelta(t, -34.639833, stream[0].Coordinate.Lat, 1e-6)
	assert.InDelta(t, -58.67, stream[0].Coordinate.Lon, 1e-6)

	for i, r := range stream {
		assert.Equal(t, i, r.SourceIndex)
		assert.False(t, r.Wallclock.IsZero(), "Wallclock must carry absolute GPS time")
	}

	assert.InDelta(t, 0.2, stream.Duration(), 1e-9)
}

func Test_Parse_DropsRegressingTimestamps(t *testing.T) {
	payload := `<rdf:RDF xmlns:rdf='http://www.w3.org/1999/02/22-rdf-syntax-ns#'>
<rdf:Description rdf:about='' xmlns:Track4='http://ns.exiftool.org/QuickTime/Track4/1.0/'>
 <Track4:GPSDateTime>2023:05:12 14:30:01</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 23.40&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.00&quot; W</Track4:GPSLongitude>
 <Track4:GPSDateTime>2023:05:12 14:30:00</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 23.76&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.36&quot; W</Track4:GPSLongitude>
 <Track4:GPSDateTime>2023:05:12 14:30:02</Track4:GPSDateTime>
 <Track4:GPSLatitude>34 deg 38' 24.12&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.72&quot; W</Track4:GPSLongitude>
</rdf:Description>
</rdf:RDF>`

	stream, err := Parse(strings.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, stream, 2, "Regressing fix should be dropped")
	assert.InDelta(t, 0, stream[0].Timestamp, 1e-9)
	assert.InDelta(t, 1.0, stream[1].Timestamp, 1e-9)
}

func Test_Parse_NoGpsData(t *testing.T) {
	tests := map[string]string{
		"Empty RDF": `<rdf:RDF xmlns:rdf='http://www.w3.org/1999/02/22-rdf-syntax-ns#'>
<rdf:Description rdf:about=''></rdf:Description>
</rdf:RDF>`,
		"Coordinates without datetime": `<rdf:RDF xmlns:rdf='http://www.w3.org/1999/02/22-rdf-syntax-ns#'>
<rdf:Description rdf:about='' xmlns:Track4='http://ns.exiftool.org/QuickTime/Track4/1.0/'>
 <Track4:GPSLatitude>34 deg 38' 23.40&quot; S</Track4:GPSLatitude>
 <Track4:GPSLongitude>58 deg 40' 12.00&quot; W</Track4:GPSLongitude>
</rdf:Description>
</rdf:RDF>`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(payload))
			assert.ErrorIs(t, err, ErrNoGpsData)
		})
	}
}

func Test_Parse_MalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader("<rdf:RDF><unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoGpsData)
}

func Test_parseDMSCoordinate(t *testing.T) {
	tests := map[string]struct {
		given string
		want  float64
	}{
		"South latitude":   {given: `34 deg 38' 23.40" S`, want: -34.639833},
		"West longitude":   {given: `58 deg 40' 12.00" W`, want: -58.67},
		"North latitude":   {given: `51 deg 30' 0.00" N`, want: 51.5},
		"East longitude":   {given: `0 deg 7' 39.00" E`, want: 0.1275},
		"Leading spaces":   {given: `  34 deg 38' 23.40" S `, want: -34.639833},
		"Zero coordinate":  {given: `0 deg 0' 0.00" N`, want: 0},
		"Sub-second value": {given: `34 deg 38' 23.46" S`, want: -34.63985},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseDMSCoordinate(tc.given)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}

func Test_parseDMSCoordinate_Errors(t *testing.T) {
	tests := map[string]string{
		"Empty string":      "",
		"Decimal degrees":   "-34.639833",
		"Missing direction": `34 deg 38' 23.40"`,
		"Bad direction":     `34 deg 38' 23.40" Q`,
		"Garbage":           "not a coordinate at all",
	}

	for name, given := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseDMSCoordinate(given)
			assert.Error(t, err)
		})
	}
}

func Test_parseExifTime(t *testing.T) {
	tests := map[string]string{
		"With millis and zone": "2023:05:12 14:30:00.100Z",
		"Without millis":       "2023:05:12 14:30:00",
		"Angle bracket noise":  "<2023:05:12 14:30:00Z>",
	}

	for name, given := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseExifTime(given)
			require.NoError(t, err)
			assert.Equal(t, 2023, got.Year())
			assert.Equal(t, 30, got.Minute())
		})
	}

	t.Run("Unparseable", func(t *testing.T) {
		_, err := parseExifTime("12/05/2023 14:30")
		assert.ErrorContains(t, err, "parsing GPS timestamp")
	})
}

func Test_Stream_Duration(t *testing.T) {
	assert.Zero(t, Stream{}.Duration())
	assert.Zero(t, Stream{{Timestamp: 5}}.Duration())

	s := Stream{{Timestamp: 1.5}, {Timestamp: 4.0}}
	assert.InDelta(t, 2.5, s.Duration(), 1e-9)
}
