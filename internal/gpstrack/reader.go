// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Extraction of the embedded GPS track from exiftool RDF/XML metadata dumps.

package gpstrack

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"camsync/internal/geo"
	"camsync/internal/logging"
	"camsync/internal/tools"
)

// ErrNoGpsData signals that a video carries no usable GPS track. This is a
// recoverable condition: callers may proceed frame-extraction-only.
var ErrNoGpsData = errors.New("no GPS data found in video metadata")

// Extract runs exiftool on the given video and parses the embedded GPS track.
func Extract(videoFile, exiftoolPath string) (Stream, error) {
	out, err := tools.ExiftoolExtractXML(videoFile, exiftoolPath)
	if err != nil {
		return nil, fmt.Errorf("extracting metadata for GPS track: %w", err)
	}
	return Parse(bytes.NewReader(out))
}

// Parse reads an exiftool -X metadata dump and assembles the GPS stream.
//
// The timed GPS track comes as repeating GPSDateTime/GPSLatitude/GPSLongitude
// element triples in a TrackN namespace. Each latitude/longitude pair is
// attributed to the most recent GPSDateTime seen before it. Records with
// unparseable coordinates are skipped, records whose timestamp regresses are
// dropped with a warning so downstream matching only ever sees non-decreasing
// input. Timestamps are normalized to offsets in seconds from the first fix.
func Parse(r io.Reader) (Stream, error) {
	dec := xml.NewDecoder(r)

	var stream Stream
	var current time.Time
	var haveTime bool
	var first time.Time
	var lat float64
	var haveLat bool
	dropped := 0

	var element string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing metadata XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			element = t.Name.Local
		case xml.EndElement:
			element = ""
		case xml.CharData:
			text := string(t)
			switch element {
			case "GPSDateTime":
				ts, err := parseExifTime(text)
				if err != nil {
					logging.Warnf("Skipping GPS fix: %s", err)
					continue
				}
				current = ts
				haveTime = true
				haveLat = false
			case "GPSLatitude":
				v, err := parseDMSCoordinate(text)
				if err != nil {
					logging.Debugf("Ignoring latitude value: %s", err)
					continue
				}
				lat = v
				haveLat = true
			case "GPSLongitude":
				if !haveTime || !haveLat {
					continue
				}
				lon, err := parseDMSCoordinate(text)
				if err != nil {
					logging.Debugf("Ignoring longitude value: %s", err)
					continue
				}
				haveLat = false

				if len(stream) == 0 {
					first = current
				}
				ts := current.Sub(first).Seconds()
				if n := len(stream); n > 0 && ts < stream[n-1].Timestamp {
					dropped++
					logging.Warnf("Dropping GPS fix with regressing timestamp: %.3f < %.3f", ts, stream[n-1].Timestamp)
					continue
				}
				stream = append(stream, Record{
					Timestamp:   ts,
					Coordinate:  geo.RawCoordinate{Lat: lat, Lon: lon},
					SourceIndex: len(stream),
					Wallclock:   current,
				})
			}
		}
	}

	if dropped > 0 {
		logging.Warnf("Dropped %d non-monotonic GPS fixes", dropped)
	}
	if len(stream) == 0 {
		return nil, ErrNoGpsData
	}
	logging.Infof("Processed %d GPS data points spanning %.1f s", len(stream), stream.Duration())

	return stream, nil
}
