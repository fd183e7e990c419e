// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// GPS track record related abstractions.

package gpstrack

import (
	"fmt"
	"math"
	"strings"
	"time"

	"camsync/internal/geo"
)

// NominalInterval is the expected spacing between consecutive GPS fixes in
// seconds. Action camera GPS units log at 10 Hz.
const NominalInterval = 0.1

// Record is a single GPS fix from the embedded track.
//
// Timestamp is a monotonic offset in seconds from the first fix of the
// stream. Records are immutable once read.
type Record struct {
	Timestamp   float64
	Coordinate  geo.RawCoordinate
	SourceIndex int
	// Wallclock is the absolute GPS time of the fix, kept for EXIF
	// embedding. The matching pipeline only ever uses Timestamp.
	Wallclock time.Time
}

// Stream is a time-ordered sequence of GPS records.
//
// Invariant: timestamps are non-decreasing. Parse enforces this by dropping
// regressing records.
type Stream []Record

// Duration returns time span covered by the stream in seconds.
func (s Stream) Duration() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Timestamp - s[0].Timestamp
}

// exifTimeLayouts cover exiftool's GPSDateTime formats, with and without
// fractional seconds.
var exifTimeLayouts = []string{
	"2006:01:02 15:04:05.999",
	"2006:01:02 15:04:05",
}

// parseExifTime parses exiftool style GPSDateTime value.
func parseExifTime(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "<>"))
	// Exiftool may append a timezone designator, GPS time is UTC.
	s = strings.TrimSuffix(s, "Z")
	var firstErr error
	for _, layout := range exifTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parsing GPS timestamp %q: %w", s, firstErr)
}

// dmsToDecimal converts degrees/minutes/seconds plus a compass direction to
// decimal degrees. West and South are negative.
func dmsToDecimal(degrees, minutes, seconds float64, direction string) float64 {
	dd := degrees + minutes/60 + seconds/3600
	if direction == "W" || direction == "S" {
		dd = -dd
	}
	// Keep the 6 decimal places precision of the source track, roughly 0.1 m.
	return math.Round(dd*1e6) / 1e6
}

// parseDMSCoordinate parses an exiftool style coordinate value, for example
// `34 deg 38' 23.40" S`. A zero value with non-nil error is returned for
// anything that does not look like a coordinate.
func parseDMSCoordinate(s string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 5 {
		return 0, fmt.Errorf("coordinate format incorrect: %q", s)
	}

	var degrees, minutes, seconds float64
	if _, err := fmt.Sscanf(fields[0], "%f", &degrees); err != nil {
		return 0, fmt.Errorf("coordinate degrees %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(strings.TrimSuffix(fields[2], "'"), "%f", &minutes); err != nil {
		return 0, fmt.Errorf("coordinate minutes %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(strings.TrimSuffix(fields[3], `"`), "%f", &seconds); err != nil {
		return 0, fmt.Errorf("coordinate seconds %q: %w", s, err)
	}

	direction := fields[4]
	switch direction {
	case "N", "S", "E", "W":
	default:
		return 0, fmt.Errorf("invalid direction %q in coordinate %q", direction, s)
	}

	return dmsToDecimal(degrees, minutes, seconds, direction), nil
}
