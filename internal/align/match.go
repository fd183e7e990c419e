// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Nearest-in-time matching of planned frame samples to GPS records.

package align

import (
	"math"
	"sort"

	"camsync/internal/gpstrack"
)

// MatchedFrame pairs one planned frame with its nearest GPS record.
type MatchedFrame struct {
	Camera     Camera
	FrameIndex int
	// Timestamp of the frame on the shared timeline, seconds.
	Timestamp float64
	// Record is the nearest-in-time GPS fix.
	Record gpstrack.Record
	// Extrapolated marks a frame outside GPS coverage, clamped to a
	// boundary record.
	Extrapolated bool
	// LowConfidence marks a match inside a GPS coverage gap wider than
	// twice the nominal fix interval.
	LowConfidence bool
}

// Delta returns the absolute time difference between frame and matched fix.
func (m MatchedFrame) Delta() float64 {
	return math.Abs(m.Timestamp - m.Record.Timestamp)
}

// Match locates the nearest-in-time GPS record for one frame sample.
//
// Binary search for the insertion point of the frame timestamp, then the two
// adjacent records are compared and the one with the smaller absolute time
// difference wins; an exact tie breaks toward the earlier record. Frames
// before the first or after the last fix clamp to the boundary record and
// are flagged Extrapolated. Never fails: an empty stream yields a zero-record
// match flagged Extrapolated and LowConfidence. O(log n) per frame.
func Match(camera Camera, sample FrameSample, stream gpstrack.Stream) MatchedFrame {
	m := MatchedFrame{
		Camera:     camera,
		FrameIndex: sample.FrameIndex,
		Timestamp:  sample.Timestamp,
	}

	if len(stream) == 0 {
		m.Extrapolated = true
		m.LowConfidence = true
		return m
	}

	// Leftmost record with timestamp >= frame timestamp.
	i := sort.Search(len(stream), func(i int) bool {
		return stream[i].Timestamp >= sample.Timestamp
	})

	switch {
	case i == 0:
		m.Record = stream[0]
		m.Extrapolated = sample.Timestamp < stream[0].Timestamp
		if m.Extrapolated && m.Delta() > 2*gpstrack.NominalInterval {
			m.LowConfidence = true
		}
	case i == len(stream):
		m.Record = stream[len(stream)-1]
		m.Extrapolated = true
		if m.Delta() > 2*gpstrack.NominalInterval {
			m.LowConfidence = true
		}
	default:
		before, after := stream[i-1], stream[i]
		dBefore := sample.Timestamp - before.Timestamp
		dAfter := after.Timestamp - sample.Timestamp
		// Tie breaks toward the earlier record.
		if dBefore <= dAfter {
			m.Record = before
		} else {
			m.Record = after
		}
		// A coverage gap around the match point degrades confidence.
		if after.Timestamp-before.Timestamp > 2*gpstrack.NominalInterval {
			m.LowConfidence = true
		}
	}

	return m
}

// MatchAll matches every planned sample of one camera against the shared GPS
// stream. The stream is referenced read-only, never mutated.
func MatchAll(camera Camera, samples []FrameSample, stream gpstrack.Stream) []MatchedFrame {
	matched := make([]MatchedFrame, len(samples))
	for i, s := range samples {
		matched[i] = Match(camera, s, stream)
	}
	return matched
}
