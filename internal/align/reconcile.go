// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Four-camera reconciliation onto one shared timeline.

package align

import (
	"camsync/internal/geo"
	"camsync/internal/gpstrack"
	"camsync/internal/logging"
)

// MaxSyncSpread is the allowed cross-camera timestamp spread within one
// aligned sample set: half of the GPS sampling interval.
const MaxSyncSpread = gpstrack.NominalInterval / 2

// AlignedSample is one shared timeline position carrying a matched frame
// from each of the four cameras, with the reference camera's coordinate
// corrected exactly once.
type AlignedSample struct {
	SampleIndex int
	// Timestamp of the reference camera frame, seconds.
	Timestamp float64
	// Coordinate is the region-corrected fix for this sample.
	Coordinate geo.CorrectedCoordinate
	// Frames holds the per-camera matched frames, indexed by Camera.
	Frames [4]MatchedFrame
	// LowSyncConfidence marks sample sets whose cross-camera timestamp
	// spread exceeds MaxSyncSpread.
	LowSyncConfidence bool
}

// Spread returns the cross-camera timestamp spread of the sample set in
// seconds.
func (s *AlignedSample) Spread() float64 {
	min, max := s.Frames[0].Timestamp, s.Frames[0].Timestamp
	for _, f := range s.Frames[1:] {
		if f.Timestamp < min {
			min = f.Timestamp
		}
		if f.Timestamp > max {
			max = f.Timestamp
		}
	}
	return max - min
}

// Result is the reconciler output handed to frame extraction and map
// rendering, ordered by SampleIndex ascending.
type Result struct {
	Samples []AlignedSample
	// CamerasMisaligned is set when cameras produced unequal sample counts
	// and the output was truncated to the shortest camera.
	CamerasMisaligned bool
	// LowSyncSamples counts sample sets tagged LowSyncConfidence.
	LowSyncSamples int
}

// Reconcile pairs the i-th matched sample of every camera into one aligned
// sample set.
//
// Cameras with unequal sample counts truncate the output to the shortest
// camera: partial output with fewer sample sets is preferable to none, so
// this is a warning, never fatal. Sample sets that violate the cross-camera
// spread invariant are still emitted, tagged LowSyncConfidence, and callers
// decide whether to discard them. Coordinate correction is applied here,
// once per sample, from the reference camera's matched record.
func Reconcile(perCamera map[Camera][]MatchedFrame, profile *geo.RegionProfile) Result {
	var res Result

	n := -1
	for _, cam := range Cameras {
		frames := perCamera[cam]
		if n == -1 || len(frames) < n {
			n = len(frames)
		}
	}
	// Unequal counts are a warning even when the shortest camera is empty and
	// there is nothing left to emit.
	for _, cam := range Cameras {
		if len(perCamera[cam]) != n {
			res.CamerasMisaligned = true
			logging.Warnf("Cameras misaligned: %s has %d samples, truncating to %d", cam, len(perCamera[cam]), n)
		}
	}
	if n <= 0 {
		return res
	}

	res.Samples = make([]AlignedSample, n)
	for i := 0; i < n; i++ {
		s := AlignedSample{SampleIndex: i}
		for _, cam := range Cameras {
			s.Frames[cam] = perCamera[cam][i]
		}
		ref := s.Frames[Reference]
		s.Timestamp = ref.Timestamp
		s.Coordinate = profile.Correct(ref.Record.Coordinate)

		if s.Spread() > MaxSyncSpread {
			s.LowSyncConfidence = true
			res.LowSyncSamples++
			logging.Warnf("Sample %d cross-camera spread %.3f s exceeds %.3f s", i, s.Spread(), MaxSyncSpread)
		}
		res.Samples[i] = s
	}

	return res
}
