// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Sample planning: which source frames to extract for a requested output
// rate.

package align

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRate signals an output rate outside the supported set. This
// is a configuration error, fatal for the run.
var ErrUnsupportedRate = errors.New("unsupported output rate")

// SupportedOutputFps are the extraction rates that divide the 60 Hz source
// rate into an exact integer stride: 30, 15, 12 and 6 frames respectively.
// 10 fps is the best match for the 10 Hz GPS rate.
var SupportedOutputFps = []int{2, 4, 5, 10}

// DefaultSourceFps is the native capture rate of the rig cameras.
const DefaultSourceFps = 60

// FrameSample is one planned extraction point in the source video. Derived,
// never stored.
type FrameSample struct {
	// FrameIndex is the ordinal frame position in the source video.
	FrameIndex int
	// Timestamp is FrameIndex over the source rate, seconds from stream
	// start.
	Timestamp float64
}

// Stride returns the number of source frames between consecutive extracted
// frames, validating that the rates divide exactly.
func Stride(sourceFps, outputFps int) (int, error) {
	supported := false
	for _, fps := range SupportedOutputFps {
		if outputFps == fps {
			supported = true
			break
		}
	}
	if !supported {
		return 0, fmt.Errorf("output rate %d fps (supported: %v): %w", outputFps, SupportedOutputFps, ErrUnsupportedRate)
	}
	if sourceFps <= 0 || sourceFps%outputFps != 0 {
		return 0, fmt.Errorf("source rate %d fps not an integer multiple of output rate %d fps: %w", sourceFps, outputFps, ErrUnsupportedRate)
	}
	return sourceFps / outputFps, nil
}

// PlanSamples computes the ordered list of source frame indices to extract.
//
// The sequence is startFrame, startFrame+stride, ... while below totalFrames.
// Pure function of its inputs, deterministic and restartable.
func PlanSamples(sourceFps, outputFps, startFrame, totalFrames int) ([]FrameSample, error) {
	stride, err := Stride(sourceFps, outputFps)
	if err != nil {
		return nil, err
	}
	if startFrame < 0 {
		return nil, fmt.Errorf("start frame must be >= 0, got %d", startFrame)
	}
	if totalFrames <= 0 {
		return nil, fmt.Errorf("total frames must be > 0, got %d", totalFrames)
	}

	var samples []FrameSample
	for idx := startFrame; idx < totalFrames; idx += stride {
		samples = append(samples, FrameSample{
			FrameIndex: idx,
			Timestamp:  float64(idx) / float64(sourceFps),
		})
	}
	return samples, nil
}
