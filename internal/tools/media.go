// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Ffmpeg family and exiftool related tools.
package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"camsync/internal/logging"
)

// FrameTiming contains video stream timing metadata relevant for sample
// planning.
type FrameTiming struct {
	// Fps is the native capture rate of the stream, e.g. 60.
	Fps float64
	// FrameCount is total number of video frames in the stream.
	FrameCount int
	// Duration of the video stream in seconds.
	Duration float64
}

// FfprobeFrameTiming will query video stream timing metadata via ffprobe.
func FfprobeFrameTiming(videoFile, ffprobePath string) (FrameTiming, error) {
	var timing FrameTiming

	if _, err := os.Stat(videoFile); os.IsNotExist(err) {
		return timing, fmt.Errorf("FfprobeFrameTiming() os.Stat: %w", err)
	}

	ffprobeArgs := []string{
		"-v", "quiet",
		"-threads", "0",
		"-select_streams", "v",
		"-count_frames",
		"-of", "json",
		"-show_format",
		"-show_streams",
		videoFile,
	}
	cmd := exec.Command(ffprobePath, ffprobeArgs...) //#nosec G204
	logging.Debugf("Running: %s\n", cmd)
	out, err := cmd.Output()
	if err != nil {
		return timing, fmt.Errorf("FfprobeFrameTiming() exec error: %w", err)
	}

	return parseFfprobeTiming(out)
}

// parseFfprobeTiming will unmarshal timing info from ffprobe JSON output.
func parseFfprobeTiming(out []byte) (FrameTiming, error) {
	var timing FrameTiming

	// A temporary structure to unmarshal JSON from ffprobe output.
	type metadata struct {
		FrameRate  string  `json:"r_frame_rate,omitempty"`
		Duration   float64 `json:"duration,omitempty,string"`
		FrameCount int     `json:"nb_read_frames,omitempty,string"`
	}
	// Unmarshal metadata from both "streams" and "format" JSON objects.
	meta := &struct {
		Streams []metadata
		Format  metadata
	}{}
	if err := json.Unmarshal(out, &meta); err != nil {
		return timing, fmt.Errorf("parseFfprobeTiming() json.Unmarshal: %w", err)
	}
	if len(meta.Streams) == 0 {
		return timing, fmt.Errorf("parseFfprobeTiming() no video streams found")
	}

	fps, err := ParseFraction(meta.Streams[0].FrameRate)
	if err != nil {
		return timing, fmt.Errorf("parseFfprobeTiming() frame rate: %w", err)
	}

	timing.Fps = fps
	timing.FrameCount = meta.Streams[0].FrameCount
	timing.Duration = meta.Streams[0].Duration
	// For mkv container Streams does not contain duration, so we have to look
	// into Format.
	if timing.Duration == 0 {
		timing.Duration = meta.Format.Duration
	}

	return timing, nil
}

// ParseFraction parses ffprobe style fraction string e.g. "60/1" to a float.
func ParseFraction(s string) (float64, error) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("fraction numerator %q: %w", s, err)
	}
	if len(parts) == 1 {
		return num, nil
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("fraction denominator %q: %w", s, err)
	}
	if den == 0 {
		return 0, fmt.Errorf("fraction %q: zero denominator", s)
	}
	return num / den, nil
}

// ExiftoolExtractXML will dump full embedded metadata of a video file in
// RDF/XML form via exiftool. The -ee flag makes exiftool descend into
// timed metadata tracks which is where action camera GPS lives.
func ExiftoolExtractXML(videoFile, exiftoolPath string) ([]byte, error) {
	if _, err := os.Stat(videoFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("ExiftoolExtractXML() os.Stat: %w", err)
	}

	exiftoolArgs := []string{
		"-api", "largefilesupport=1",
		"-ee",
		"-G3",
		"-X",
		videoFile,
	}
	cmd := exec.Command(exiftoolPath, exiftoolArgs...) //#nosec G204
	logging.Debugf("Running: %s\n", cmd)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ExiftoolExtractXML() exec error: %w", err)
	}

	return out, nil
}
