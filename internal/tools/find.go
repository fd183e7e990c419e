// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tools

import (
	"fmt"
	"os"
	"os/exec"
)

// Environment variables that override auto-detection of external tool
// binaries.
const (
	FfmpegEnvOverride   = "CAMSYNC_FFMPEG"
	FfprobeEnvOverride  = "CAMSYNC_FFPROBE"
	ExiftoolEnvOverride = "CAMSYNC_EXIFTOOL"
)

// FindTool will find tool executable in $PATH with possibility to override it
// via environment variable.
func FindTool(exeName, overrideEnvVar string) (string, error) {
	// First check for executable in case it's overridden via env variable.
	if p := os.Getenv(overrideEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	// Look for executable in $PATH.
	if p, err := exec.LookPath(exeName); err == nil {
		return p, nil
	}

	// So we did not find any traces of executable - error out!
	return "", fmt.Errorf("binary (%s) not found", exeName)
}

// FfmpegPath will return path to ffmpeg binary and error if path is not found.
func FfmpegPath() (string, error) {
	return FindTool("ffmpeg", FfmpegEnvOverride)
}

// FfprobePath will return path to ffprobe binary and error if path is not found.
func FfprobePath() (string, error) {
	return FindTool("ffprobe", FfprobeEnvOverride)
}

// ExiftoolPath will return path to exiftool binary and error if path is not
// found.
func ExiftoolPath() (string, error) {
	return FindTool("exiftool", ExiftoolEnvOverride)
}
