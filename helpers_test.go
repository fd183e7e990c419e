// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package main

import (
	"os"
	"path"
	"testing"

	"camsync/internal/report"
)

// fixFakeToolsOnPath fixture creates stub ffmpeg, ffprobe and exiftool
// binaries and puts them first on PATH.
//
// The stubs succeed without doing anything, which is enough for configuration
// auto-detection and validation to pass in tests that never reach actual
// media processing.
func fixFakeToolsOnPath(t *testing.T) string {
	t.Helper()
	binDir := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range []string{"ffmpeg", "ffprobe", "exiftool"} {
		if err := os.WriteFile(path.Join(binDir, name), script, 0o755); err != nil {
			t.Fatalf("Unexpected error creating fake %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	return binDir
}

// fixVideosDir fixture creates a videos directory with one video file per
// camera subdirectory.
func fixVideosDir(t *testing.T) string {
	t.Helper()
	videosDir := path.Join(t.TempDir(), "videos")
	for _, cam := range []string{"FD", "FI", "LD", "LI"} {
		camDir := path.Join(videosDir, cam)
		if err := os.MkdirAll(camDir, 0o755); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := os.WriteFile(path.Join(camDir, "drive01.mp4"), []byte("stub"), 0o644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	return videosDir
}

// fixReportFile fixture writes a small valid run report to a temp file.
func fixReportFile(t *testing.T) string {
	t.Helper()
	rep := &report.Report{
		Region:    "ituzaingo",
		OutputFps: 10,
		Samples: []report.Record{
			{
				SampleIndex:     0,
				Lat:             -34.6398,
				Lon:             -58.67,
				FrontRightImage: "Imagenes_Frontal_Derecha/1.jpg",
				FrontLeftImage:  "Imagenes_Frontal_Izquierda/1.jpg",
				SideRightImage:  "Imagenes_Lateral_Derecha/1.jpg",
				SideLeftImage:   "Imagenes_Lateral_Izquierda/1.jpg",
			},
			{
				SampleIndex: 1,
				Lat:         -34.6399,
				Lon:         -58.6701,
			},
		},
	}

	fPath := path.Join(t.TempDir(), "report.json")
	fd, err := os.Create(fPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer fd.Close()
	if err := rep.WriteJSON(fd); err != nil {
		t.Fatalf("Unexpected error writing report fixture: %v", err)
	}
	return fPath
}
