// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// camsync tool's extract subcommand implementation.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"camsync/internal/align"
	"camsync/internal/extraction"
	"camsync/internal/geo"
	"camsync/internal/geomap"
	"camsync/internal/gpstrack"
	"camsync/internal/logging"
	"camsync/internal/report"
	"camsync/internal/tools"
)

// cameraOffsets implements flag.Value interface for repeatable per-camera
// start frame offsets, e.g. -offset FI=12.
type cameraOffsets map[align.Camera]int

func (c cameraOffsets) String() string {
	parts := make([]string, 0, len(c))
	for cam, off := range c {
		parts = append(parts, fmt.Sprintf("%s=%d", cam, off))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func (c cameraOffsets) Set(value string) error {
	code, num, found := strings.Cut(value, "=")
	if !found {
		return fmt.Errorf("expected CAM=FRAMES, got %q", value)
	}
	cam, err := align.ParseCamera(code)
	if err != nil {
		return err
	}
	off, err := strconv.Atoi(num)
	if err != nil {
		return fmt.Errorf("offset for %s: %w", cam, err)
	}
	c[cam] = off
	return nil
}

// CreateExtractCommand will create instance of ExtractApp.
func CreateExtractCommand() *ExtractApp {
	longHelp := `Subcommand "extract" will process the four camera video directories (FD, FI,
LD, LI), extract frames at the requested rate and attach region-corrected GPS
coordinates from the reference camera's embedded GPS track. Flags -videos and
-out-dir are mandatory.

Examples:

  camsync extract -videos path/to/videos -out-dir path/to/frames -fps 10
  camsync extract -videos v -out-dir f -fps 5 -region ituzaingo -offset FI=12`

	app := &ExtractApp{
		fs:        flag.NewFlagSet("extract", flag.ContinueOnError),
		gf:        globalFlags{},
		flOffsets: make(cameraOffsets),
		mStore:    report.NewStore(),
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flVideos, "videos", "", "Directory containing camera subfolders FD, FI, LD, LI")
	app.fs.StringVar(&app.flOutDir, "out-dir", "", "Output directory to store extracted frames and report")
	app.fs.IntVar(&app.flFps, "fps", 10, "Output rate in frames per second (one of 2, 4, 5, 10)")
	app.fs.IntVar(&app.flStartFrame, "start-frame", 0, "Number of source frames to skip from the beginning")
	app.fs.Var(app.flOffsets, "offset", "Per-camera start frame offset as CAM=FRAMES. Use multiple times.")
	app.fs.StringVar(&app.flRegion, "region", "", "Region correction profile name (optional)")
	app.fs.BoolVar(&app.flDryRun, "dry-run", false, "Do not actually run, just do checks and validation")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure ExtractApp implements Commander interface.
var _ Commander = (*ExtractApp)(nil)

// ExtractApp is subcommand application context that implements Commander interface.
type ExtractApp struct {
	// Configuration object
	cfg *Config
	// FlagSet instance
	fs *flag.FlagSet
	// Videos root directory
	flVideos string
	// Output directory for frames and reports
	flOutDir string
	// Requested output rate
	flFps int
	// Start frame shared by all cameras
	flStartFrame int
	// Per-camera start frame offsets on top of flStartFrame
	flOffsets cameraOffsets
	// Region correction profile name
	flRegion string
	// Global flags
	gf globalFlags
	// Dry run mode flag
	flDryRun bool
	// Per-sample result store
	mStore *report.Store

	// Run state below.
	profile       *geo.RegionProfile
	runner        *extraction.Runner
	frameCounter  int
	skippedFrames map[string]int
	misaligned    bool
	noGpsData     bool
	lowSync       int
}

// init will do ExtractApp state initialization.
func (a *ExtractApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.fs.Name()),
		}
	}

	if a.gf.Debug {
		logging.EnableDebugLogger()
	}

	// Videos directory is mandatory.
	if a.flVideos == "" {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -videos is missing",
		}
	}

	// Output dir is mandatory.
	if a.flOutDir == "" {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -out-dir is missing",
		}
	}

	// Output rate and start frame are validated up-front: configuration
	// errors are fatal before any work starts.
	if _, err := align.Stride(align.DefaultSourceFps, a.flFps); err != nil {
		return &AppError{exitCode: 2, msg: err.Error()}
	}
	if a.flStartFrame < 0 {
		return &AppError{exitCode: 2, msg: "start frame must be >= 0"}
	}
	for cam, off := range a.flOffsets {
		if a.flStartFrame+off < 0 {
			return &AppError{exitCode: 2, msg: fmt.Sprintf("negative effective start frame for camera %s", cam)}
		}
	}

	// Do not write over existing output directory.
	if isNonEmptyDir(a.flOutDir) {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("non-empty out dir: %s", a.flOutDir)}
	}

	// Load application configuration.
	c, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	a.cfg = &c

	return nil
}

// videoSet holds one matched group of per-camera video files.
type videoSet [4]string

// discoverVideoSets pairs the sorted video files of the four camera
// directories index-wise. Sets with a missing camera video are skipped with a
// warning, never fatal.
func (a *ExtractApp) discoverVideoSets() ([]videoSet, error) {
	var perCamera [4][]string
	for _, cam := range align.Cameras {
		dir := path.Join(a.flVideos, cam.String())
		files, err := listVideoFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("camera %s: %w", cam, err)
		}
		logging.Infof("Found %d video files for camera %s", len(files), cam)
		perCamera[cam] = files
	}

	var sets []videoSet
	for i := range perCamera[align.Reference] {
		var set videoSet
		complete := true
		for _, cam := range align.Cameras {
			if i >= len(perCamera[cam]) {
				complete = false
				break
			}
			set[cam] = path.Join(a.flVideos, cam.String(), perCamera[cam][i])
		}
		if !complete {
			logging.Warnf("Missing matching videos for set %d, skipping", i)
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// listVideoFiles returns sorted video file names in a directory.
func listVideoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mp4", ".avi", ".mov":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// cameraPipeline is the per-camera plan+match stage output.
type cameraPipeline struct {
	matched []align.MatchedFrame
	err     error
}

// processSet runs the synchronization pipeline for one video set and returns
// the aligned samples plus whether the set carried no GPS track.
func (a *ExtractApp) processSet(set videoSet) ([]align.AlignedSample, bool, error) {
	// The GPS track comes from the reference camera's video.
	noGps := false
	stream, err := gpstrack.Extract(set[align.Reference], a.cfg.ExiftoolPath.Value())
	switch {
	case errors.Is(err, gpstrack.ErrNoGpsData):
		logging.Warnf("No GPS data in %s, continuing frame-extraction-only", set[align.Reference])
		noGps = true
		stream = nil
	case err != nil:
		return nil, false, fmt.Errorf("reading GPS stream: %w", err)
	}

	// The four per-camera pipelines are independent: plan and match run
	// concurrently, joined at the reconciler. The GPS stream is shared
	// read-only.
	var wg sync.WaitGroup
	var pipelines [4]cameraPipeline
	for _, cam := range align.Cameras {
		cam := cam
		wg.Add(1)
		go func() {
			defer wg.Done()
			pipelines[cam] = a.runCameraPipeline(cam, set[cam], stream)
		}()
	}
	wg.Wait()

	perCamera := make(map[align.Camera][]align.MatchedFrame, len(align.Cameras))
	for _, cam := range align.Cameras {
		if pipelines[cam].err != nil {
			// Fatal for this set only: a partial rig has nothing to
			// reconcile four ways.
			return nil, false, fmt.Errorf("camera %s pipeline: %w", cam, pipelines[cam].err)
		}
		perCamera[cam] = pipelines[cam].matched
	}

	res := align.Reconcile(perCamera, a.profile)
	if res.CamerasMisaligned {
		a.misaligned = true
	}
	a.lowSync += res.LowSyncSamples

	return res.Samples, noGps, nil
}

// runCameraPipeline reads frame timing, plans samples and matches them
// against the shared GPS stream for one camera.
func (a *ExtractApp) runCameraPipeline(cam align.Camera, videoFile string, stream gpstrack.Stream) cameraPipeline {
	var p cameraPipeline

	timing, err := tools.FfprobeFrameTiming(videoFile, a.cfg.FfprobePath.Value())
	if err != nil {
		p.err = err
		return p
	}
	logging.Infof("Camera %s: %d frames at %.0f fps", cam, timing.FrameCount, timing.Fps)

	sourceFps := align.DefaultSourceFps
	if timing.Fps > 0 {
		sourceFps = int(timing.Fps + 0.5)
	}
	startFrame := a.flStartFrame + a.flOffsets[cam]

	samples, err := align.PlanSamples(sourceFps, a.flFps, startFrame, timing.FrameCount)
	if err != nil {
		p.err = err
		return p
	}

	// With no GPS stream MatchAll degrades to empty-fix matches, so the
	// frame-extraction-only mode still sees the shared timeline.
	p.matched = align.MatchAll(cam, samples, stream)
	return p
}

// extractSamples runs frame extraction for aligned samples of one video set
// and records per-sample results.
func (a *ExtractApp) extractSamples(set videoSet, samples []align.AlignedSample, noGps bool) {
	for i := range samples {
		s := &samples[i]
		a.frameCounter++
		fileName := fmt.Sprintf("%d.jpg", a.frameCounter)

		rec := report.Record{
			SampleIndex:       a.frameCounter - 1,
			Timestamp:         s.Timestamp,
			Spread:            s.Spread(),
			LowSyncConfidence: s.LowSyncConfidence,
			NoGps:             noGps,
		}

		ref := s.Frames[align.Reference]
		if !noGps {
			rec.Lat = s.Coordinate.Lat
			rec.Lon = s.Coordinate.Lon
			rec.GpsTime = ref.Record.Wallclock.Format("2006:01:02 15:04:05")
			rec.MatchDelta = ref.Delta()
			rec.Extrapolated = ref.Extrapolated
			rec.LowConfidence = ref.LowConfidence
		}

		var imagePaths [4]string
		for _, cam := range align.Cameras {
			relPath := path.Join(cam.OutputDir(), fileName)
			imagePaths[cam] = relPath

			job := extraction.Job{
				Camera:      cam,
				SourceFile:  set[cam],
				FrameIndex:  s.Frames[cam].FrameIndex,
				SampleIndex: rec.SampleIndex,
				OutputFile:  path.Join(a.flOutDir, relPath),
			}
			res := a.runner.Run(job)
			if len(res.Errors) > 0 {
				// Fatal for this frame/camera only, the batch continues.
				a.skippedFrames[cam.String()]++
				rec.ExtractionFailed = true
				continue
			}

			// Only the reference camera frame carries EXIF GPS tags, same
			// as the source rig tooling.
			if cam == align.Reference && !noGps {
				err := extraction.EmbedGPS(a.cfg.ExiftoolPath.Value(), job.OutputFile, s.Coordinate, ref.Record.Wallclock)
				if err != nil {
					logging.Warnf("Embedding GPS tags for %s: %s", job.OutputFile, err)
				}
			}
		}
		rec.FrontRightImage = imagePaths[align.FrontRight]
		rec.FrontLeftImage = imagePaths[align.FrontLeft]
		rec.SideRightImage = imagePaths[align.SideRight]
		rec.SideLeftImage = imagePaths[align.SideLeft]

		a.mStore.Insert(rec)

		if a.frameCounter%10 == 0 {
			logging.Infof("Saved %d samples, current position: %.6f, %.6f", a.frameCounter, rec.Lat, rec.Lon)
		}
	}
}

// buildReport assembles the run report from the sample store.
func (a *ExtractApp) buildReport() *report.Report {
	samples := a.mStore.Records()

	deltas := make([]float64, 0, len(samples))
	spreads := make([]float64, 0, len(samples))
	for _, s := range samples {
		deltas = append(deltas, s.MatchDelta)
		spreads = append(spreads, s.Spread)
	}

	return &report.Report{
		Region:            a.flRegion,
		OutputFps:         a.flFps,
		CamerasMisaligned: a.misaligned,
		NoGpsData:         a.noGpsData,
		SkippedFrames:     a.skippedFrames,
		MatchStats:        report.NewStats(deltas),
		SpreadStats:       report.NewStats(spreads),
		Samples:           samples,
	}
}

// saveReport writes JSON and CSV reports plus the sync quality plot.
func (a *ExtractApp) saveReport(rep *report.Report) error {
	jsonPath := path.Join(a.flOutDir, a.cfg.ReportFileName.Value())
	jsonOut, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("creating JSON report file: %w", err)
	}
	defer jsonOut.Close()
	if err := rep.WriteJSON(jsonOut); err != nil {
		return err
	}
	logging.Infof("Report written to %s", jsonPath)

	csvPath := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".csv"
	csvOut, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("creating CSV report file: %w", err)
	}
	defer csvOut.Close()
	if err := rep.WriteCSV(csvOut); err != nil {
		return err
	}

	if len(rep.Samples) > 0 && !rep.NoGpsData {
		plotPath := path.Join(a.flOutDir, "sync_quality.png")
		if err := geomap.MultiPlotRun(rep, path.Base(a.flVideos), plotPath); err != nil {
			return fmt.Errorf("creating sync quality plot: %w", err)
		}
		logging.Infof("Sync quality plot done: %s", plotPath)
	}

	return nil
}

// Run is main entry point into ExtractApp execution.
func (a *ExtractApp) Run(args []string) error {
	logging.Infof("camsync version: %s", vInfo)
	if err := a.init(args); err != nil {
		return err
	}

	logging.Debugf("Application configuration: %#v", a.cfg)
	// Check if configuration is valid.
	if err := a.cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	profiles, err := geo.LoadProfiles(a.cfg.RegionProfilesPath.Value())
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	a.profile = geo.LookupProfile(profiles, a.flRegion)

	sets, err := a.discoverVideoSets()
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if len(sets) == 0 {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("no complete video sets found under %s", a.flVideos)}
	}

	// To avoid ambiguity, resolve output path to absolute representation.
	outDirPath, err := filepath.Abs(a.flOutDir)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	a.flOutDir = outDirPath

	// Early return in "dry run" mode.
	if a.flDryRun {
		logging.Info("Dry run mode finished!")
		return nil
	}

	a.runner = &extraction.Runner{
		FfmpegPath: a.cfg.FfmpegPath.Value(),
		Template:   a.cfg.FfmpegExtractTemplate.Value(),
		OutputSize: a.cfg.FrameSize.Value(),
	}
	a.skippedFrames = make(map[string]int)

	for i, set := range sets {
		logging.Infof("Processing video set %d/%d", i+1, len(sets))
		samples, noGps, err := a.processSet(set)
		if err != nil {
			// Fatal for this set only, remaining sets still run.
			logging.Warnf("Skipping video set %d: %s", i+1, err)
			continue
		}
		if noGps {
			a.noGpsData = true
		}
		a.extractSamples(set, samples, noGps)
	}

	rep := a.buildReport()
	if err := a.saveReport(rep); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	for cam, n := range rep.SkippedFrames {
		logging.Warnf("Camera %s: %d frames skipped due to extraction errors", cam, n)
	}
	if a.lowSync > 0 {
		logging.Warnf("%d sample sets have low sync confidence", a.lowSync)
	}
	logging.Infof("Processing complete. Total samples saved: %d", len(rep.Samples))
	return nil
}
