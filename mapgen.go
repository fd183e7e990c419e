// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// camsync tool's mapgen subcommand implementation.

package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"camsync/internal/geomap"
	"camsync/internal/logging"
)

// CreateMapGenCommand will create instance of MapGenApp.
func CreateMapGenCommand() *MapGenApp {
	longHelp := `Subcommand "mapgen" will create an interactive street map HTML page from an
extract run report. Each aligned sample becomes a map marker with all four
camera views in its popup, joined by a polyline tracing the drive. Flag
-report is mandatory.

Examples:

  camsync mapgen -report path/to/frames/report.json
  camsync mapgen -report report.json -out drive.html -title "Morning run"
  camsync mapgen -report report.json -plot track.png`

	app := &MapGenApp{
		fs: flag.NewFlagSet("mapgen", flag.ContinueOnError),
		gf: globalFlags{},
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flReport, "report", "", "Extract run report JSON file")
	app.fs.StringVar(&app.flOut, "out", "", "Output HTML file (default: map.html next to report)")
	app.fs.StringVar(&app.flTitle, "title", "", "Map page title (default: report file base name)")
	app.fs.StringVar(&app.flPlot, "plot", "", "Also write the track/match-delta plot to given PNG file (optional)")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure MapGenApp implements Commander interface.
var _ Commander = (*MapGenApp)(nil)

// MapGenApp is subcommand application context that implements Commander interface.
type MapGenApp struct {
	// FlagSet instance
	fs *flag.FlagSet
	// Report file path
	flReport string
	// Output HTML file path
	flOut string
	// Map page title
	flTitle string
	// Optional PNG plot file path
	flPlot string
	// Global flags
	gf globalFlags
}

// init will do MapGenApp state initialization.
func (a *MapGenApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.fs.Name()),
		}
	}

	if a.gf.Debug {
		logging.EnableDebugLogger()
	}

	// Report file is mandatory.
	if a.flReport == "" {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -report is missing",
		}
	}

	// By default the map lands next to the report so that the relative image
	// paths in marker popups resolve.
	if a.flOut == "" {
		a.flOut = path.Join(filepath.Dir(a.flReport), "map.html")
	}

	if a.flTitle == "" {
		base := filepath.Base(a.flReport)
		a.flTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return nil
}

// Run is main entry point into MapGenApp execution.
func (a *MapGenApp) Run(args []string) error {
	if err := a.init(args); err != nil {
		return err
	}

	rep, err := parseReportFile(a.flReport)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if rep.NoGpsData {
		return &AppError{exitCode: 1, msg: "report has no GPS data, nothing to map"}
	}
	logging.Infof("Report loaded: %d samples", len(rep.Samples))

	out, err := os.Create(a.flOut)
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("creating map file: %s", err)}
	}
	defer out.Close()

	if err := geomap.WriteMap(out, rep, a.flTitle); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	logging.Infof("Map done: %s", a.flOut)

	if a.flPlot != "" {
		if err := geomap.MultiPlotRun(rep, a.flTitle, a.flPlot); err != nil {
			return &AppError{exitCode: 1, msg: err.Error()}
		}
		logging.Infof("Plot done: %s", a.flPlot)
	}

	return nil
}
