// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Run report serialization and summary statistics.

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/jszwec/csvutil"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report is the complete result of one extract run.
type Report struct {
	// Region is the correction profile name used, empty for identity.
	Region string
	// OutputFps the run was sampled at.
	OutputFps int
	// Warnings accumulated for the whole run.
	CamerasMisaligned bool
	NoGpsData         bool
	// SkippedFrames counts frames that failed extraction, per camera code.
	SkippedFrames map[string]int
	// Match and spread quality over the run.
	MatchStats  Stats
	SpreadStats Stats
	// Samples ordered by SampleIndex ascending.
	Samples []Record
}

// Stats is an aggregate over a per-sample quantity.
type Stats struct {
	Min   float64
	Max   float64
	Mean  float64
	StDev float64
}

// NewStats computes aggregate statistics for a series. Zero value for an
// empty series.
func NewStats(values []float64) Stats {
	var s Stats
	if len(values) == 0 {
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean, s.StDev = stat.MeanStdDev(values, nil)
	// Sample standard deviation is undefined for a single value and NaN does
	// not survive JSON marshaling.
	if math.IsNaN(s.StDev) {
		s.StDev = 0
	}
	return s
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	res, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report to JSON: %w", err)
	}
	if _, err := w.Write(res); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// FromJSON parses a report previously written with WriteJSON.
func FromJSON(r io.Reader) (*Report, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var rep Report
	if err := json.Unmarshal(b, &rep); err != nil {
		return nil, fmt.Errorf("parsing report JSON: %w", err)
	}
	return &rep, nil
}

// WriteCSV writes the per-sample records as CSV.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := csvutil.NewEncoder(cw).Encode(r.Samples); err != nil {
		return fmt.Errorf("writing CSV report: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
