// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Coordinate types for the correction pipeline.
//
// Raw and corrected coordinates are distinct types on purpose: a region
// correction must be applied exactly once per fix, and keeping the two states
// apart at the type level rules out double correction by construction.

package geo

import "fmt"

// RawCoordinate is a GPS fix as read from the video metadata, before any
// region correction.
type RawCoordinate struct {
	Lat float64
	Lon float64
}

// CorrectedCoordinate is a coordinate with the region correction applied.
type CorrectedCoordinate struct {
	Lat float64
	Lon float64
}

func (c RawCoordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

func (c CorrectedCoordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
