// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Region correction profiles.
//
// A profile encodes an empirically determined fixed offset (and optionally a
// small linear scale) that compensates systematic GPS drift observed in one
// named geographic area.

package geo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"camsync/internal/logging"
)

// Bounds is a latitude/longitude bounding box used for plausibility checks
// of corrected fixes.
type Bounds struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Contains reports whether the coordinate falls inside the bounding box.
func (b Bounds) Contains(c CorrectedCoordinate) bool {
	return c.Lat >= b.LatMin && c.Lat <= b.LatMax &&
		c.Lon >= b.LonMin && c.Lon <= b.LonMax
}

// IsZero reports whether no bounds were configured.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// RegionProfile describes the fixed coordinate correction for one named
// geographic area. Immutable process-wide configuration.
type RegionProfile struct {
	Name      string  `yaml:"name"`
	LatOffset float64 `yaml:"lat_offset"`
	LonOffset float64 `yaml:"lon_offset"`
	// Scale factors default to 1 when unset in the profile file.
	LatScale float64 `yaml:"lat_scale"`
	LonScale float64 `yaml:"lon_scale"`
	Bounds   Bounds  `yaml:"bounds"`
}

// Correct applies the region correction to a raw coordinate.
//
// A nil profile is the identity transform: unknown or unspecified regions are
// never an error. Pure function, constant time.
func (p *RegionProfile) Correct(c RawCoordinate) CorrectedCoordinate {
	if p == nil {
		return CorrectedCoordinate{Lat: c.Lat, Lon: c.Lon}
	}
	latScale, lonScale := p.LatScale, p.LonScale
	if latScale == 0 {
		latScale = 1
	}
	if lonScale == 0 {
		lonScale = 1
	}
	corrected := CorrectedCoordinate{
		Lat: c.Lat*latScale + p.LatOffset,
		Lon: c.Lon*lonScale + p.LonOffset,
	}
	if !p.Bounds.IsZero() && !p.Bounds.Contains(corrected) {
		logging.Warnf("Corrected coordinate %s outside expected %s region", corrected, p.Name)
	}
	return corrected
}

// builtinProfiles are regions with corrections determined from field
// recordings. The Ituzaingó/Morón area west of Buenos Aires is where the
// reference camera rig was driven.
var builtinProfiles = map[string]RegionProfile{
	"ituzaingo": {
		Name:      "ituzaingo",
		LatOffset: 0,
		LonOffset: 0,
		Bounds: Bounds{
			LatMin: -34.8, LatMax: -34.5,
			LonMin: -59.0, LonMax: -58.5,
		},
	},
}

// profilesFile is the YAML document shape for user supplied region profiles.
type profilesFile struct {
	Regions []RegionProfile `yaml:"regions"`
}

// LoadProfiles reads region profiles from a YAML file and merges them over
// the built-in set. User profiles win on name collision.
func LoadProfiles(path string) (map[string]RegionProfile, error) {
	profiles := make(map[string]RegionProfile, len(builtinProfiles))
	for name, p := range builtinProfiles {
		profiles[name] = p
	}

	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region profiles: %w", err)
	}
	var pf profilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse region profiles: %w", err)
	}
	for _, p := range pf.Regions {
		if p.Name == "" {
			return nil, fmt.Errorf("region profile without a name in %s", path)
		}
		profiles[p.Name] = p
	}

	return profiles, nil
}

// LookupProfile resolves a region name to a profile. Empty or unknown names
// resolve to nil, which is the identity correction.
func LookupProfile(profiles map[string]RegionProfile, name string) *RegionProfile {
	if name == "" {
		return nil
	}
	p, ok := profiles[name]
	if !ok {
		logging.Warnf("Unknown region %q, proceeding without coordinate correction", name)
		return nil
	}
	return &p
}
