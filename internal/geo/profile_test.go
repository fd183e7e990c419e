// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package geo

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Correct(t *testing.T) {
	raw := RawCoordinate{Lat: -34.639833, Lon: -58.67}

	t.Run("Nil profile is identity", func(t *testing.T) {
		var p *RegionProfile
		got := p.Correct(raw)
		assert.Equal(t, raw.Lat, got.Lat)
		assert.Equal(t, raw.Lon, got.Lon)
	})

	t.Run("Offsets applied", func(t *testing.T) {
		p := &RegionProfile{Name: "test", LatOffset: 0.001, LonOffset: -0.002}
		got := p.Correct(raw)
		assert.InDelta(t, raw.Lat+0.001, got.Lat, 1e-9)
		assert.InDelta(t, raw.Lon-0.002, got.Lon, 1e-9)
	})

	t.Run("Zero scale defaults to 1", func(t *testing.T) {
		p := &RegionProfile{Name: "test"}
		got := p.Correct(raw)
		assert.Equal(t, raw.Lat, got.Lat)
		assert.Equal(t, raw.Lon, got.Lon)
	})

	t.Run("Scale applied before offset", func(t *testing.T) {
		p := &RegionProfile{Name: "test", LatScale: 2, LatOffset: 1}
		got := p.Correct(RawCoordinate{Lat: 10, Lon: 5})
		assert.InDelta(t, 21.0, got.Lat, 1e-9)
		assert.InDelta(t, 5.0, got.Lon, 1e-9)
	})
}

func Test_Bounds(t *testing.T) {
	b := Bounds{LatMin: -34.8, LatMax: -34.5, LonMin: -59.0, LonMax: -58.5}

	assert.True(t, b.Contains(CorrectedCoordinate{Lat: -34.64, Lon: -58.67}))
	assert.False(t, b.Contains(CorrectedCoordinate{Lat: -34.64, Lon: -58.2}))
	assert.False(t, b.Contains(CorrectedCoordinate{Lat: 0, Lon: 0}))
	assert.False(t, b.IsZero())
	assert.True(t, Bounds{}.IsZero())
}

func Test_LoadProfiles(t *testing.T) {
	t.Run("No file yields builtins", func(t *testing.T) {
		profiles, err := LoadProfiles("")
		require.NoError(t, err)
		assert.Contains(t, profiles, "ituzaingo")
	})

	t.Run("File profiles merge over builtins", func(t *testing.T) {
		payload := []byte(`regions:
  - name: moron
    lat_offset: 0.0005
    lon_offset: -0.0003
    bounds:
      lat_min: -34.8
      lat_max: -34.5
      lon_min: -59.0
      lon_max: -58.5
  - name: ituzaingo
    lat_offset: 0.001
`)
		fPath := path.Join(t.TempDir(), "regions.yaml")
		require.NoError(t, os.WriteFile(fPath, payload, 0o644))

		profiles, err := LoadProfiles(fPath)
		require.NoError(t, err)

		require.Contains(t, profiles, "moron")
		assert.InDelta(t, 0.0005, profiles["moron"].LatOffset, 1e-9)
		assert.False(t, profiles["moron"].Bounds.IsZero())

		// User profile wins over the builtin of the same name.
		assert.InDelta(t, 0.001, profiles["ituzaingo"].LatOffset, 1e-9)
		assert.True(t, profiles["ituzaingo"].Bounds.IsZero())
	})

	t.Run("Nameless profile rejected", func(t *testing.T) {
		fPath := path.Join(t.TempDir(), "regions.yaml")
		require.NoError(t, os.WriteFile(fPath, []byte("regions:\n  - lat_offset: 1\n"), 0o644))

		_, err := LoadProfiles(fPath)
		assert.ErrorContains(t, err, "region profile without a name")
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadProfiles("no/such/file.yaml")
		assert.ErrorContains(t, err, "read region profiles")
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		fPath := path.Join(t.TempDir(), "regions.yaml")
		require.NoError(t, os.WriteFile(fPath, []byte("regions: [unclosed"), 0o644))

		_, err := LoadProfiles(fPath)
		assert.ErrorContains(t, err, "parse region profiles")
	})
}

func Test_LookupProfile(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)

	t.Run("Known region", func(t *testing.T) {
		p := LookupProfile(profiles, "ituzaingo")
		require.NotNil(t, p)
		assert.Equal(t, "ituzaingo", p.Name)
	})

	t.Run("Empty name is identity", func(t *testing.T) {
		assert.Nil(t, LookupProfile(profiles, ""))
	})

	t.Run("Unknown region is identity, not an error", func(t *testing.T) {
		assert.Nil(t, LookupProfile(profiles, "narnia"))
	})
}

func Test_Coordinate_String(t *testing.T) {
	raw := RawCoordinate{Lat: -34.6398333, Lon: -58.67}
	assert.Equal(t, "-34.639833,-58.670000", raw.String())

	c := CorrectedCoordinate{Lat: 51.5, Lon: 0.1275}
	assert.Equal(t, "51.500000,0.127500", c.String())
}
