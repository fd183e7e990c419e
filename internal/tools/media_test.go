// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseFraction(t *testing.T) {
	tests := map[string]struct {
		given string
		want  float64
	}{
		"Whole rate":      {given: "60/1", want: 60},
		"NTSC rate":       {given: "60000/1001", want: 59.94005994005994},
		"No denominator":  {given: "30", want: 30},
		"Fractional rate": {given: "5/2", want: 2.5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseFraction(tc.given)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func Test_ParseFraction_Errors(t *testing.T) {
	tests := map[string]string{
		"Empty":            "",
		"Garbage":          "abc",
		"Bad denominator":  "60/x",
		"Zero denominator": "60/0",
	}

	for name, given := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFraction(given)
			assert.Error(t, err)
		})
	}
}

func Test_parseFfprobeTiming(t *testing.T) {
	t.Run("Stream carries duration", func(t *testing.T) {
		payload := []byte(`{
			"streams": [
				{
					"r_frame_rate": "60/1",
					"duration": "120.5",
					"nb_read_frames": "7230"
				}
			],
			"format": {"duration": "120.6"}
		}`)

		got, err := parseFfprobeTiming(payload)
		require.NoError(t, err)
		assert.InDelta(t, 60.0, got.Fps, 1e-9)
		assert.Equal(t, 7230, got.FrameCount)
		assert.InDelta(t, 120.5, got.Duration, 1e-9)
	})

	t.Run("Duration falls back to format for mkv", func(t *testing.T) {
		payload := []byte(`{
			"streams": [
				{
					"r_frame_rate": "60/1",
					"nb_read_frames": "600"
				}
			],
			"format": {"duration": "10.0"}
		}`)

		got, err := parseFfprobeTiming(payload)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, got.Duration, 1e-9)
	})

	t.Run("No streams", func(t *testing.T) {
		_, err := parseFfprobeTiming([]byte(`{"format": {}}`))
		assert.ErrorContains(t, err, "no video streams found")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := parseFfprobeTiming([]byte("not json"))
		assert.ErrorContains(t, err, "json.Unmarshal")
	})

	t.Run("Bad frame rate", func(t *testing.T) {
		_, err := parseFfprobeTiming([]byte(`{"streams": [{"r_frame_rate": "x/y"}]}`))
		assert.ErrorContains(t, err, "frame rate")
	})
}
