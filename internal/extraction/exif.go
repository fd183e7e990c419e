// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// EXIF GPS tag embedding via exiftool.

package extraction

import (
	"fmt"
	"math"
	"os/exec"
	"time"

	"camsync/internal/geo"
	"camsync/internal/logging"
)

// exifTimeLayout is the EXIF DateTimeOriginal format, without fractional
// seconds.
const exifTimeLayout = "2006:01:02 15:04:05"

// EmbedGPS writes GPS position tags and the capture timestamp into an image
// file in place.
func EmbedGPS(exiftoolPath, imageFile string, c geo.CorrectedCoordinate, wallclock time.Time) error {
	latRef, lonRef := "N", "E"
	if c.Lat < 0 {
		latRef = "S"
	}
	if c.Lon < 0 {
		lonRef = "W"
	}

	args := []string{
		"-overwrite_original",
		fmt.Sprintf("-GPSLatitude=%.6f", math.Abs(c.Lat)),
		fmt.Sprintf("-GPSLatitudeRef=%s", latRef),
		fmt.Sprintf("-GPSLongitude=%.6f", math.Abs(c.Lon)),
		fmt.Sprintf("-GPSLongitudeRef=%s", lonRef),
	}
	if !wallclock.IsZero() {
		args = append(args, fmt.Sprintf("-DateTimeOriginal=%s", wallclock.Format(exifTimeLayout)))
	}
	args = append(args, imageFile)

	cmd := exec.Command(exiftoolPath, args...) //#nosec G204
	logging.Debugf("Running: %s", cmd)
	if out, err := cmd.CombinedOutput(); err != nil {
		logging.Debugf("Exiftool output: %s", out)
		return fmt.Errorf("EmbedGPS() exec error: %w", err)
	}

	return nil
}
