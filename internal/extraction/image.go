// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Square resize of extracted frames.

package extraction

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/nfnt/resize"
)

// jpegQuality for re-encoded frames. Detection pipelines downstream care
// about geometry, not pristine quality.
const jpegQuality = 90

// ResizeSquare center-crops an image file to a square and scales it to
// size x size pixels, overwriting the file in place.
func ResizeSquare(imageFile string, size int) error {
	fd, err := os.Open(imageFile)
	if err != nil {
		return fmt.Errorf("ResizeSquare() open: %w", err)
	}
	img, _, err := image.Decode(fd)
	fd.Close()
	if err != nil {
		return fmt.Errorf("ResizeSquare() decode: %w", err)
	}

	square := centerCropSquare(img)
	scaled := resize.Resize(uint(size), uint(size), square, resize.Lanczos3)

	out, err := os.Create(imageFile)
	if err != nil {
		return fmt.Errorf("ResizeSquare() create: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("ResizeSquare() encode: %w", err)
	}

	return nil
}

// centerCropSquare crops the largest centered square from an image.
func centerCropSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}

	var crop image.Rectangle
	if w > h {
		x := b.Min.X + (w-h)/2
		crop = image.Rect(x, b.Min.Y, x+h, b.Max.Y)
	} else {
		y := b.Min.Y + (h-w)/2
		crop = image.Rect(b.Min.X, y, b.Max.X, y+w)
	}

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(crop)
	}
	// Non-cropable image kinds pass through uncropped; resize still yields
	// the requested geometry.
	return img
}
