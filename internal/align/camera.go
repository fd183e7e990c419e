// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Camera role enumeration.
//
// The rig carries exactly four cameras. Keeping the roles as a closed
// enumeration makes the four-way reconciliation exhaustive and statically
// checkable, as opposed to dispatching on directory name strings.

package align

import "fmt"

// Camera identifies one of the four fixed camera positions on the rig.
type Camera int

const (
	// FrontRight is the reference camera, its video carries the GPS track.
	FrontRight Camera = iota
	FrontLeft
	SideRight
	SideLeft
)

// Cameras lists all four roles in canonical order. FrontRight first since it
// is the reference camera.
var Cameras = [4]Camera{FrontRight, FrontLeft, SideRight, SideLeft}

// Reference is the camera whose GPS track and timestamps anchor the shared
// timeline.
const Reference = FrontRight

// String returns the two letter camera code used in the source directory
// layout (Spanish initialisms: Frontal/Lateral, Derecha/Izquierda).
func (c Camera) String() string {
	switch c {
	case FrontRight:
		return "FD"
	case FrontLeft:
		return "FI"
	case SideRight:
		return "LD"
	case SideLeft:
		return "LI"
	}
	return fmt.Sprintf("Camera(%d)", int(c))
}

// Label returns a human readable camera position name.
func (c Camera) Label() string {
	switch c {
	case FrontRight:
		return "Front Right"
	case FrontLeft:
		return "Front Left"
	case SideRight:
		return "Side Right"
	case SideLeft:
		return "Side Left"
	}
	return c.String()
}

// OutputDir returns the frame output subdirectory for the camera, matching
// the layout downstream map tooling expects.
func (c Camera) OutputDir() string {
	switch c {
	case FrontRight:
		return "Imagenes_Frontal_Derecha"
	case FrontLeft:
		return "Imagenes_Frontal_Izquierda"
	case SideRight:
		return "Imagenes_Lateral_Derecha"
	case SideLeft:
		return "Imagenes_Lateral_Izquierda"
	}
	return c.String()
}

// ParseCamera maps a two letter camera code to its role.
func ParseCamera(code string) (Camera, error) {
	switch code {
	case "FD":
		return FrontRight, nil
	case "FI":
		return FrontLeft, nil
	case "LD":
		return SideRight, nil
	case "LI":
		return SideLeft, nil
	}
	return 0, fmt.Errorf("unknown camera code %q", code)
}
