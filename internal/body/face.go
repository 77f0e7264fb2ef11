package body

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Face wire layout, shared by the color-space and infrared-space arrays.
const (
	FacePointCount    = 5
	FacePropertyCount = 8

	facePointsOffset   = 0
	faceBoxOffset      = facePointsOffset + FacePointCount*2
	faceRotationOffset = faceBoxOffset + 4
	facePropsOffset    = faceRotationOffset + 3
	faceTrackedOffset  = facePropsOffset + FacePropertyCount

	FaceStride = faceTrackedOffset + 1
)

// Face landmark indices into Face.ColorPoints / Face.InfraredPoints.
const (
	EyeLeft = iota
	EyeRight
	Nose
	MouthCornerLeft
	MouthCornerRight
)

// FaceProperty indexes Face.Properties.
type FaceProperty int

const (
	Happy FaceProperty = iota
	Engaged
	WearingGlasses
	LeftEyeClosed
	RightEyeClosed
	MouthOpen
	MouthMoved
	LookingAway
)

// DetectionResult is the driver's verdict on a face property.
type DetectionResult int

const (
	DetectionUnknown DetectionResult = iota
	DetectionNo
	DetectionMaybe
	DetectionYes
)

func (d DetectionResult) String() string {
	switch d {
	case DetectionUnknown:
		return "unknown"
	case DetectionNo:
		return "no"
	case DetectionMaybe:
		return "maybe"
	case DetectionYes:
		return "yes"
	default:
		return fmt.Sprintf("detection(%d)", int(d))
	}
}

// Rect is an axis-aligned box in image pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Face is one body slot's face data in both color and infrared space.
// Orientation and properties come from the color-space array.
type Face struct {
	Tracked        bool
	ColorPoints    [FacePointCount]r2.Point
	InfraredPoints [FacePointCount]r2.Point
	ColorBox       Rect
	InfraredBox    Rect

	// Head rotation in degrees.
	Pitch, Yaw, Roll float64

	Properties [FacePropertyCount]DetectionResult
}

// Property returns the detection result for p, or DetectionUnknown for
// properties outside the face model.
func (f *Face) Property(p FaceProperty) DetectionResult {
	if p < 0 || int(p) >= FacePropertyCount {
		return DetectionUnknown
	}
	return f.Properties[p]
}

func decodePoints(dst *[FacePointCount]r2.Point, rec []float32) {
	for i := range dst {
		dst[i] = r2.Point{X: float64(rec[facePointsOffset+i*2]), Y: float64(rec[facePointsOffset+i*2+1])}
	}
}

func decodeBox(rec []float32) Rect {
	b := rec[faceBoxOffset : faceBoxOffset+4]
	return Rect{X: float64(b[0]), Y: float64(b[1]), Width: float64(b[2]), Height: float64(b[3])}
}

func (f *Face) decode(color, infrared []float32) {
	decodePoints(&f.ColorPoints, color)
	decodePoints(&f.InfraredPoints, infrared)
	f.ColorBox = decodeBox(color)
	f.InfraredBox = decodeBox(infrared)
	f.Pitch = float64(color[faceRotationOffset])
	f.Yaw = float64(color[faceRotationOffset+1])
	f.Roll = float64(color[faceRotationOffset+2])
	for i := range f.Properties {
		f.Properties[i] = DetectionResult(color[facePropsOffset+i])
	}
	f.Tracked = color[faceTrackedOffset] == 1
}

// Faces is the fixed slot array for face data.
type Faces [SlotCount]Face

// Decode rebuilds every slot from the color-space and infrared-space
// arrays fetched together. Both must be SlotCount*FaceStride long;
// otherwise no slot is touched and Decode returns false, so a record never
// mixes landmarks from two different frames.
func (f *Faces) Decode(color, infrared []float32) bool {
	want := SlotCount * FaceStride
	if len(color) != want || len(infrared) != want {
		return false
	}
	for i := range f {
		lo, hi := i*FaceStride, (i+1)*FaceStride
		f[i].decode(color[lo:hi], infrared[lo:hi])
	}
	return true
}
