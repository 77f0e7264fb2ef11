package body

import "github.com/golang/geo/r2"

// Encoders producing the driver wire format. Hardware-free boundaries use
// them to synthesise frames; decoding goes through the slot arrays.

// EncodeSkeleton writes s into one slot record of SkeletonStride floats.
func EncodeSkeleton(rec []float32, s *Skeleton) {
	_ = rec[SkeletonStride-1]
	for j := 0; j < JointCount; j++ {
		jt := &s.Joints[j]
		f := rec[j*jointFields : (j+1)*jointFields]
		f[0], f[1], f[2] = float32(jt.Position.X), float32(jt.Position.Y), float32(jt.Position.Z)
		f[3], f[4], f[5], f[6] = float32(jt.Orientation.Imag), float32(jt.Orientation.Jmag), float32(jt.Orientation.Kmag), float32(jt.Orientation.Real)
		f[7] = float32(jt.State)
		f[8] = float32(j)
	}
	t := rec[trailerOffset : trailerOffset+jointFields]
	for i := range t {
		t[i] = 0
	}
	t[trailerLeftHand] = float32(s.LeftHand)
	t[trailerRightHand] = float32(s.RightHand)
	t[trailerTrackingID] = float32(s.TrackingID)
	if s.Tracked {
		t[trailerTrackedFlag] = 1
	}
}

// EncodeFace writes the color-space and infrared-space records of f.
func EncodeFace(color, infrared []float32, f *Face) {
	_ = color[FaceStride-1]
	_ = infrared[FaceStride-1]
	encodeFaceSpace(color, &f.ColorPoints, f.ColorBox, f)
	encodeFaceSpace(infrared, &f.InfraredPoints, f.InfraredBox, f)
}

func encodeFaceSpace(rec []float32, pts *[FacePointCount]r2.Point, box Rect, f *Face) {
	for i, p := range pts {
		rec[facePointsOffset+i*2] = float32(p.X)
		rec[facePointsOffset+i*2+1] = float32(p.Y)
	}
	rec[faceBoxOffset] = float32(box.X)
	rec[faceBoxOffset+1] = float32(box.Y)
	rec[faceBoxOffset+2] = float32(box.Width)
	rec[faceBoxOffset+3] = float32(box.Height)
	rec[faceRotationOffset] = float32(f.Pitch)
	rec[faceRotationOffset+1] = float32(f.Yaw)
	rec[faceRotationOffset+2] = float32(f.Roll)
	for i, p := range f.Properties {
		rec[facePropsOffset+i] = float32(p)
	}
	rec[faceTrackedOffset] = 0
	if f.Tracked {
		rec[faceTrackedOffset] = 1
	}
}

// EncodeHDFace writes h into one slot record of HDFaceStride floats.
func EncodeHDFace(rec []float32, h *HDFace) {
	_ = rec[HDFaceStride-1]
	for i, v := range h.Vertices {
		rec[i*2] = float32(v.X)
		rec[i*2+1] = float32(v.Y)
	}
	rec[HDFaceStride-1] = 0
	if h.Tracked {
		rec[HDFaceStride-1] = 1
	}
}
