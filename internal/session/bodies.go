package session

import (
	"github.com/banshee-data/depthsense/internal/body"
	"github.com/banshee-data/depthsense/internal/device"
)

func (s *Session) loadSkeletons(ch device.Channel, dst *body.Skeletons) *body.Skeletons {
	if !s.Ready() {
		return dst
	}
	src := s.boundary.FetchSamples(ch)
	s.account(ch, dst.Decode(src), len(src), body.SlotCount*body.SkeletonStride)
	return dst
}

// Skeleton3D pulls and decodes camera-space skeletons for every body
// slot. Slot index is assigned by the device and does not identify a
// person across frames; use Skeleton.TrackingID for that.
func (s *Session) Skeleton3D() *body.Skeletons {
	return s.loadSkeletons(device.Skeleton3D, &s.skeleton3D)
}

// SkeletonDepthMap pulls skeletons projected into depth image space.
func (s *Session) SkeletonDepthMap() *body.Skeletons {
	return s.loadSkeletons(device.SkeletonDepth, &s.skeletonDepth)
}

// SkeletonColorMap pulls skeletons projected into color image space.
func (s *Session) SkeletonColorMap() *body.Skeletons {
	return s.loadSkeletons(device.SkeletonColor, &s.skeletonColor)
}

// GenerateFaceData pulls the color-space and infrared-space face arrays
// together and rebuilds every slot from both. If either array is
// malformed no slot changes.
func (s *Session) GenerateFaceData() {
	if !s.Ready() {
		return
	}
	color := s.boundary.FetchSamples(device.Face)
	infrared := s.boundary.FetchFaceInfrared()

	want := body.SlotCount * body.FaceStride
	got := len(color)
	if got == want {
		got = len(infrared)
	}
	s.account(device.Face, s.faces.Decode(color, infrared), got, want)
}

// FaceData returns the face slots as of the last GenerateFaceData.
func (s *Session) FaceData() *body.Faces { return &s.faces }

// HDFaceVertices pulls and decodes the high-definition face meshes.
func (s *Session) HDFaceVertices() *body.HDFaces {
	if !s.Ready() {
		return &s.hdFaces
	}
	src := s.boundary.FetchSamples(device.HDFace)
	s.account(device.HDFace, s.hdFaces.Decode(src), len(src), body.SlotCount*body.HDFaceStride)
	return &s.hdFaces
}
