package session

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/frame"
	"github.com/banshee-data/depthsense/internal/pointcloud"
	"github.com/banshee-data/depthsense/internal/units"
)

// loadSamples copies exactly b.Len() values of ch into b. Shorter arrays
// leave b untouched; longer ones are truncated.
func (s *Session) loadSamples(ch device.Channel, b *frame.Buffer[float32]) *frame.Buffer[float32] {
	if !s.Ready() {
		return b
	}
	src := s.boundary.FetchSamples(ch)
	s.account(ch, b.LoadPrefix(src), len(src), b.Len())
	return b
}

// PointCloudDepthPositions pulls the depth-resolution XYZ point cloud in
// metres.
func (s *Session) PointCloudDepthPositions() *frame.Buffer[float32] {
	return s.loadSamples(device.PointCloud, s.pc.DepthPositions)
}

// PointCloudColorPositions pulls the color-resolution XYZ point cloud.
func (s *Session) PointCloudColorPositions() *frame.Buffer[float32] {
	return s.loadSamples(device.PointCloudColor, s.pc.ColorPositions)
}

// ColorChannelBuffer pulls the color frame as normalised RGB triples.
func (s *Session) ColorChannelBuffer() *frame.Buffer[float32] {
	return s.loadSamples(device.ColorChannelTriple, s.pc.ColorChannels)
}

// PointCloud returns the point-cloud state.
func (s *Session) PointCloud() *pointcloud.State { return s.pc }

// SetLowThresholdPC sets the near depth cutoff. The new value is readable
// immediately; the boundary applies it on its next conversion.
func (s *Session) SetLowThresholdPC(mm units.Millimetres) error {
	if err := s.pc.SetLowThreshold(mm); err != nil {
		return err
	}
	s.boundary.SetDepthThreshold(device.LowThreshold, int32(mm))
	return nil
}

// SetHighThresholdPC sets the far depth cutoff.
func (s *Session) SetHighThresholdPC(mm units.Millimetres) error {
	if err := s.pc.SetHighThreshold(mm); err != nil {
		return err
	}
	s.boundary.SetDepthThreshold(device.HighThreshold, int32(mm))
	return nil
}

// SetThresholdsPC sets both cutoffs at once.
func (s *Session) SetThresholdsPC(low, high units.Millimetres) error {
	if err := s.pc.SetThresholds(low, high); err != nil {
		return err
	}
	s.boundary.SetDepthThreshold(device.LowThreshold, int32(low))
	s.boundary.SetDepthThreshold(device.HighThreshold, int32(high))
	return nil
}

func (s *Session) LowThresholdPC() units.Millimetres  { return s.pc.LowThreshold() }
func (s *Session) HighThresholdPC() units.Millimetres { return s.pc.HighThreshold() }

// MapCameraToDepthSpace projects a camera-space point in metres onto the
// depth image. Points the device cannot map come back as -Inf.
func (s *Session) MapCameraToDepthSpace(p r3.Vector) r2.Point {
	return s.mapPoint(device.DepthSpace, p)
}

// MapCameraToColorSpace projects a camera-space point onto the color
// image.
func (s *Session) MapCameraToColorSpace(p r3.Vector) r2.Point {
	return s.mapPoint(device.ColorSpace, p)
}

func (s *Session) mapPoint(space device.Space, p r3.Vector) r2.Point {
	u, v := s.boundary.MapPoint(space, float32(p.X), float32(p.Y), float32(p.Z))
	return r2.Point{X: float64(u), Y: float64(v)}
}
