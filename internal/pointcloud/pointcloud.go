// Package pointcloud holds the point-cloud position buffers and the
// near/far depth thresholds the driver applies when it converts depth
// frames to camera-space points.
package pointcloud

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/depthsense/internal/frame"
	"github.com/banshee-data/depthsense/internal/units"
)

// ErrInvalidThreshold is returned when a threshold update would leave the
// low cutoff negative or above the high cutoff.
var ErrInvalidThreshold = errors.New("invalid point cloud threshold")

// Default cutoffs, matching the driver's power-on values.
const (
	DefaultLowThreshold  units.Millimetres = 0
	DefaultHighThreshold units.Millimetres = units.MaxSensorDepth
)

// State owns the point-cloud buffers and thresholds of one session.
type State struct {
	DepthPositions *frame.Buffer[float32]
	ColorPositions *frame.Buffer[float32]
	ColorChannels  *frame.Buffer[float32]

	// Thresholds are written by the caller's goroutine and read by
	// diagnostics from any goroutine.
	low, high atomic.Int32
}

// NewState allocates position buffers for the given depth and color
// resolutions.
func NewState(depthW, depthH, colorW, colorH int) *State {
	s := &State{
		DepthPositions: frame.NewBuffer[float32](depthW, depthH, frame.XYZ),
		ColorPositions: frame.NewBuffer[float32](colorW, colorH, frame.XYZ),
		ColorChannels:  frame.NewBuffer[float32](colorW, colorH, frame.RGBPlanes),
	}
	s.low.Store(int32(DefaultLowThreshold))
	s.high.Store(int32(DefaultHighThreshold))
	return s
}

// LowThreshold returns the near cutoff last set on this session.
func (s *State) LowThreshold() units.Millimetres { return units.Millimetres(s.low.Load()) }

// HighThreshold returns the far cutoff last set on this session.
func (s *State) HighThreshold() units.Millimetres { return units.Millimetres(s.high.Load()) }

// SetLowThreshold stores a new near cutoff. It is visible to readers
// immediately, before the driver has converted another frame.
func (s *State) SetLowThreshold(mm units.Millimetres) error {
	if err := Validate(mm, s.HighThreshold()); err != nil {
		return err
	}
	s.low.Store(int32(mm))
	return nil
}

// SetHighThreshold stores a new far cutoff.
func (s *State) SetHighThreshold(mm units.Millimetres) error {
	if err := Validate(s.LowThreshold(), mm); err != nil {
		return err
	}
	s.high.Store(int32(mm))
	return nil
}

// SetThresholds replaces both cutoffs at once, which allows moving the
// window past its current bounds in one step.
func (s *State) SetThresholds(low, high units.Millimetres) error {
	if err := Validate(low, high); err != nil {
		return err
	}
	s.low.Store(int32(low))
	s.high.Store(int32(high))
	return nil
}

// Validate checks a low/high threshold pair.
func Validate(low, high units.Millimetres) error {
	if low < 0 || high < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative (low=%v high=%v)", ErrInvalidThreshold, low, high)
	}
	if low > high {
		return fmt.Errorf("%w: low %v above high %v", ErrInvalidThreshold, low, high)
	}
	return nil
}

// Bounds is the axis-aligned extent of a set of points.
type Bounds struct {
	Min, Max r3.Vector
	Points   int
}

// DepthBounds returns the extent of the depth positions with a non-zero
// Z. Points is zero when the cloud is empty.
func (s *State) DepthBounds() Bounds {
	b := Bounds{
		Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	pix := s.DepthPositions.Pixels()
	for i := 0; i+2 < len(pix); i += 3 {
		if pix[i+2] == 0 {
			continue
		}
		p := r3.Vector{X: float64(pix[i]), Y: float64(pix[i+1]), Z: float64(pix[i+2])}
		b.Min = r3.Vector{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = r3.Vector{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
		b.Points++
	}
	if b.Points == 0 {
		return Bounds{}
	}
	return b
}
