package device

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/depthsense/internal/body"
)

// Pinhole intrinsics used by the synthetic boundary's coordinate mapper.
const (
	depthFocal   = 365.5
	depthCentreX = DepthWidth / 2
	depthCentreY = DepthHeight / 2
	colorFocal   = 1081.37
	colorCentreX = ColorWidth/2 - 0.5
	colorCentreY = ColorHeight/2 - 0.5

	// Distance of the synthetic back wall in metres.
	wallDepth = 3.5
)

// standingPose is a neutral skeleton in metres relative to SpineBase.
var standingPose = [body.JointCount]r3.Vector{
	body.SpineBase:     {X: 0, Y: 0, Z: 0},
	body.SpineMid:      {X: 0, Y: 0.30, Z: 0},
	body.Neck:          {X: 0, Y: 0.62, Z: 0},
	body.Head:          {X: 0, Y: 0.75, Z: 0},
	body.ShoulderLeft:  {X: -0.18, Y: 0.55, Z: 0},
	body.ElbowLeft:     {X: -0.24, Y: 0.28, Z: 0},
	body.WristLeft:     {X: -0.26, Y: 0.04, Z: 0},
	body.HandLeft:      {X: -0.27, Y: -0.03, Z: 0},
	body.ShoulderRight: {X: 0.18, Y: 0.55, Z: 0},
	body.ElbowRight:    {X: 0.24, Y: 0.28, Z: 0},
	body.WristRight:    {X: 0.26, Y: 0.04, Z: 0},
	body.HandRight:     {X: 0.27, Y: -0.03, Z: 0},
	body.HipLeft:       {X: -0.09, Y: -0.03, Z: 0},
	body.KneeLeft:      {X: -0.10, Y: -0.45, Z: 0},
	body.AnkleLeft:     {X: -0.10, Y: -0.85, Z: 0},
	body.FootLeft:      {X: -0.10, Y: -0.90, Z: -0.08},
	body.HipRight:      {X: 0.09, Y: -0.03, Z: 0},
	body.KneeRight:     {X: 0.10, Y: -0.45, Z: 0},
	body.AnkleRight:    {X: 0.10, Y: -0.85, Z: 0},
	body.FootRight:     {X: 0.10, Y: -0.90, Z: -0.08},
	body.SpineShoulder: {X: 0, Y: 0.55, Z: 0},
	body.HandTipLeft:   {X: -0.28, Y: -0.10, Z: 0},
	body.ThumbLeft:     {X: -0.24, Y: -0.05, Z: -0.03},
	body.HandTipRight:  {X: 0.28, Y: -0.10, Z: 0},
	body.ThumbRight:    {X: 0.24, Y: -0.05, Z: -0.03},
}

// userColors tints each body slot in the body-index image.
var userColors = [MaxUsers]uint32{
	0xffff0000, 0xff00ff00, 0xff0000ff, 0xffffff00, 0xffff00ff, 0xff00ffff,
}

// Synthetic is a hardware-free Boundary that renders a deterministic
// scene: a back wall and Bodies people swaying in front of it. Every
// channel produces correctly sized data once enabled, so it exercises the
// whole acquisition path in demos and tests.
//
// The scene advances one frame per Update call, which the session's poll
// loop makes once per frame interval. Fetch results are reused between
// calls, matching the driver contract.
type Synthetic struct {
	mu sync.Mutex

	// Bodies is how many people the scene contains (at most MaxUsers).
	Bodies int

	open       bool
	frame      uint64
	enabled    [channelCount]bool
	userLimit  int
	thresholds [2]int32

	pixels   map[Channel][]uint32
	users    [MaxUsers][]uint32
	samples  map[Channel][]float32
	faceIR   []float32
	skeleton body.Skeleton
	face     body.Face
	hdFace   body.HDFace
}

// NewSynthetic returns a Synthetic boundary with two people in the scene.
func NewSynthetic() *Synthetic {
	return &Synthetic{
		Bodies:     2,
		userLimit:  MaxUsers,
		thresholds: [2]int32{0, 4500},
		pixels:     make(map[Channel][]uint32),
		samples:    make(map[Channel][]float32),
	}
}

func (s *Synthetic) Init() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	return true
}

func (s *Synthetic) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Synthetic) Version() string { return "synthetic-1" }

// Update advances the scene by one frame and reports liveness.
func (s *Synthetic) Update() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false
	}
	s.frame++
	return true
}

func (s *Synthetic) Enable(ch Channel, on bool) {
	if !ch.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[ch] = on
}

func (s *Synthetic) SetUserLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLimit = max(1, min(n, MaxUsers))
}

func (s *Synthetic) SetDepthThreshold(which Threshold, mm int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds[which&1] = mm
}

func (s *Synthetic) DepthThreshold(which Threshold) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thresholds[which&1]
}

func (s *Synthetic) MapPoint(space Space, x, y, z float32) (float32, float32) {
	p := project(space, r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)})
	return float32(p.X), float32(p.Y)
}

func project(space Space, p r3.Vector) r2.Point {
	if p.Z <= 0 {
		inf := math.Inf(-1)
		return r2.Point{X: inf, Y: inf}
	}
	if space == ColorSpace {
		return r2.Point{X: colorCentreX + colorFocal*p.X/p.Z, Y: colorCentreY - colorFocal*p.Y/p.Z}
	}
	return r2.Point{X: depthCentreX + depthFocal*p.X/p.Z, Y: depthCentreY - depthFocal*p.Y/p.Z}
}

// activeBodies is the number of people visible under the user limit.
func (s *Synthetic) activeBodies() int {
	return max(0, min(s.Bodies, s.userLimit, MaxUsers))
}

// spineBase returns the camera-space position of body i at the current
// frame.
func (s *Synthetic) spineBase(i int) r3.Vector {
	phase := float64(s.frame)/30 + float64(i)
	return r3.Vector{
		X: -0.8 + 0.55*float64(i) + 0.25*math.Sin(phase),
		Y: -0.1,
		Z: 2.0 + 0.3*float64(i),
	}
}

// sceneDepth returns the depth in metres at depth pixel (u, v) and the
// body slot covering it, or -1 for the wall.
func (s *Synthetic) sceneDepth(u, v int) (float64, int) {
	for i := 0; i < s.activeBodies(); i++ {
		base := s.spineBase(i)
		centre := project(DepthSpace, base)
		halfW := depthFocal * 0.25 / base.Z
		top := project(DepthSpace, base.Add(standingPose[body.Head])).Y
		bottom := project(DepthSpace, base.Add(standingPose[body.FootLeft])).Y
		if math.Abs(float64(u)-centre.X) <= halfW && float64(v) >= top && float64(v) <= bottom {
			return base.Z, i
		}
	}
	return wallDepth, -1
}

func grayPixel(g uint8) uint32 {
	v := uint32(g)
	return 0xff000000 | v<<16 | v<<8 | v
}

func (s *Synthetic) reuse(ch Channel, n int) []uint32 {
	buf := s.pixels[ch]
	if len(buf) != n {
		buf = make([]uint32, n)
		s.pixels[ch] = buf
	}
	return buf
}

func (s *Synthetic) reuseSamples(ch Channel, n int) []float32 {
	buf := s.samples[ch]
	if len(buf) != n {
		buf = make([]float32, n)
		s.samples[ch] = buf
	}
	return buf
}

func (s *Synthetic) FetchPixels(ch Channel) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || !ch.Valid() || !s.enabled[ch] {
		return nil
	}

	switch ch {
	case Color:
		out := s.reuse(ch, ColorWidth*ColorHeight)
		shift := uint32(s.frame)
		for y := 0; y < ColorHeight; y++ {
			row := out[y*ColorWidth : (y+1)*ColorWidth]
			for x := range row {
				r := uint32(x*255/ColorWidth) + shift
				g := uint32(y * 255 / ColorHeight)
				row[x] = 0xff000000 | (r&0xff)<<16 | (g&0xff)<<8 | 0x40
			}
		}
		return out
	case Depth, DepthMask, BodyIndex, PointCloudDepthImage:
		out := s.reuse(ch, DepthWidth*DepthHeight)
		low, high := float64(s.thresholds[LowThreshold])/1000, float64(s.thresholds[HighThreshold])/1000
		for v := 0; v < DepthHeight; v++ {
			for u := 0; u < DepthWidth; u++ {
				z, user := s.sceneDepth(u, v)
				gray := uint8(255 - z*255/wallDepth)
				p := &out[v*DepthWidth+u]
				switch ch {
				case Depth:
					*p = grayPixel(gray)
				case BodyIndex:
					*p = 0xffffffff
					if user >= 0 {
						*p = userColors[user]
					}
				case DepthMask:
					*p = grayPixel(gray)
					if user >= 0 {
						*p = userColors[user] & 0xff7f7f7f
					}
				case PointCloudDepthImage:
					*p = 0xff000000
					if z >= low && z <= high {
						*p = grayPixel(gray)
					}
				}
			}
		}
		return out
	case Infrared, LongExposureInfrared:
		out := s.reuse(ch, DepthWidth*DepthHeight)
		period := 40.0
		if ch == LongExposureInfrared {
			period = 160
		}
		for i := range out {
			u, v := i%DepthWidth, i/DepthWidth
			out[i] = grayPixel(uint8(128 + 100*math.Sin(float64(u+v+int(s.frame))/period)))
		}
		return out
	default:
		return nil
	}
}

func (s *Synthetic) FetchUserPixels(slot int) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || !s.enabled[BodyIndex] || slot < 0 || slot >= MaxUsers {
		return nil
	}
	out := s.users[slot]
	if out == nil {
		out = make([]uint32, DepthWidth*DepthHeight)
		s.users[slot] = out
	}
	for v := 0; v < DepthHeight; v++ {
		for u := 0; u < DepthWidth; u++ {
			_, user := s.sceneDepth(u, v)
			out[v*DepthWidth+u] = 0xffffffff
			if user == slot {
				out[v*DepthWidth+u] = 0xff000000
			}
		}
	}
	return out
}

func (s *Synthetic) FetchSamples(ch Channel) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || !ch.Valid() || !s.enabled[ch] {
		return nil
	}

	switch ch {
	case Skeleton3D, SkeletonDepth, SkeletonColor:
		out := s.reuseSamples(ch, body.SlotCount*body.SkeletonStride)
		for i := 0; i < body.SlotCount; i++ {
			s.buildSkeleton(ch, i)
			body.EncodeSkeleton(out[i*body.SkeletonStride:(i+1)*body.SkeletonStride], &s.skeleton)
		}
		return out
	case Face:
		color := s.reuseSamples(ch, body.SlotCount*body.FaceStride)
		if len(s.faceIR) != len(color) {
			s.faceIR = make([]float32, len(color))
		}
		for i := 0; i < body.SlotCount; i++ {
			s.buildFace(i)
			lo, hi := i*body.FaceStride, (i+1)*body.FaceStride
			body.EncodeFace(color[lo:hi], s.faceIR[lo:hi], &s.face)
		}
		return color
	case HDFace:
		out := s.reuseSamples(ch, body.SlotCount*body.HDFaceStride)
		for i := 0; i < body.SlotCount; i++ {
			s.buildHDFace(i)
			body.EncodeHDFace(out[i*body.HDFaceStride:(i+1)*body.HDFaceStride], &s.hdFace)
		}
		return out
	case PointCloud:
		out := s.reuseSamples(ch, DepthWidth*DepthHeight*3)
		low, high := float64(s.thresholds[LowThreshold])/1000, float64(s.thresholds[HighThreshold])/1000
		for v := 0; v < DepthHeight; v++ {
			for u := 0; u < DepthWidth; u++ {
				i := (v*DepthWidth + u) * 3
				z, _ := s.sceneDepth(u, v)
				if z < low || z > high {
					out[i], out[i+1], out[i+2] = 0, 0, 0
					continue
				}
				out[i] = float32((float64(u) - depthCentreX) * z / depthFocal)
				out[i+1] = float32((depthCentreY - float64(v)) * z / depthFocal)
				out[i+2] = float32(z)
			}
		}
		return out
	case PointCloudColor:
		out := s.reuseSamples(ch, ColorWidth*ColorHeight*3)
		for i := 0; i < ColorWidth*ColorHeight; i++ {
			u, v := i%ColorWidth, i/ColorWidth
			out[i*3] = float32((float64(u) - colorCentreX) * wallDepth / colorFocal)
			out[i*3+1] = float32((colorCentreY - float64(v)) * wallDepth / colorFocal)
			out[i*3+2] = wallDepth
		}
		return out
	case ColorChannelTriple:
		out := s.reuseSamples(ch, ColorWidth*ColorHeight*3)
		shift := float32(s.frame%256) / 255
		for i := 0; i < ColorWidth*ColorHeight; i++ {
			u, v := i%ColorWidth, i/ColorWidth
			out[i*3] = float32(u) / ColorWidth
			out[i*3+1] = float32(v) / ColorHeight
			out[i*3+2] = shift
		}
		return out
	default:
		return nil
	}
}

func (s *Synthetic) FetchFaceInfrared() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || !s.enabled[Face] {
		return nil
	}
	return s.faceIR
}

// buildSkeleton fills s.skeleton for slot i in the space of ch.
func (s *Synthetic) buildSkeleton(ch Channel, i int) {
	sk := &s.skeleton
	*sk = body.Skeleton{}
	if i >= s.activeBodies() {
		return
	}
	sk.Tracked = true
	sk.TrackingID = uint32(1000 + i)
	sk.LeftHand, sk.RightHand = body.HandOpen, body.HandClosed
	base := s.spineBase(i)
	for j := range sk.Joints {
		p := base.Add(standingPose[j])
		switch ch {
		case SkeletonDepth:
			q := project(DepthSpace, p)
			p = r3.Vector{X: q.X, Y: q.Y}
		case SkeletonColor:
			q := project(ColorSpace, p)
			p = r3.Vector{X: q.X, Y: q.Y}
		}
		sk.Joints[j] = body.Joint{
			Type:        body.JointType(j),
			Position:    p,
			Orientation: quat.Number{Real: 1},
			State:       body.Tracked,
		}
	}
}

func (s *Synthetic) buildFace(i int) {
	f := &s.face
	*f = body.Face{}
	if i >= s.activeBodies() {
		return
	}
	head := s.spineBase(i).Add(standingPose[body.Head])
	offsets := [body.FacePointCount]r3.Vector{
		body.EyeLeft:          {X: -0.03, Y: 0.03},
		body.EyeRight:         {X: 0.03, Y: 0.03},
		body.Nose:             {},
		body.MouthCornerLeft:  {X: -0.025, Y: -0.04},
		body.MouthCornerRight: {X: 0.025, Y: -0.04},
	}
	for k, off := range offsets {
		f.ColorPoints[k] = project(ColorSpace, head.Add(off))
		f.InfraredPoints[k] = project(DepthSpace, head.Add(off))
	}
	f.ColorBox = faceBox(ColorSpace, head)
	f.InfraredBox = faceBox(DepthSpace, head)
	f.Yaw = 15 * math.Sin(float64(s.frame)/45)
	f.Properties[body.Engaged] = body.DetectionYes
	f.Properties[body.WearingGlasses] = body.DetectionNo
	f.Properties[body.Happy] = body.DetectionMaybe
	f.Tracked = true
}

func faceBox(space Space, head r3.Vector) body.Rect {
	tl := project(space, head.Add(r3.Vector{X: -0.09, Y: 0.11}))
	br := project(space, head.Add(r3.Vector{X: 0.09, Y: -0.11}))
	return body.Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

func (s *Synthetic) buildHDFace(i int) {
	h := &s.hdFace
	if i >= s.activeBodies() {
		*h = body.HDFace{}
		return
	}
	head := s.spineBase(i).Add(standingPose[body.Head])
	for k := range h.Vertices {
		// Spiral over an ellipsoid cap facing the camera.
		t := float64(k) / body.HDFaceVertexCount
		a := t * 40 * math.Pi
		r := math.Sqrt(t)
		h.Vertices[k] = project(ColorSpace, head.Add(r3.Vector{X: 0.08 * r * math.Cos(a), Y: 0.1 * r * math.Sin(a)}))
	}
	h.Tracked = true
}
