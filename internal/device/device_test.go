package device

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depthsense/internal/body"
)

func TestChannel_StringRoundTrip(t *testing.T) {
	for _, ch := range Channels() {
		got, err := ParseChannel(ch.String())
		require.NoError(t, err, ch.String())
		assert.Equal(t, ch, got)
	}

	got, err := ParseChannel(" Long-Exposure-Infrared ")
	require.NoError(t, err)
	assert.Equal(t, LongExposureInfrared, got)

	_, err = ParseChannel("thermal")
	assert.Error(t, err)
	assert.Equal(t, "channel(99)", Channel(99).String())
	assert.False(t, Channel(-1).Valid())
}

func TestRuntime_InitializeIsIdempotent(t *testing.T) {
	TeardownRuntime()
	defer TeardownRuntime()

	loads := 0
	loader := func() error { loads++; return nil }

	require.NoError(t, InitializeRuntime(loader))
	require.NoError(t, InitializeRuntime(loader))
	assert.Equal(t, 1, loads)
	assert.True(t, RuntimeInitialized())

	TeardownRuntime()
	assert.False(t, RuntimeInitialized())
}

func TestRuntime_LoaderFailureKeepsGateClosed(t *testing.T) {
	TeardownRuntime()
	defer TeardownRuntime()

	boom := errors.New("library not found")
	err := InitializeRuntime(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, RuntimeInitialized())

	require.NoError(t, InitializeRuntime(nil))
	assert.True(t, RuntimeInitialized())
}

func TestDisabled(t *testing.T) {
	d := NewDisabled()
	var _ Boundary = d

	assert.False(t, d.Update())
	require.True(t, d.Init())
	assert.True(t, d.Update())

	d.Enable(Depth, true)
	assert.Nil(t, d.FetchPixels(Depth))
	assert.Nil(t, d.FetchSamples(Skeleton3D))
	assert.Nil(t, d.FetchUserPixels(0))
	assert.Nil(t, d.FetchFaceInfrared())

	d.SetDepthThreshold(HighThreshold, 2000)
	assert.Equal(t, int32(2000), d.DepthThreshold(HighThreshold))
	assert.Equal(t, int32(0), d.DepthThreshold(LowThreshold))

	d.Shutdown()
	assert.False(t, d.Update())
}

func TestSynthetic_GatesOnEnableAndOpen(t *testing.T) {
	s := NewSynthetic()
	var _ Boundary = s

	s.Enable(Depth, true)
	assert.Nil(t, s.FetchPixels(Depth), "closed device returns no data")

	require.True(t, s.Init())
	defer s.Shutdown()

	assert.Len(t, s.FetchPixels(Depth), DepthWidth*DepthHeight)
	assert.Nil(t, s.FetchPixels(Infrared), "disabled channel returns no data")

	s.Enable(Depth, false)
	assert.Nil(t, s.FetchPixels(Depth))
}

func TestSynthetic_FrameSizes(t *testing.T) {
	s := NewSynthetic()
	require.True(t, s.Init())
	defer s.Shutdown()
	for _, ch := range Channels() {
		s.Enable(ch, true)
	}

	assert.Len(t, s.FetchPixels(Color), ColorWidth*ColorHeight)
	assert.Len(t, s.FetchPixels(BodyIndex), DepthWidth*DepthHeight)
	assert.Len(t, s.FetchUserPixels(1), DepthWidth*DepthHeight)
	assert.Len(t, s.FetchSamples(Skeleton3D), body.SlotCount*body.SkeletonStride)
	assert.Len(t, s.FetchSamples(HDFace), body.SlotCount*body.HDFaceStride)
	assert.Len(t, s.FetchSamples(PointCloud), DepthWidth*DepthHeight*3)
	assert.Len(t, s.FetchSamples(ColorChannelTriple), ColorWidth*ColorHeight*3)

	color := s.FetchSamples(Face)
	assert.Len(t, color, body.SlotCount*body.FaceStride)
	assert.Len(t, s.FetchFaceInfrared(), len(color))
}

func TestSynthetic_SkeletonsFollowUserLimit(t *testing.T) {
	s := NewSynthetic()
	s.Bodies = 4
	require.True(t, s.Init())
	defer s.Shutdown()
	s.Enable(Skeleton3D, true)

	var sk body.Skeletons
	require.True(t, sk.Decode(s.FetchSamples(Skeleton3D)))
	assert.Equal(t, 4, sk.TrackedCount())

	s.SetUserLimit(2)
	require.True(t, sk.Decode(s.FetchSamples(Skeleton3D)))
	assert.Equal(t, 2, sk.TrackedCount())
	assert.True(t, sk[0].Tracked)
	assert.False(t, sk[3].Tracked)
}

func TestSynthetic_PointCloudHonoursThresholds(t *testing.T) {
	s := NewSynthetic()
	require.True(t, s.Init())
	defer s.Shutdown()
	s.Enable(PointCloud, true)

	// Everything in the scene sits between 2.0m and 3.5m.
	s.SetDepthThreshold(HighThreshold, 1000)
	pc := s.FetchSamples(PointCloud)
	for i := 2; i < len(pc); i += 3 {
		if pc[i] != 0 {
			t.Fatalf("point %d at z=%v survived a 1m far cutoff", i/3, pc[i])
		}
	}

	s.SetDepthThreshold(HighThreshold, 4500)
	pc = s.FetchSamples(PointCloud)
	assert.InDelta(t, 3.5, pc[2], 1e-6, "top-left pixel sees the wall")
}

func TestSynthetic_MapPoint(t *testing.T) {
	s := NewSynthetic()

	u, v := s.MapPoint(DepthSpace, 0, 0, 2)
	assert.InDelta(t, float64(DepthWidth/2), float64(u), 1e-3)
	assert.InDelta(t, float64(DepthHeight/2), float64(v), 1e-3)

	u, _ = s.MapPoint(ColorSpace, 0.5, 0, 1)
	assert.Greater(t, u, float32(ColorWidth/2))

	u, v = s.MapPoint(DepthSpace, 0, 0, 0)
	assert.True(t, math.IsInf(float64(u), -1))
	assert.True(t, math.IsInf(float64(v), -1))
}

func TestTestable_Queues(t *testing.T) {
	tb := NewTestable()
	var _ Boundary = tb

	tb.QueuePixels(Color, []uint32{1}, nil)
	tb.SetPixels(Color, []uint32{9})

	assert.Equal(t, []uint32{1}, tb.FetchPixels(Color))
	assert.Nil(t, tb.FetchPixels(Color))
	assert.Equal(t, []uint32{9}, tb.FetchPixels(Color))
	assert.Equal(t, 3, tb.FetchCalls(Color))

	tb.MapFunc = func(_ Space, x, y, z float32) (float32, float32) { return x * z, y * z }
	u, v := tb.MapPoint(ColorSpace, 1, 2, 3)
	assert.Equal(t, float32(3), u)
	assert.Equal(t, float32(6), v)
}
