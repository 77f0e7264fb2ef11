package session

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/frame"
)

func pattern(n int, seed uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = seed*1_000_003 + uint32(i)
	}
	return out
}

func TestDepthImage_Scenario(t *testing.T) {
	s, tb, _ := newTestSession(t)
	s.ActivateRawDepth(true)

	in := pattern(device.DepthWidth*device.DepthHeight, 7)
	tb.QueuePixels(device.Depth, in)

	img := s.DepthImage()
	assert.Equal(t, device.DepthWidth*device.DepthHeight, img.Len())
	assert.Equal(t, device.DepthWidth, img.Width())
	assert.Equal(t, device.DepthHeight, img.Height())
	if diff := cmp.Diff(in, s.RawDepth()); diff != "" {
		t.Errorf("raw depth mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(in, img.Pixels()); diff != "" {
		t.Errorf("depth pixels mismatch (-want +got):\n%s", diff)
	}
}

// imageGetters lists every pixel channel with its accessor and expected
// size.
func imageGetters(s *Session) []struct {
	ch  device.Channel
	get func() *frame.Buffer[uint32]
	n   int
} {
	depthN := device.DepthWidth * device.DepthHeight
	return []struct {
		ch  device.Channel
		get func() *frame.Buffer[uint32]
		n   int
	}{
		{device.Color, s.ColorImage, device.ColorWidth * device.ColorHeight},
		{device.Depth, s.DepthImage, depthN},
		{device.Infrared, s.InfraredImage, depthN},
		{device.LongExposureInfrared, s.LongExposureImage, depthN},
		{device.BodyIndex, s.BodyTrackImage, depthN},
		{device.DepthMask, s.DepthMaskImage, depthN},
		{device.PointCloudDepthImage, s.PointCloudDepthImage, depthN},
	}
}

func TestImageGetters_WrongLengthLeavesBufferUnchanged(t *testing.T) {
	s, tb, _ := newTestSession(t)

	for _, g := range imageGetters(s) {
		t.Run(g.ch.String(), func(t *testing.T) {
			good := pattern(g.n, 3)
			tb.QueuePixels(g.ch, good, good[:g.n-1], append(good, 1), []uint32{})

			b := g.get()
			require.Equal(t, uint64(1), b.Seq())
			want := append([]uint32(nil), b.Pixels()...)

			for i := 0; i < 3; i++ {
				b = g.get()
				assert.Equal(t, uint64(1), b.Seq(), "rejected fetch %d must not commit", i)
			}
			if diff := cmp.Diff(want, b.Pixels()); diff != "" {
				t.Errorf("buffer changed after rejected fetches (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImageGetters_RawMatchesPixels(t *testing.T) {
	s, tb, _ := newTestSession(t)
	for _, ch := range []device.Channel{device.Color, device.Depth, device.Infrared, device.LongExposureInfrared, device.BodyIndex, device.DepthMask} {
		require.NoError(t, s.ActivateRaw(ch, true))
	}

	for _, g := range imageGetters(s) {
		if g.ch == device.PointCloudDepthImage {
			continue
		}
		t.Run(g.ch.String(), func(t *testing.T) {
			in := pattern(g.n, uint32(g.ch)+1)
			tb.QueuePixels(g.ch, in)
			b := g.get()
			if diff := cmp.Diff(b.Pixels(), b.Raw()); diff != "" {
				t.Errorf("raw and pixels disagree (-pixels +raw):\n%s", diff)
			}
			if diff := cmp.Diff(in, b.Raw()); diff != "" {
				t.Errorf("raw is not the fetched array (-want +got):\n%s", diff)
			}
		})
	}
}

func TestActivateRaw_ToggleDoesNotClear(t *testing.T) {
	s, tb, _ := newTestSession(t)
	s.ActivateRawInfrared(true)

	in := pattern(device.DepthWidth*device.DepthHeight, 11)
	tb.QueuePixels(device.Infrared, in)
	s.InfraredImage()

	s.ActivateRawInfrared(false)
	s.ActivateRawInfrared(true)
	if diff := cmp.Diff(in, s.RawInfrared()); diff != "" {
		t.Errorf("toggle changed raw samples (-want +got):\n%s", diff)
	}

	// With retention off, a new frame updates pixels but leaves raw stale.
	s.ActivateRawInfrared(false)
	tb.QueuePixels(device.Infrared, pattern(device.DepthWidth*device.DepthHeight, 12))
	s.InfraredImage()
	if diff := cmp.Diff(in, s.RawInfrared()); diff != "" {
		t.Errorf("raw updated while retention off (-want +got):\n%s", diff)
	}
}

func TestActivateRaw_UnsupportedChannel(t *testing.T) {
	s := New(device.NewTestable())
	assert.ErrorIs(t, s.ActivateRaw(device.Skeleton3D, true), ErrNoRawBuffer)
	assert.Nil(t, s.RawColor(), "raw buffer is allocated on first activation")
}

func TestColorImage_EmptyTwice(t *testing.T) {
	s, tb, _ := newTestSession(t)

	in := pattern(device.ColorWidth*device.ColorHeight, 5)
	tb.QueuePixels(device.Color, in)
	first := s.ColorImage()
	want := append([]uint32(nil), first.Pixels()...)

	a := s.ColorImage()
	b := s.ColorImage()
	assert.Same(t, first, a)
	assert.Same(t, a, b)
	if diff := cmp.Diff(want, b.Pixels()); diff != "" {
		t.Errorf("empty fetches changed the image (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, tb.FetchCalls(device.Color))

	st := s.Status().Channels[device.Color.String()]
	assert.Equal(t, uint64(1), st.Loaded)
	assert.Equal(t, uint64(2), st.Skipped)
}

func TestGetters_NotReadyDoNotFetch(t *testing.T) {
	tb := device.NewTestable()
	tb.SetPixels(device.Depth, pattern(device.DepthWidth*device.DepthHeight, 1))
	s := New(tb)

	b := s.DepthImage()
	assert.Equal(t, uint64(0), b.Seq())
	s.Skeleton3D()
	s.GenerateFaceData()
	s.PointCloudDepthPositions()
	assert.Equal(t, 0, tb.FetchCalls(device.Depth))
	assert.Equal(t, 0, tb.FetchCalls(device.Skeleton3D))
	assert.Equal(t, 0, tb.FetchCalls(device.PointCloud))

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Close())
	s.DepthImage()
	assert.Equal(t, 0, tb.FetchCalls(device.Depth), "closed session must not fetch")
}

func TestBodyTrackUser(t *testing.T) {
	s, tb, _ := newTestSession(t)

	n := device.DepthWidth * device.DepthHeight
	for i := 0; i < device.MaxUsers; i++ {
		tb.SetUserPixels(i, pattern(n, uint32(100+i)))
	}
	s.GenerateBodyTrackUsers()

	aggregate := s.BodyTrackImage()
	for i := 0; i < device.MaxUsers; i++ {
		u := s.BodyTrackUser(i)
		assert.NotSame(t, aggregate, u, "slot %d", i)
		assert.Equal(t, pattern(n, uint32(100+i))[:4], u.Pixels()[:4], "slot %d", i)
	}
	for _, i := range []int{-1, device.MaxUsers, 100} {
		assert.Same(t, aggregate, s.BodyTrackUser(i), "index %d", i)
	}
}

func TestBodyTrackUsers_CountedApartFromAggregate(t *testing.T) {
	s, tb, _ := newTestSession(t)

	n := device.DepthWidth * device.DepthHeight
	for i := 0; i < device.MaxUsers; i++ {
		tb.SetUserPixels(i, pattern(n, uint32(100+i)))
	}
	s.GenerateBodyTrackUsers()

	st := s.Status()
	assert.Equal(t, uint64(0), st.Channels[device.BodyIndex.String()].Loaded)
	assert.Equal(t, uint64(device.MaxUsers), st.Channels["body_index_users"].Loaded)
	for i := 0; i < device.MaxUsers; i++ {
		assert.Equal(t, frame.RGB, s.BodyTrackUser(i).Format(), "slot %d", i)
	}
}
