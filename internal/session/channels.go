package session

import (
	"fmt"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/frame"
)

// account records the outcome of copying a fetched array of length got
// into a buffer expecting want values.
func (s *Session) account(ch device.Channel, ok bool, got, want int) {
	s.record(s.stats[ch], ch.String(), ok, got, want)
}

func (s *Session) record(st *channelStats, label string, ok bool, got, want int) {
	if ok {
		st.loaded.Add(1)
		st.lastLoaded.Store(s.clock.Now().UnixNano())
		s.metrics.RecordLoad(label)
		return
	}
	st.skipped.Add(1)
	s.metrics.RecordSkip(label, frame.Classify(got, want).String())
}

// loadPixels pulls ch from the boundary into b. Arrays of the wrong length
// leave b untouched. Before Open the boundary is not called.
func (s *Session) loadPixels(ch device.Channel, b *frame.Buffer[uint32]) *frame.Buffer[uint32] {
	if !s.Ready() {
		return b
	}
	src := s.boundary.FetchPixels(ch)
	s.account(ch, b.Load(src), len(src), b.Len())
	return b
}

// ColorImage pulls the latest 1920x1080 ARGB color frame.
func (s *Session) ColorImage() *frame.Buffer[uint32] { return s.loadPixels(device.Color, s.color) }

// DepthImage pulls the latest 512x424 depth frame.
func (s *Session) DepthImage() *frame.Buffer[uint32] { return s.loadPixels(device.Depth, s.depth) }

// InfraredImage pulls the latest infrared frame.
func (s *Session) InfraredImage() *frame.Buffer[uint32] {
	return s.loadPixels(device.Infrared, s.infrared)
}

// LongExposureImage pulls the latest long-exposure infrared frame.
func (s *Session) LongExposureImage() *frame.Buffer[uint32] {
	return s.loadPixels(device.LongExposureInfrared, s.longExposure)
}

// BodyTrackImage pulls the latest aggregate body-index image covering
// every tracked user.
func (s *Session) BodyTrackImage() *frame.Buffer[uint32] {
	return s.loadPixels(device.BodyIndex, s.bodyTrack)
}

// DepthMaskImage pulls the latest depth image with users masked in.
func (s *Session) DepthMaskImage() *frame.Buffer[uint32] {
	return s.loadPixels(device.DepthMask, s.depthMask)
}

// PointCloudDepthImage pulls the latest depth image restricted to the
// point-cloud thresholds.
func (s *Session) PointCloudDepthImage() *frame.Buffer[uint32] {
	return s.loadPixels(device.PointCloudDepthImage, s.pcDepthImage)
}

// GenerateBodyTrackUsers refreshes the per-user segmentation buffers.
// The six fetches are counted under body_index_users, apart from the
// aggregate image.
func (s *Session) GenerateBodyTrackUsers() {
	if !s.Ready() {
		return
	}
	for i, b := range s.users {
		src := s.boundary.FetchUserPixels(i)
		s.record(&s.userStats, bodyIndexUsersKey, b.Load(src), len(src), b.Len())
	}
}

// BodyTrackUser returns the segmentation buffer of body slot i as of the
// last GenerateBodyTrackUsers. Any i outside 0..MaxUsers-1 returns the
// aggregate body-track buffer instead.
func (s *Session) BodyTrackUser(i int) *frame.Buffer[uint32] {
	if i < 0 || i >= len(s.users) {
		return s.bodyTrack
	}
	return s.users[i]
}

// rawBuffer returns the image buffer of ch that supports raw retention.
func (s *Session) rawBuffer(ch device.Channel) *frame.Buffer[uint32] {
	switch ch {
	case device.Color:
		return s.color
	case device.Depth:
		return s.depth
	case device.Infrared:
		return s.infrared
	case device.LongExposureInfrared:
		return s.longExposure
	case device.BodyIndex:
		return s.bodyTrack
	case device.DepthMask:
		return s.depthMask
	default:
		return nil
	}
}

// ActivateRaw toggles raw-sample retention for ch. It takes effect on the
// next fetch; turning it off keeps the last retained samples.
func (s *Session) ActivateRaw(ch device.Channel, on bool) error {
	b := s.rawBuffer(ch)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoRawBuffer, ch)
	}
	b.SetRawRetention(on)
	return nil
}

func (s *Session) ActivateRawColor(on bool)        { s.color.SetRawRetention(on) }
func (s *Session) ActivateRawDepth(on bool)        { s.depth.SetRawRetention(on) }
func (s *Session) ActivateRawInfrared(on bool)     { s.infrared.SetRawRetention(on) }
func (s *Session) ActivateRawLongExposure(on bool) { s.longExposure.SetRawRetention(on) }
func (s *Session) ActivateRawBodyTrack(on bool)    { s.bodyTrack.SetRawRetention(on) }
func (s *Session) ActivateRawDepthMask(on bool)    { s.depthMask.SetRawRetention(on) }

// RawColor and the other raw accessors return nil until retention has been
// enabled once for the channel.
func (s *Session) RawColor() []uint32        { return s.color.Raw() }
func (s *Session) RawDepth() []uint32        { return s.depth.Raw() }
func (s *Session) RawInfrared() []uint32     { return s.infrared.Raw() }
func (s *Session) RawLongExposure() []uint32 { return s.longExposure.Raw() }
func (s *Session) RawBodyTrack() []uint32    { return s.bodyTrack.Raw() }
func (s *Session) RawDepthMask() []uint32    { return s.depthMask.Raw() }
