package session

import (
	"fmt"
	"sort"

	"github.com/banshee-data/depthsense/internal/config"
	"github.com/banshee-data/depthsense/internal/device"
)

// SetChannelEnabled turns a device channel on or off. A disabled
// channel's get operation keeps returning its last data.
func (s *Session) SetChannelEnabled(ch device.Channel, on bool) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
	}
	s.boundary.Enable(ch, on)

	s.enabledMu.Lock()
	s.enabled[ch] = on
	s.enabledMu.Unlock()
	return nil
}

// Enabled reports the last requested state of ch.
func (s *Session) Enabled(ch device.Channel) bool {
	s.enabledMu.Lock()
	defer s.enabledMu.Unlock()
	return s.enabled[ch]
}

// EnabledChannels returns the enabled channels in declaration order.
func (s *Session) EnabledChannels() []device.Channel {
	s.enabledMu.Lock()
	defer s.enabledMu.Unlock()
	out := make([]device.Channel, 0, len(s.enabled))
	for ch, on := range s.enabled {
		if on {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetUserLimit caps how many body slots the device populates.
func (s *Session) SetUserLimit(n int) error {
	if n < 1 || n > device.MaxUsers {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidUserLimit, n, device.MaxUsers)
	}
	s.boundary.SetUserLimit(n)
	s.userLimit.Store(int32(n))
	return nil
}

// UserLimit returns the current user limit.
func (s *Session) UserLimit() int { return int(s.userLimit.Load()) }

// ApplyConfig applies the runtime parts of cfg: enabled and raw channels,
// user limit and point-cloud thresholds. The frame interval and heartbeat
// limit are construction options.
func (s *Session) ApplyConfig(cfg *config.SessionConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid session config: %w", err)
	}
	for _, ch := range cfg.GetEnabledChannels() {
		if err := s.SetChannelEnabled(ch, true); err != nil {
			return err
		}
	}
	for _, ch := range cfg.GetRawChannels() {
		if err := s.ActivateRaw(ch, true); err != nil {
			return err
		}
	}
	if err := s.SetUserLimit(cfg.GetUserLimit()); err != nil {
		return err
	}
	if err := s.SetThresholdsPC(cfg.GetLowThreshold(), cfg.GetHighThreshold()); err != nil {
		return fmt.Errorf("failed to apply thresholds: %w", err)
	}
	return nil
}

// Options returns the construction options carried by cfg.
func Options(cfg *config.SessionConfig) []Option {
	return []Option{
		WithFrameInterval(cfg.GetFrameInterval()),
		WithHeartbeatMissLimit(cfg.GetHeartbeatMaxMisses()),
	}
}
