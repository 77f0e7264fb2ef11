package session

import (
	"context"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/timeutil"
)

// poll paces frames and probes device liveness until ctx is cancelled.
// It never touches channel buffers. Once it stops nothing probes the
// device, so Alive reports false from then on.
func (s *Session) poll(ctx context.Context, ticker timeutil.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	hb, _ := s.boundary.(device.Heartbeater)
	for {
		select {
		case <-ctx.Done():
			s.alive.Store(false)
			s.metrics.SetAlive(false)
			return
		case <-ticker.C():
			if hb != nil {
				s.heartbeat(hb.Update())
			}
		}
	}
}

// heartbeat records one liveness probe. The lost and restored transitions
// are logged once each.
func (s *Session) heartbeat(ok bool) {
	if ok {
		if s.misses >= s.missLimit {
			s.logf("device heartbeat restored after %d missed probes", s.misses)
		}
		s.misses = 0
		s.alive.Store(true)
	} else {
		s.misses++
		if s.misses == s.missLimit {
			s.logf("device heartbeat lost: %d consecutive probes failed", s.misses)
			s.alive.Store(false)
		}
	}
	s.metrics.RecordHeartbeat(ok, s.alive.Load())
}
