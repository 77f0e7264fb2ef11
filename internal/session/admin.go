package session

import (
	"encoding/json"
	"net/http"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/units"
)

// ChannelStatus is the per-channel part of Status.
type ChannelStatus struct {
	Enabled    bool       `json:"enabled"`
	Loaded     uint64     `json:"loaded"`
	Skipped    uint64     `json:"skipped"`
	LastLoaded *time.Time `json:"last_loaded,omitempty"`
}

// Status is a point-in-time view of the session for diagnostics.
type Status struct {
	ID            string                   `json:"id"`
	Ready         bool                     `json:"ready"`
	Alive         bool                     `json:"alive"`
	FrameInterval string                   `json:"frame_interval"`
	UserLimit     int                      `json:"user_limit"`
	LowThreshold  units.Millimetres        `json:"low_threshold_mm"`
	HighThreshold units.Millimetres        `json:"high_threshold_mm"`
	Channels      map[string]ChannelStatus `json:"channels"`

	// Thresholds the boundary reports it is applying.
	DeviceLowThreshold  units.Millimetres `json:"device_low_threshold_mm"`
	DeviceHighThreshold units.Millimetres `json:"device_high_threshold_mm"`
}

// Status returns the session's diagnostic counters. It is safe to call
// from any goroutine.
func (s *Session) Status() Status {
	st := Status{
		ID:            s.id,
		Ready:         s.Ready(),
		Alive:         s.Alive(),
		FrameInterval: s.interval.Round(time.Microsecond).String(),
		UserLimit:     s.UserLimit(),
		LowThreshold:  s.pc.LowThreshold(),
		HighThreshold: s.pc.HighThreshold(),
		Channels:      make(map[string]ChannelStatus, len(s.stats)+1),

		DeviceLowThreshold:  units.Millimetres(s.boundary.DepthThreshold(device.LowThreshold)),
		DeviceHighThreshold: units.Millimetres(s.boundary.DepthThreshold(device.HighThreshold)),
	}
	for ch, cs := range s.stats {
		st.Channels[ch.String()] = cs.status(s.Enabled(ch))
	}
	st.Channels[bodyIndexUsersKey] = s.userStats.status(s.Enabled(device.BodyIndex))
	return st
}

// AttachAdminRoutes serves the session status as JSON at
// /debug/depthsense. Debug routes are only reachable from localhost or
// over Tailscale.
func (s *Session) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("depthsense", "depth sensor session status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.Status()); err != nil {
			s.logf("failed to encode status: %v", err)
		}
	})
}
