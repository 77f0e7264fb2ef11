// Package session owns a depth sensor's frame buffers and device handle.
//
// A Session allocates every channel buffer and body slot array up front,
// opens the device boundary, and runs a background loop that only paces
// frames and probes liveness. Channel data is pulled synchronously by the
// caller's get operations, so an image and its raw samples are always
// copied from the same fetched array in the same call.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/depthsense/internal/body"
	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/frame"
	"github.com/banshee-data/depthsense/internal/metrics"
	"github.com/banshee-data/depthsense/internal/monitoring"
	"github.com/banshee-data/depthsense/internal/pointcloud"
	"github.com/banshee-data/depthsense/internal/timeutil"
)

var (
	// ErrInitFailed is wrapped in a DeviceError when the boundary's Init
	// reports failure.
	ErrInitFailed = errors.New("device init failed")
	// ErrSessionClosed is returned by Open after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrAlreadyOpen is returned by Open on a ready session.
	ErrAlreadyOpen = errors.New("session already open")
	// ErrInvalidUserLimit is returned by SetUserLimit outside 1..MaxUsers.
	ErrInvalidUserLimit = errors.New("invalid user limit")
	// ErrUnknownChannel is returned for channel identifiers out of range.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrNoRawBuffer is returned by ActivateRaw for channels that do not
	// retain raw samples.
	ErrNoRawBuffer = errors.New("channel has no raw buffer")
)

// DeviceError reports a failed device boundary operation.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("device %s: %v", e.Op, e.Err) }
func (e *DeviceError) Unwrap() error { return e.Err }

const (
	// DefaultFrameInterval paces the poll loop at 60 frames per second.
	DefaultFrameInterval = time.Second / 60
	// DefaultHeartbeatMissLimit is the number of consecutive failed
	// liveness probes after which the device is reported lost.
	DefaultHeartbeatMissLimit = 30
)

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used by the poll loop.
func WithClock(c timeutil.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithFrameInterval sets the poll loop period. Non-positive values are
// ignored.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMetrics records frame and heartbeat counters into m.
func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithHeartbeatMissLimit sets how many consecutive failed probes mark the
// device as lost.
func WithHeartbeatMissLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.missLimit = n
		}
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// bodyIndexUsersKey labels the per-user body-index fetches, which are
// counted apart from the aggregate body_index channel.
const bodyIndexUsersKey = "body_index_users"

// channelStats counts per-channel fetch outcomes. The admin routes read
// them concurrently with the caller's get operations.
type channelStats struct {
	loaded     atomic.Uint64
	skipped    atomic.Uint64
	lastLoaded atomic.Int64 // unix nanoseconds, 0 before the first load
}

func (cs *channelStats) status(enabled bool) ChannelStatus {
	st := ChannelStatus{
		Enabled: enabled,
		Loaded:  cs.loaded.Load(),
		Skipped: cs.skipped.Load(),
	}
	if ns := cs.lastLoaded.Load(); ns != 0 {
		t := time.Unix(0, ns).UTC()
		st.LastLoaded = &t
	}
	return st
}

// Session is a depth sensor session. Get, enable and map operations
// belong to a single caller goroutine; Ready, Alive, Status and Close are
// safe from any goroutine.
type Session struct {
	id        string
	boundary  device.Boundary
	clock     timeutil.Clock
	interval  time.Duration
	missLimit int
	metrics   *metrics.SessionMetrics
	logf      func(format string, v ...interface{})

	// Image channels.
	color        *frame.Buffer[uint32]
	depth        *frame.Buffer[uint32]
	infrared     *frame.Buffer[uint32]
	longExposure *frame.Buffer[uint32]
	bodyTrack    *frame.Buffer[uint32]
	depthMask    *frame.Buffer[uint32]
	pcDepthImage *frame.Buffer[uint32]
	users        [device.MaxUsers]*frame.Buffer[uint32]

	// Body slot arrays, rebuilt in place.
	skeleton3D    body.Skeletons
	skeletonDepth body.Skeletons
	skeletonColor body.Skeletons
	faces         body.Faces
	hdFaces       body.HDFaces

	pc *pointcloud.State

	enabledMu sync.Mutex
	enabled   map[device.Channel]bool
	userLimit atomic.Int32

	stats     map[device.Channel]*channelStats
	userStats channelStats

	mu     sync.Mutex // guards the lifecycle fields below
	closed bool
	initOK bool
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ready atomic.Bool
	alive atomic.Bool
	// misses is owned by the poll goroutine.
	misses int
}

// New returns a Session for b with every buffer allocated. The device is
// not touched until Open.
func New(b device.Boundary, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New().String(),
		boundary:  b,
		clock:     timeutil.RealClock{},
		interval:  DefaultFrameInterval,
		missLimit: DefaultHeartbeatMissLimit,

		color:        frame.NewBuffer[uint32](device.ColorWidth, device.ColorHeight, frame.ARGB),
		depth:        frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.Gray),
		infrared:     frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.Gray),
		longExposure: frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.Gray),
		bodyTrack:    frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.RGB),
		depthMask:    frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.RGB),
		pcDepthImage: frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.Gray),
		pc:           pointcloud.NewState(device.DepthWidth, device.DepthHeight, device.ColorWidth, device.ColorHeight),

		enabled: make(map[device.Channel]bool),
		stats:   make(map[device.Channel]*channelStats),
	}
	for i := range s.users {
		s.users[i] = frame.NewBuffer[uint32](device.DepthWidth, device.DepthHeight, frame.RGB)
	}
	for _, ch := range device.Channels() {
		s.stats[ch] = &channelStats{}
	}
	s.userLimit.Store(device.MaxUsers)

	for _, opt := range opts {
		opt(s)
	}
	s.logf = monitoring.Component("Session " + shortID(s.id))
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Open initializes the device boundary, pushes the session's point-cloud
// thresholds to it and starts the poll loop. The loop stops when ctx is
// cancelled or Close is called.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.ready.Load() {
		return ErrAlreadyOpen
	}
	if !device.RuntimeInitialized() {
		return device.ErrRuntimeNotInitialized
	}
	if !s.boundary.Init() {
		s.logf("device init failed")
		return &DeviceError{Op: "init", Err: ErrInitFailed}
	}
	s.initOK = true
	s.boundary.SetDepthThreshold(device.LowThreshold, int32(s.pc.LowThreshold()))
	s.boundary.SetDepthThreshold(device.HighThreshold, int32(s.pc.HighThreshold()))

	if v, ok := s.boundary.(device.Versioner); ok {
		s.logf("opened device (driver %s)", v.Version())
	} else {
		s.logf("opened device")
	}

	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.misses = 0
	s.alive.Store(true)
	s.ready.Store(true)
	s.metrics.SetReady(true)
	s.metrics.SetAlive(true)

	// Create the ticker before the goroutine starts so that no tick is
	// lost between Open returning and the loop reaching its select.
	ticker := s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	go s.poll(pollCtx, ticker)
	return nil
}

// Close stops the poll loop and releases the device. It is safe to call
// more than once, before Open, and after a failed Open. A closed session
// cannot be reopened.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.ready.Store(false)
	cancel := s.cancel
	s.cancel = nil
	initOK := s.initOK
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	if initOK {
		s.boundary.Shutdown()
		s.logf("closed device")
	}
	s.alive.Store(false)
	s.metrics.SetReady(false)
	s.metrics.SetAlive(false)
	return nil
}

// Ready reports whether Open succeeded and Close has not been called.
func (s *Session) Ready() bool { return s.ready.Load() }

// Alive reports whether the device answered its recent liveness probes.
// It is false before Open and after Close.
func (s *Session) Alive() bool { return s.ready.Load() && s.alive.Load() }
