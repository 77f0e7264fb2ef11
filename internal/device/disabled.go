package device

import "sync"

// Disabled is a no-op Boundary used when the sensor is absent (for
// --disable-device). Init always succeeds and every fetch returns no data,
// so sessions built on it keep their initial buffers forever. Enable and
// SetUserLimit are ignored; thresholds are kept so the status page still
// shows what the session applied.
type Disabled struct {
	mu         sync.Mutex
	thresholds [2]int32
	open       bool
}

// NewDisabled returns a Disabled boundary.
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) Init() bool {
	d.mu.Lock()
	d.open = true
	d.mu.Unlock()
	return true
}

func (d *Disabled) Shutdown() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

func (d *Disabled) Enable(Channel, bool) {}
func (d *Disabled) SetUserLimit(int)     {}

func (d *Disabled) FetchPixels(Channel) []uint32 { return nil }
func (d *Disabled) FetchUserPixels(int) []uint32 { return nil }
func (d *Disabled) FetchSamples(Channel) []float32 { return nil }
func (d *Disabled) FetchFaceInfrared() []float32 { return nil }
func (d *Disabled) MapPoint(Space, float32, float32, float32) (float32, float32) {
	return 0, 0
}

func (d *Disabled) SetDepthThreshold(which Threshold, mm int32) {
	d.mu.Lock()
	d.thresholds[which&1] = mm
	d.mu.Unlock()
}

func (d *Disabled) DepthThreshold(which Threshold) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thresholds[which&1]
}

// Update reports whether Init has been called without a matching Shutdown.
func (d *Disabled) Update() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Disabled) Version() string { return "disabled" }
