package device

import "sync"

// Testable implements Boundary with configurable behaviour for testing.
// Fetch results are served from per-channel queues: each fetch pops the
// next queued slice, and an empty queue falls back to the sticky value
// set with SetPixels/SetSamples (nil by default, i.e. "no new data").
type Testable struct {
	mu sync.Mutex

	// InitResult is returned by Init.
	InitResult bool
	// Alive is returned by Update.
	Alive bool
	// MapFunc computes MapPoint results. Nil returns (x, y).
	MapFunc func(space Space, x, y, z float32) (float32, float32)

	pixelQueue   map[Channel][][]uint32
	pixelSticky  map[Channel][]uint32
	sampleQueue  map[Channel][][]float32
	sampleSticky map[Channel][]float32
	users        [MaxUsers][]uint32
	faceIRQueue  [][]float32

	enabled    map[Channel]bool
	userLimit  int
	thresholds [2]int32

	initCalls     int
	shutdownCalls int
	updateCalls   int
	fetchCalls    map[Channel]int
}

// NewTestable returns a Testable whose Init and Update succeed.
func NewTestable() *Testable {
	return &Testable{
		InitResult:   true,
		Alive:        true,
		pixelQueue:   make(map[Channel][][]uint32),
		pixelSticky:  make(map[Channel][]uint32),
		sampleQueue:  make(map[Channel][][]float32),
		sampleSticky: make(map[Channel][]float32),
		enabled:      make(map[Channel]bool),
		fetchCalls:   make(map[Channel]int),
	}
}

// QueuePixels appends frames returned by successive FetchPixels(ch).
func (t *Testable) QueuePixels(ch Channel, frames ...[]uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pixelQueue[ch] = append(t.pixelQueue[ch], frames...)
}

// SetPixels sets the value FetchPixels(ch) returns once its queue is empty.
func (t *Testable) SetPixels(ch Channel, data []uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pixelSticky[ch] = data
}

// QueueSamples appends arrays returned by successive FetchSamples(ch).
func (t *Testable) QueueSamples(ch Channel, frames ...[]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sampleQueue[ch] = append(t.sampleQueue[ch], frames...)
}

// SetSamples sets the value FetchSamples(ch) returns once its queue is empty.
func (t *Testable) SetSamples(ch Channel, data []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sampleSticky[ch] = data
}

// QueueFaceInfrared appends arrays returned by successive FetchFaceInfrared.
func (t *Testable) QueueFaceInfrared(frames ...[]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faceIRQueue = append(t.faceIRQueue, frames...)
}

// SetUserPixels sets the segmentation mask returned for a body slot.
func (t *Testable) SetUserPixels(slot int, data []uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[slot] = data
}

func (t *Testable) Init() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.initCalls++
	return t.InitResult
}

func (t *Testable) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdownCalls++
}

func (t *Testable) Update() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updateCalls++
	return t.Alive
}

// SetAlive changes the value returned by Update.
func (t *Testable) SetAlive(alive bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Alive = alive
}

func (t *Testable) Enable(ch Channel, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled[ch] = on
}

func (t *Testable) SetUserLimit(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userLimit = n
}

func (t *Testable) FetchPixels(ch Channel) []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetchCalls[ch]++
	if q := t.pixelQueue[ch]; len(q) > 0 {
		t.pixelQueue[ch] = q[1:]
		return q[0]
	}
	return t.pixelSticky[ch]
}

func (t *Testable) FetchUserPixels(slot int) []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slot < 0 || slot >= MaxUsers {
		return nil
	}
	return t.users[slot]
}

func (t *Testable) FetchSamples(ch Channel) []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetchCalls[ch]++
	if q := t.sampleQueue[ch]; len(q) > 0 {
		t.sampleQueue[ch] = q[1:]
		return q[0]
	}
	return t.sampleSticky[ch]
}

func (t *Testable) FetchFaceInfrared() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.faceIRQueue) > 0 {
		f := t.faceIRQueue[0]
		t.faceIRQueue = t.faceIRQueue[1:]
		return f
	}
	return nil
}

func (t *Testable) MapPoint(space Space, x, y, z float32) (float32, float32) {
	t.mu.Lock()
	fn := t.MapFunc
	t.mu.Unlock()
	if fn == nil {
		return x, y
	}
	return fn(space, x, y, z)
}

func (t *Testable) SetDepthThreshold(which Threshold, mm int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thresholds[which&1] = mm
}

func (t *Testable) DepthThreshold(which Threshold) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thresholds[which&1]
}

// InitCalls returns how many times Init was called.
func (t *Testable) InitCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initCalls
}

// ShutdownCalls returns how many times Shutdown was called.
func (t *Testable) ShutdownCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shutdownCalls
}

// UpdateCalls returns how many times Update was called.
func (t *Testable) UpdateCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateCalls
}

// FetchCalls returns how many fetches were made for ch.
func (t *Testable) FetchCalls(ch Channel) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fetchCalls[ch]
}

// Enabled returns the last enable state requested for ch.
func (t *Testable) Enabled(ch Channel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled[ch]
}

// UserLimit returns the last user limit set.
func (t *Testable) UserLimit() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userLimit
}
