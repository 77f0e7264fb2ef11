// Package device defines the boundary between the acquisition layer and
// the sensor driver, plus boundaries that run without hardware.
package device

// Boundary is the minimal interface the acquisition layer needs from a
// sensor driver. Every call is synchronous and may block on hardware I/O.
//
// Fetch calls return nil or a short slice when no new data is available;
// callers treat that as "not ready yet", never as a fatal error. Returned
// slices are only read until the next fetch on the same channel.
type Boundary interface {
	// Init opens the device. False means the sensor could not be started.
	Init() bool
	// Shutdown releases the device handle.
	Shutdown()

	// Enable turns production of a channel on or off.
	Enable(ch Channel, on bool)
	// SetUserLimit bounds how many body slots are populated (1..MaxUsers).
	SetUserLimit(n int)

	// FetchPixels returns packed pixel values for an image channel.
	FetchPixels(ch Channel) []uint32
	// FetchUserPixels returns the segmentation mask for one body slot.
	FetchUserPixels(slot int) []uint32
	// FetchSamples returns float samples for skeleton, face, HD face and
	// point-cloud channels. For Face it returns the color-space array.
	FetchSamples(ch Channel) []float32
	// FetchFaceInfrared returns the infrared-space face array matching the
	// most recent FetchSamples(Face).
	FetchFaceInfrared() []float32

	// MapPoint projects a camera-space point (metres) into an image space.
	MapPoint(space Space, x, y, z float32) (u, v float32)

	// SetDepthThreshold sets a point-cloud depth cutoff in millimetres.
	SetDepthThreshold(which Threshold, mm int32)
	// DepthThreshold reads back a point-cloud depth cutoff in millimetres.
	DepthThreshold(which Threshold) int32
}

// Heartbeater is implemented by boundaries that can report liveness. The
// session's poll loop calls Update once per frame interval.
type Heartbeater interface {
	Update() bool
}

// Versioner is implemented by boundaries that know their driver version.
type Versioner interface {
	Version() string
}
