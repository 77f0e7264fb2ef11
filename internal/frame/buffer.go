// Package frame provides the fixed-resolution channel buffer that backs
// every image and sample stream produced by a session.
//
// A Buffer owns one pixel slice allocated at construction and, once raw
// retention has been enabled, a second slice of the same length holding
// the unprocessed samples. Both are reused in place; a view returned by
// Pixels or Raw is only valid until the next Load on the same buffer.
package frame

import "fmt"

// Sample is the element type of a channel buffer: packed pixels for image
// channels, floats for position and color-plane channels.
type Sample interface {
	~uint32 | ~float32
}

// Format describes how the samples of a buffer are laid out.
type Format int

const (
	// ARGB is one packed 0xAARRGGBB value per pixel.
	ARGB Format = iota
	// Gray is one packed value per pixel with intensity in the low byte.
	Gray
	// RGB is one packed 0x??RRGGBB value per pixel, alpha ignored.
	RGB
	// XYZ is three floats per pixel: camera-space position in metres.
	XYZ
	// RGBPlanes is three floats per pixel in [0,1].
	RGBPlanes
)

// Channels returns how many samples make up one pixel.
func (f Format) Channels() int {
	switch f {
	case XYZ, RGBPlanes:
		return 3
	default:
		return 1
	}
}

func (f Format) String() string {
	switch f {
	case ARGB:
		return "argb"
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	case XYZ:
		return "xyz"
	case RGBPlanes:
		return "rgb_planes"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Buffer is a fixed-size channel buffer. It is not safe for concurrent
// use; the session confines every buffer to the caller's goroutine.
type Buffer[T Sample] struct {
	width, height int
	format        Format

	pix    []T
	raw    []T
	retain bool

	seq uint64
}

// NewBuffer allocates a buffer for width×height pixels in format f.
func NewBuffer[T Sample](width, height int, f Format) *Buffer[T] {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("frame: invalid buffer size %dx%d", width, height))
	}
	return &Buffer[T]{
		width:  width,
		height: height,
		format: f,
		pix:    make([]T, width*height*f.Channels()),
	}
}

func (b *Buffer[T]) Width() int     { return b.width }
func (b *Buffer[T]) Height() int    { return b.height }
func (b *Buffer[T]) Format() Format { return b.format }

// Len is the number of samples a full frame carries.
func (b *Buffer[T]) Len() int { return len(b.pix) }

// Pixels returns the processed samples of the latest accepted frame.
func (b *Buffer[T]) Pixels() []T { return b.pix }

// Raw returns the retained unprocessed samples. It is nil until raw
// retention has been enabled at least once, and keeps the last retained
// frame after retention is turned off.
func (b *Buffer[T]) Raw() []T { return b.raw }

// RawRetention reports whether the next Load also fills Raw.
func (b *Buffer[T]) RawRetention() bool { return b.retain }

// SetRawRetention turns raw retention on or off from the next Load on.
// Turning it off does not clear previously retained samples.
func (b *Buffer[T]) SetRawRetention(on bool) {
	if on && b.raw == nil {
		b.raw = make([]T, len(b.pix))
	}
	b.retain = on
}

// Seq counts accepted frames.
func (b *Buffer[T]) Seq() uint64 { return b.seq }

// Load accepts src as the next frame when it has exactly Len samples. The
// processed and raw copies are taken from the same src in one call. Any
// other length leaves the buffer untouched and returns false.
func (b *Buffer[T]) Load(src []T) bool {
	if len(src) != len(b.pix) {
		return false
	}
	b.commit(src)
	return true
}

// LoadPrefix accepts the first Len samples of src. Sources shorter than
// Len leave the buffer untouched and return false; the copy never reads
// past src or overwrites only part of the buffer.
func (b *Buffer[T]) LoadPrefix(src []T) bool {
	if len(src) < len(b.pix) {
		return false
	}
	b.commit(src[:len(b.pix)])
	return true
}

func (b *Buffer[T]) commit(src []T) {
	copy(b.pix, src)
	if b.retain {
		copy(b.raw, src)
	}
	b.seq++
}
