package frame

// SkipReason classifies why a fetched sample array was not copied. Skips
// are the normal "no new frame yet" path and are never surfaced as errors.
type SkipReason int

const (
	// NotSkipped means the array had the expected length.
	NotSkipped SkipReason = iota
	// EmptySample means the driver returned no data.
	EmptySample
	// SizeMismatch means the array length disagrees with the buffer.
	SizeMismatch
)

func (r SkipReason) String() string {
	switch r {
	case EmptySample:
		return "empty"
	case SizeMismatch:
		return "size_mismatch"
	default:
		return "none"
	}
}

// Classify reports why an array of length got would be rejected by a
// buffer expecting want samples.
func Classify(got, want int) SkipReason {
	switch {
	case got == want:
		return NotSkipped
	case got == 0:
		return EmptySample
	default:
		return SizeMismatch
	}
}
