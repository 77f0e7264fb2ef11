// Package units provides the distance units used for depth thresholds.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Millimetres is a depth distance as exchanged with the sensor driver.
type Millimetres int32

// MaxSensorDepth is the farthest distance the depth camera resolves.
const MaxSensorDepth Millimetres = 4500

// Metres converts m to metres.
func (m Millimetres) Metres() float64 {
	return float64(m) / 1000
}

// FromMetres converts a distance in metres to the nearest millimetre.
func FromMetres(metres float64) Millimetres {
	if metres < 0 {
		return Millimetres(metres*1000 - 0.5)
	}
	return Millimetres(metres*1000 + 0.5)
}

func (m Millimetres) String() string {
	return strconv.Itoa(int(m)) + "mm"
}

// ParseDepth parses "1900", "1900mm" or "1.9m".
func ParseDepth(s string) (Millimetres, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasSuffix(v, "mm"):
		n, err := strconv.ParseInt(strings.TrimSpace(strings.TrimSuffix(v, "mm")), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid depth %q: %w", s, err)
		}
		return Millimetres(n), nil
	case strings.HasSuffix(v, "m"):
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "m")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid depth %q: %w", s, err)
		}
		if math.IsNaN(f) || math.Abs(f*1000) > math.MaxInt32 {
			return 0, fmt.Errorf("invalid depth %q: out of range", s)
		}
		return FromMetres(f), nil
	default:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid depth %q: %w", s, err)
		}
		return Millimetres(n), nil
	}
}
