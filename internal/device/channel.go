package device

import (
	"fmt"
	"strings"
)

// Fixed sensor resolutions. These are part of the consumer contract and
// must match the driver exactly.
const (
	ColorWidth  = 1920
	ColorHeight = 1080
	DepthWidth  = 512
	DepthHeight = 424

	// MaxUsers is the number of body slots the sensor tracks.
	MaxUsers = 6
)

// Channel identifies one independently enable-able data stream.
type Channel int

const (
	Color Channel = iota
	Depth
	Infrared
	LongExposureInfrared
	BodyIndex
	DepthMask
	SkeletonDepth
	SkeletonColor
	Skeleton3D
	Face
	HDFace
	PointCloud
	PointCloudColor
	ColorChannelTriple
	PointCloudDepthImage

	channelCount
)

var channelNames = [channelCount]string{
	Color:                "color",
	Depth:                "depth",
	Infrared:             "infrared",
	LongExposureInfrared: "long_exposure_infrared",
	BodyIndex:            "body_index",
	DepthMask:            "depth_mask",
	SkeletonDepth:        "skeleton_depth",
	SkeletonColor:        "skeleton_color",
	Skeleton3D:           "skeleton_3d",
	Face:                 "face",
	HDFace:               "hd_face",
	PointCloud:           "point_cloud",
	PointCloudColor:      "point_cloud_color",
	ColorChannelTriple:   "color_channel_triple",
	PointCloudDepthImage: "point_cloud_depth_image",
}

// Channels returns every known channel in declaration order.
func Channels() []Channel {
	out := make([]Channel, 0, channelCount)
	for c := Channel(0); c < channelCount; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c names a known channel.
func (c Channel) Valid() bool { return c >= 0 && c < channelCount }

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel is the inverse of Channel.String. Matching ignores case and
// accepts '-' in place of '_'.
func ParseChannel(s string) (Channel, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, n := range channelNames {
		if n == name {
			return Channel(c), nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Space is a 2D image space that camera-space points can be mapped into.
type Space int

const (
	DepthSpace Space = iota
	ColorSpace
)

func (s Space) String() string {
	switch s {
	case DepthSpace:
		return "depth"
	case ColorSpace:
		return "color"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

// Threshold selects the near or far point-cloud depth cutoff.
type Threshold int

const (
	LowThreshold Threshold = iota
	HighThreshold
)

func (t Threshold) String() string {
	if t == HighThreshold {
		return "high"
	}
	return "low"
}
