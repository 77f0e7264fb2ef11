package main

import (
	"context"
	"log"
	"time"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/session"
)

// frameSummary describes one application frame.
type frameSummary struct {
	Pulled   int // get operations issued
	Tracked  int // tracked skeletons in camera space
	Faces    int // tracked faces
	Points   int // non-zero depth points in the cloud
	Channels []device.Channel
}

// pullFrame issues the get operation of every enabled channel.
func pullFrame(s *session.Session) frameSummary {
	sum := frameSummary{Channels: s.EnabledChannels()}
	for _, ch := range sum.Channels {
		sum.Pulled++
		switch ch {
		case device.Color:
			s.ColorImage()
		case device.Depth:
			s.DepthImage()
		case device.Infrared:
			s.InfraredImage()
		case device.LongExposureInfrared:
			s.LongExposureImage()
		case device.BodyIndex:
			s.BodyTrackImage()
			s.GenerateBodyTrackUsers()
		case device.DepthMask:
			s.DepthMaskImage()
		case device.PointCloudDepthImage:
			s.PointCloudDepthImage()
		case device.SkeletonDepth:
			s.SkeletonDepthMap()
		case device.SkeletonColor:
			s.SkeletonColorMap()
		case device.Skeleton3D:
			sum.Tracked = s.Skeleton3D().TrackedCount()
		case device.Face:
			s.GenerateFaceData()
			for _, f := range s.FaceData() {
				if f.Tracked {
					sum.Faces++
				}
			}
		case device.HDFace:
			s.HDFaceVertices()
		case device.PointCloud:
			s.PointCloudDepthPositions()
			sum.Points = s.PointCloud().DepthBounds().Points
		case device.PointCloudColor:
			s.PointCloudColorPositions()
		case device.ColorChannelTriple:
			s.ColorChannelBuffer()
		default:
			sum.Pulled--
		}
	}
	return sum
}

// runFrameLoop pulls one frame per interval until ctx is done, logging a
// summary every statsEvery.
func runFrameLoop(ctx context.Context, s *session.Session, interval, statsEvery time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var statsC <-chan time.Time
	if statsEvery > 0 {
		stats := time.NewTicker(statsEvery)
		defer stats.Stop()
		statsC = stats.C
	}

	var last frameSummary
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = pullFrame(s)
			frames++
		case <-statsC:
			logStats(s, frames, last)
			frames = 0
		}
	}
}

func logStats(s *session.Session, frames int, last frameSummary) {
	st := s.Status()
	var loaded, skipped uint64
	for _, cs := range st.Channels {
		loaded += cs.Loaded
		skipped += cs.Skipped
	}
	log.Printf("[Stats] frames=%d alive=%v bodies=%d faces=%d points=%d loaded=%d skipped=%d",
		frames, st.Alive, last.Tracked, last.Faces, last.Points, loaded, skipped)
}
