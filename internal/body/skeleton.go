package body

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// SlotCount is the fixed number of body slots the sensor reports.
const SlotCount = 6

// JointCount is the number of joints in one skeleton.
const JointCount = 25

// Skeleton wire layout: JointCount joint records followed by one trailer
// record, each jointFields floats wide.
const (
	jointFields    = 9
	SkeletonStride = (JointCount + 1) * jointFields

	trailerOffset      = JointCount * jointFields
	trailerLeftHand    = 0
	trailerRightHand   = 1
	trailerTrackingID  = 2
	trailerTrackedFlag = jointFields - 1
)

// JointType names a joint by its position in the skeleton.
type JointType int

const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight
)

var jointNames = [JointCount]string{
	"spine_base", "spine_mid", "neck", "head",
	"shoulder_left", "elbow_left", "wrist_left", "hand_left",
	"shoulder_right", "elbow_right", "wrist_right", "hand_right",
	"hip_left", "knee_left", "ankle_left", "foot_left",
	"hip_right", "knee_right", "ankle_right", "foot_right",
	"spine_shoulder", "hand_tip_left", "thumb_left", "hand_tip_right", "thumb_right",
}

func (j JointType) String() string {
	if j < 0 || int(j) >= JointCount {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// TrackingState is the driver's confidence in a joint position.
type TrackingState int

const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

func (s TrackingState) String() string {
	switch s {
	case NotTracked:
		return "not_tracked"
	case Inferred:
		return "inferred"
	case Tracked:
		return "tracked"
	default:
		return fmt.Sprintf("tracking_state(%d)", int(s))
	}
}

// HandState is the detected pose of a hand.
type HandState int

const (
	HandUnknown HandState = iota
	HandNotTracked
	HandOpen
	HandClosed
	HandLasso
)

// Joint is one skeleton joint. Position is in the space of the channel the
// skeleton was fetched from: metres for camera space, pixels (Z unused)
// for the depth and color maps.
type Joint struct {
	Type        JointType
	Position    r3.Vector
	Orientation quat.Number
	State       TrackingState
}

// Skeleton is one body slot's joints for the current frame.
type Skeleton struct {
	TrackingID uint32
	Tracked    bool
	Joints     [JointCount]Joint
	LeftHand   HandState
	RightHand  HandState
}

// Joint returns the joint of the given type. Unknown types return an
// untracked joint.
func (s *Skeleton) Joint(t JointType) Joint {
	if t < 0 || int(t) >= JointCount {
		return Joint{Type: t, State: NotTracked}
	}
	return s.Joints[t]
}

// decode rebuilds s from one slot's wire record. Joint values are copied
// whether or not the slot is tracked.
func (s *Skeleton) decode(rec []float32) {
	for j := 0; j < JointCount; j++ {
		f := rec[j*jointFields : (j+1)*jointFields]
		s.Joints[j] = Joint{
			Type:        JointType(j),
			Position:    r3.Vector{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])},
			Orientation: quat.Number{Imag: float64(f[3]), Jmag: float64(f[4]), Kmag: float64(f[5]), Real: float64(f[6])},
			State:       TrackingState(f[7]),
		}
	}
	t := rec[trailerOffset:]
	s.LeftHand = HandState(t[trailerLeftHand])
	s.RightHand = HandState(t[trailerRightHand])
	s.TrackingID = uint32(t[trailerTrackingID])
	s.Tracked = t[trailerTrackedFlag] == 1
}

// Skeletons is the fixed slot array for one skeleton channel.
type Skeletons [SlotCount]Skeleton

// Decode rebuilds every slot from a flat array of SlotCount*SkeletonStride
// floats. Any other length leaves all slots unchanged and returns false.
func (s *Skeletons) Decode(raw []float32) bool {
	if len(raw) != SlotCount*SkeletonStride {
		return false
	}
	for i := range s {
		s[i].decode(raw[i*SkeletonStride : (i+1)*SkeletonStride])
	}
	return true
}

// TrackedCount returns how many slots hold a tracked body.
func (s *Skeletons) TrackedCount() int {
	n := 0
	for i := range s {
		if s[i].Tracked {
			n++
		}
	}
	return n
}
