// Package body holds the fixed-capacity per-body records (skeletons, faces
// and HD face meshes) and decodes them from the flat float arrays the
// sensor driver produces.
//
// Records live in [SlotCount] arrays that are rebuilt in place every call;
// nothing is allocated per frame. A slot index is assigned by the driver
// and is not a stable identity for a person across frames: use
// Skeleton.TrackingID to follow someone.
package body
