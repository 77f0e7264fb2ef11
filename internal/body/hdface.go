package body

import "github.com/golang/geo/r2"

// HDFaceVertexCount is the vertex count of the high definition face mesh.
const HDFaceVertexCount = 1347

// HDFaceStride is the per-slot wire width: (x, y) per vertex plus a
// tracked flag.
const HDFaceStride = HDFaceVertexCount*2 + 1

// HDFace is one body slot's HD face mesh, projected into color space.
type HDFace struct {
	Tracked  bool
	Vertices [HDFaceVertexCount]r2.Point
}

func (h *HDFace) decode(rec []float32) {
	for i := range h.Vertices {
		h.Vertices[i] = r2.Point{X: float64(rec[i*2]), Y: float64(rec[i*2+1])}
	}
	h.Tracked = rec[HDFaceStride-1] == 1
}

// HDFaces is the fixed slot array for HD face meshes.
type HDFaces [SlotCount]HDFace

// Decode rebuilds every slot from a flat array of SlotCount*HDFaceStride
// floats. Any other length leaves all slots unchanged and returns false.
func (h *HDFaces) Decode(raw []float32) bool {
	if len(raw) != SlotCount*HDFaceStride {
		return false
	}
	for i := range h {
		h[i].decode(raw[i*HDFaceStride : (i+1)*HDFaceStride])
	}
	return true
}
