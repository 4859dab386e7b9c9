package mesh

import "errors"

var (
	ErrNoFaces    = errors.New("mesh has no faces")
	ErrWedgeCount = errors.New("wedge count is not three times the face count")
	ErrPointIndex = errors.New("wedge point index out of range")
	ErrUVChannels = errors.New("invalid number of UV channels")
)
