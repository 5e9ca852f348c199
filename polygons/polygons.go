// Package polygons - Vector polygon boundaries traced from binary category
// masks.
package polygons

import (
	"image"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

// Point is one polygon vertex in pixel coordinates.
type Point struct {
	X float32
	Y float32
}

// Polygon is an ordered, implicitly closed vertex sequence describing one
// connected region boundary (the last point connects back to the first).
type Polygon []Point

// Flatten returns the vertices as an alternating x,y coordinate list, the
// layout COCO segmentation records use. Values keep the tracer's float32
// representation; the annotation assembler normalizes them for encoding.
func (p Polygon) Flatten() []float32 {
	out := make([]float32, 0, len(p)*2)
	for _, pt := range p {
		out = append(out, pt.X, pt.Y)
	}
	return out
}

// Tracer is the contour-tracing port: it turns a binary mask into the closed
// polygon boundaries of its foreground regions. A nil slice means the mask
// yielded no polygons; an error means the mask could not be traced at all.
type Tracer interface {
	Trace(mask segmentation.BinaryMask, size image.Point) ([]Polygon, error)
}
