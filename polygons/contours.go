package polygons

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

// ContourTracer traces polygon boundaries with OpenCV: external contours of
// the 255-valued foreground, simplified with Douglas-Peucker.
type ContourTracer struct {
	// MinArea discards contours whose enclosed area is below this many
	// pixels. Zero keeps everything.
	MinArea float64
	// Epsilon is the Douglas-Peucker tolerance as a fraction of each
	// contour's arc length. Zero disables simplification.
	Epsilon float64
}

// NewContourTracer returns a tracer with the default denoise/simplify
// settings used by the export pipeline.
func NewContourTracer() *ContourTracer {
	return &ContourTracer{
		MinArea: 4,
		Epsilon: 0.002,
	}
}

// Trace extracts the foreground boundaries of a binary mask.
//
// Arguments:
//   - mask: Single-channel 0/255 mask.
//   - size: The image dimensions the polygons are expressed in; must match
//     the mask dimensions.
//
// Returns:
//   - []Polygon: Closed boundaries, nil when the mask has no foreground.
//   - error: An error if the mask cannot be converted for tracing.
func (t *ContourTracer) Trace(mask segmentation.BinaryMask, size image.Point) ([]Polygon, error) {
	if mask.Width != size.X || mask.Height != size.Y {
		return nil, fmt.Errorf("mask is %dx%d but image size is %dx%d",
			mask.Width, mask.Height, size.X, size.Y)
	}

	mat, err := mask.ToMat()
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out []Polygon
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if t.MinArea > 0 && gocv.ContourArea(contour) < t.MinArea {
			continue
		}

		points := contour
		if t.Epsilon > 0 {
			eps := t.Epsilon * gocv.ArcLength(contour, true)
			approx := gocv.ApproxPolyDP(contour, eps, true)
			defer approx.Close()
			points = approx
		}
		if points.Size() < 3 {
			continue
		}

		polygon := make(Polygon, 0, points.Size())
		for j := 0; j < points.Size(); j++ {
			pt := points.At(j)
			polygon = append(polygon, Point{X: float32(pt.X), Y: float32(pt.Y)})
		}
		out = append(out, polygon)
	}
	return out, nil
}
