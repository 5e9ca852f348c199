package polygons

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

func TestFlatten(t *testing.T) {
	p := Polygon{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, p.Flatten())
	assert.Empty(t, Polygon{}.Flatten())
}

// rectMask builds a w x h mask with a filled rectangle of foreground.
func rectMask(w, h int, r image.Rectangle) segmentation.BinaryMask {
	mask := segmentation.BinaryMask{Width: w, Height: h, Pixels: make([]uint8, w*h)}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.Pixels[y*w+x] = 255
		}
	}
	return mask
}

func TestContourTracerFindsRectangle(t *testing.T) {
	tracer := NewContourTracer()
	mask := rectMask(16, 16, image.Rect(4, 4, 12, 12))

	polys, err := tracer.Trace(mask, image.Pt(16, 16))
	require.NoError(t, err)
	require.Len(t, polys, 1, "one connected region, one polygon")

	poly := polys[0]
	assert.GreaterOrEqual(t, len(poly), 3)
	for _, pt := range poly {
		assert.GreaterOrEqual(t, pt.X, float32(4))
		assert.LessOrEqual(t, pt.X, float32(11))
		assert.GreaterOrEqual(t, pt.Y, float32(4))
		assert.LessOrEqual(t, pt.Y, float32(11))
	}
}

func TestContourTracerSeparateRegions(t *testing.T) {
	tracer := NewContourTracer()
	mask := rectMask(20, 10, image.Rect(1, 1, 6, 6))
	for y := 1; y < 6; y++ {
		for x := 12; x < 18; x++ {
			mask.Pixels[y*20+x] = 255
		}
	}

	polys, err := tracer.Trace(mask, image.Pt(20, 10))
	require.NoError(t, err)
	assert.Len(t, polys, 2)
}

func TestContourTracerEmptyMask(t *testing.T) {
	tracer := NewContourTracer()
	mask := rectMask(8, 8, image.Rectangle{})

	polys, err := tracer.Trace(mask, image.Pt(8, 8))
	require.NoError(t, err)
	assert.Empty(t, polys, "all-background mask must trace to zero polygons")
}

func TestContourTracerMinAreaFilter(t *testing.T) {
	tracer := &ContourTracer{MinArea: 50}
	mask := rectMask(16, 16, image.Rect(4, 4, 8, 8))

	polys, err := tracer.Trace(mask, image.Pt(16, 16))
	require.NoError(t, err)
	assert.Empty(t, polys, "a 4x4 region is below the 50px area threshold")
}

func TestContourTracerSizeMismatch(t *testing.T) {
	tracer := NewContourTracer()
	mask := rectMask(8, 8, image.Rect(0, 0, 4, 4))

	_, err := tracer.Trace(mask, image.Pt(16, 16))
	assert.Error(t, err)
}
