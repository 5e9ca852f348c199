package polygons

import (
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

// stubTracer returns canned results.
type stubTracer struct {
	polys []Polygon
	err   error
}

func (s stubTracer) Trace(segmentation.BinaryMask, image.Point) ([]Polygon, error) {
	return s.polys, s.err
}

func TestExtractorAbsentResultMeansZeroPolygons(t *testing.T) {
	e := Extractor{Tracer: stubTracer{polys: nil}}
	polys, err := e.Extract(segmentation.BinaryMask{Width: 2, Height: 2, Pixels: make([]uint8, 4)}, image.Pt(2, 2), 3)
	require.NoError(t, err)
	assert.Empty(t, polys)
}

func TestExtractorPassesPolygonsThrough(t *testing.T) {
	want := []Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}
	e := Extractor{Tracer: stubTracer{polys: want}}
	polys, err := e.Extract(segmentation.BinaryMask{Width: 2, Height: 2, Pixels: make([]uint8, 4)}, image.Pt(2, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, want, polys)
}

func TestExtractorWrapsTracerFailureWithCategory(t *testing.T) {
	e := Extractor{Tracer: stubTracer{err: fmt.Errorf("tracer exploded")}}
	_, err := e.Extract(segmentation.BinaryMask{Width: 2, Height: 2, Pixels: make([]uint8, 4)}, image.Pt(2, 2), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category 7")
	assert.Contains(t, err.Error(), "tracer exploded")
}
