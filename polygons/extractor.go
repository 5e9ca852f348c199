package polygons

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

// Extractor adapts a Tracer to the pipeline: it normalizes an absent result
// to "zero polygons" and tags tracer failures with the category they
// happened on so the caller can fail the whole image instead of silently
// dropping one category's annotations.
type Extractor struct {
	Tracer Tracer
}

// Extract traces one category's mask.
//
// Arguments:
//   - mask: The category's binary mask.
//   - size: The image dimensions the polygons are expressed in.
//   - categoryID: The category being traced, used only for error context.
//
// Returns:
//   - []Polygon: Possibly empty, never nil-with-meaning; side-effect free.
//   - error: The tracer's failure, wrapped with the category id.
func (e Extractor) Extract(mask segmentation.BinaryMask, size image.Point, categoryID int) ([]Polygon, error) {
	polys, err := e.Tracer.Trace(mask, size)
	if err != nil {
		return nil, errors.Wrapf(err, "tracing polygons for category %d", categoryID)
	}
	return polys, nil
}
