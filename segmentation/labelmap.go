// Package segmentation - Per-pixel class label maps and the model port that
// produces them.
package segmentation

import (
	"fmt"

	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// LabelMap is a 2D array of class ids, one per pixel, as produced by the
// segmentation model after any resize-back transform. Immutable once built.
type LabelMap struct {
	// Width and Height are the map dimensions in pixels.
	Width  int
	Height int
	// Pixels holds one class id per pixel in row-major order.
	Pixels []uint8
}

// NewLabelMap allocates an all-zero label map.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height),
	}
}

// At returns the class id at (x, y). No bounds checking beyond the slice's own.
func (m *LabelMap) At(x, y int) int {
	return int(m.Pixels[y*m.Width+x])
}

// BinaryMask is a single-channel {0,255} mask derived from a LabelMap by an
// equality test against one category id. It lives only for one category of
// one image.
type BinaryMask struct {
	Width  int
	Height int
	// Pixels is 255 where the label equals the selected category, 0 elsewhere.
	Pixels []uint8
}

// Mask builds the binary mask for a single category id: a pixel is selected
// iff its label equals categoryID, selected pixels become 255, all others 0.
//
// Arguments:
//   - categoryID: The class id to binarize against.
//
// Returns:
//   - BinaryMask: The single-channel 0/255 mask, same dimensions as the map.
func (m *LabelMap) Mask(categoryID int) BinaryMask {
	out := BinaryMask{
		Width:  m.Width,
		Height: m.Height,
		Pixels: make([]uint8, len(m.Pixels)),
	}
	id := uint8(categoryID)
	for i, p := range m.Pixels {
		if p == id {
			out.Pixels[i] = 255
		}
	}
	return out
}

// Decompose walks category ids [0, count) in ascending order and hands each
// binary mask to visit. Every id in the range is visited unconditionally,
// whether or not it appears in the map, so downstream output is identical
// for maps with and without a given class.
//
// Arguments:
//   - count: The exclusive upper bound of the category id range.
//   - visit: Called once per id, in ascending id order. A non-nil error stops
//     the walk and is returned as-is.
//
// Returns:
//   - error: The first error returned by visit, if any.
func (m *LabelMap) Decompose(count int, visit func(categoryID int, mask BinaryMask) error) error {
	for id := 0; id < count; id++ {
		if err := visit(id, m.Mask(id)); err != nil {
			return err
		}
	}
	return nil
}

// ToMat copies the mask into a single-channel 8-bit Mat for OpenCV contour
// tracing. The caller owns the Mat and must Close it.
func (b BinaryMask) ToMat() (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8U, b.Pixels)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to build mask mat: %w", err)
	}
	return mat, nil
}

// LabelMapFromLogits reduces a [C,H,W] float32 logit volume to a label map by
// per-pixel argmax over the class axis.
//
// Arguments:
//   - logits: Dense float32 tensor with shape [classes, height, width].
//
// Returns:
//   - *LabelMap: The argmax label map, height x width.
//   - error: Shape or dtype mismatch.
func LabelMapFromLogits(logits *tensor.Dense) (*LabelMap, error) {
	shape := logits.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("expected [C,H,W] logits, got shape %v", shape)
	}
	data, ok := logits.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 logits, got %T", logits.Data())
	}

	classes, height, width := shape[0], shape[1], shape[2]
	if classes > 256 {
		return nil, fmt.Errorf("class axis %d exceeds uint8 label range", classes)
	}
	plane := height * width
	out := NewLabelMap(width, height)
	for p := 0; p < plane; p++ {
		best := 0
		bestScore := data[p]
		for c := 1; c < classes; c++ {
			if score := data[c*plane+p]; score > bestScore {
				bestScore = score
				best = c
			}
		}
		out.Pixels[p] = uint8(best)
	}
	return out, nil
}

// ResizeNearest scales the label map to the given dimensions with
// nearest-neighbor sampling. Class ids must never be interpolated, so this is
// the only valid resampling for label maps.
func (m *LabelMap) ResizeNearest(width, height int) *LabelMap {
	if width == m.Width && height == m.Height {
		return m
	}
	out := NewLabelMap(width, height)
	for y := 0; y < height; y++ {
		srcY := y * m.Height / height
		for x := 0; x < width; x++ {
			srcX := x * m.Width / width
			out.Pixels[y*width+x] = m.Pixels[srcY*m.Width+srcX]
		}
	}
	return out
}
