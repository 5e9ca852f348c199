package segmentation

import (
	"context"
	"fmt"
	"image"
)

// SlideOptions configures sliding-window prediction.
type SlideOptions struct {
	// CropSize is the window size (width, height).
	CropSize image.Point
	// Stride is the window step (width, height). Must be positive and no
	// larger than CropSize so every pixel is covered.
	Stride image.Point
}

// SlidePredict segments a large image window by window: each crop is run
// through the model, its logits are resized to the crop's own size and added
// into a full-resolution accumulator together with a per-pixel visit count.
// The count-normalized accumulator is reduced by argmax.
//
// Arguments:
//   - ctx: The context for the prediction.
//   - seg: The logit-level segmenter to drive.
//   - img: The image to segment.
//   - opts: Window geometry.
//
// Returns:
//   - *LabelMap: Per-pixel class ids at source resolution.
//   - error: Geometry or inference error.
func SlidePredict(ctx context.Context, seg LogitsSegmenter, img image.Image, opts SlideOptions) (*LabelMap, error) {
	if opts.CropSize.X <= 0 || opts.CropSize.Y <= 0 {
		return nil, fmt.Errorf("invalid crop size %v", opts.CropSize)
	}
	if opts.Stride.X <= 0 || opts.Stride.Y <= 0 ||
		opts.Stride.X > opts.CropSize.X || opts.Stride.Y > opts.CropSize.Y {
		return nil, fmt.Errorf("invalid stride %v for crop size %v", opts.Stride, opts.CropSize)
	}

	src := toRGBA(img)
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()

	var acc *Logits
	counts := make([]float32, width*height)

	for y0 := 0; y0 == 0 || y0 < height-opts.CropSize.Y+opts.Stride.Y; y0 += opts.Stride.Y {
		for x0 := 0; x0 == 0 || x0 < width-opts.CropSize.X+opts.Stride.X; x0 += opts.Stride.X {
			// Clamp the window so it never leaves the image; the final row and
			// column of windows overlap their predecessors instead.
			x := min(x0, max(0, width-opts.CropSize.X))
			y := min(y0, max(0, height-opts.CropSize.Y))
			w := min(opts.CropSize.X, width)
			h := min(opts.CropSize.Y, height)

			crop := src.SubImage(image.Rect(x, y, x+w, y+h))
			logits, err := seg.Logits(ctx, crop)
			if err != nil {
				return nil, err
			}
			logits = logits.ResizeBilinear(w, h)

			if acc == nil {
				acc = NewLogits(logits.Classes, height, width)
			}
			accData := acc.data()
			cropData := logits.data()
			plane := height * width
			cropPlane := h * w
			for c := 0; c < logits.Classes; c++ {
				for cy := 0; cy < h; cy++ {
					srcRow := c*cropPlane + cy*w
					dstRow := c*plane + (y+cy)*width + x
					for cx := 0; cx < w; cx++ {
						accData[dstRow+cx] += cropData[srcRow+cx]
					}
				}
			}
			for cy := 0; cy < h; cy++ {
				row := (y + cy) * width
				for cx := 0; cx < w; cx++ {
					counts[row+x+cx]++
				}
			}
		}
	}

	// Normalize overlap regions by visit count before the argmax.
	accData := acc.data()
	plane := height * width
	for c := 0; c < acc.Classes; c++ {
		base := c * plane
		for p := 0; p < plane; p++ {
			accData[base+p] /= counts[p]
		}
	}

	return acc.Argmax()
}
