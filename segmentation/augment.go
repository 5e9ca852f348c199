package segmentation

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

// AugmentOptions selects the multi-scale / flip prediction variants. Each
// enabled variant contributes one extra forward pass whose logits are
// accumulated before a single final argmax.
type AugmentOptions struct {
	// Scales lists the image scale factors to predict at. Empty means {1.0}.
	Scales []float32
	// FlipHorizontal adds a horizontally mirrored pass per scale.
	FlipHorizontal bool
	// FlipVertical adds a vertically mirrored pass per scale.
	FlipVertical bool
}

// AugmentedPredict runs multi-scale and flip augmented prediction: for every
// scale the image is resized and segmented, and for every enabled flip the
// mirrored image is segmented and its logits mirrored back. All logit volumes
// are summed at the model's working resolution; the argmax of the sum is
// resized back to source dimensions.
//
// Arguments:
//   - ctx: The context for the prediction.
//   - seg: The logit-level segmenter to drive.
//   - img: The image to segment.
//   - opts: The augmentation variants to run.
//
// Returns:
//   - *LabelMap: Per-pixel class ids at source resolution.
//   - error: The first inference error; no partial result is returned.
func AugmentedPredict(ctx context.Context, seg LogitsSegmenter, img image.Image, opts AugmentOptions) (*LabelMap, error) {
	scales := opts.Scales
	if len(scales) == 0 {
		scales = []float32{1.0}
	}

	bounds := img.Bounds()
	var acc *Logits

	accumulate := func(l *Logits) error {
		if acc == nil {
			acc = l
			return nil
		}
		return acc.Accumulate(l)
	}

	run := func(variant image.Image, unflip func(*Logits) *Logits) error {
		logits, err := seg.Logits(ctx, variant)
		if err != nil {
			return err
		}
		if unflip != nil {
			logits = unflip(logits)
		}
		// Every variant is brought to source resolution before accumulation,
		// so mixed scales and segmenters with input-sized logits line up.
		return accumulate(logits.ResizeBilinear(bounds.Dx(), bounds.Dy()))
	}

	for _, scale := range scales {
		if scale <= 0 {
			return nil, fmt.Errorf("invalid augment scale %v", scale)
		}
		scaled := img
		if scale != 1.0 {
			w := uint(math32.Round(float32(bounds.Dx()) * scale))
			h := uint(math32.Round(float32(bounds.Dy()) * scale))
			scaled = resize.Resize(w, h, img, resize.Bilinear)
		}

		if err := run(scaled, nil); err != nil {
			return nil, err
		}
		if opts.FlipHorizontal {
			if err := run(flipHorizontal(scaled), (*Logits).FlipHorizontal); err != nil {
				return nil, err
			}
		}
		if opts.FlipVertical {
			if err := run(flipVertical(scaled), (*Logits).FlipVertical); err != nil {
				return nil, err
			}
		}
	}

	labels, err := acc.Argmax()
	if err != nil {
		return nil, err
	}
	return labels.ResizeNearest(bounds.Dx(), bounds.Dy()), nil
}

// flipHorizontal mirrors an image left-to-right.
func flipHorizontal(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			out.Set(bounds.Dx()-1-x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

// flipVertical mirrors an image top-to-bottom.
func flipVertical(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			out.Set(x, bounds.Dy()-1-y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

// toRGBA copies an image into an RGBA buffer so windows can be cropped
// cheaply via SubImage.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
