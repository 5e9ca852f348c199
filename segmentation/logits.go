package segmentation

import (
	"fmt"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// Logits is a dense float32 class-score volume with shape [classes, height,
// width]. The augmented prediction path accumulates several of these (one
// per scale/flip variant) before a single final argmax.
type Logits struct {
	Classes int
	Height  int
	Width   int
	// T backs the volume as a [C,H,W] float32 tensor.
	T *tensor.Dense
}

// NewLogits allocates a zeroed logit volume.
func NewLogits(classes, height, width int) *Logits {
	return &Logits{
		Classes: classes,
		Height:  height,
		Width:   width,
		T:       tensor.New(tensor.WithShape(classes, height, width), tensor.Of(tensor.Float32)),
	}
}

// LogitsFromSlice wraps raw model output in a Logits volume. The slice is
// used directly, not copied.
func LogitsFromSlice(data []float32, classes, height, width int) (*Logits, error) {
	if len(data) != classes*height*width {
		return nil, fmt.Errorf("logit buffer holds %d floats, shape [%d,%d,%d] needs %d",
			len(data), classes, height, width, classes*height*width)
	}
	return &Logits{
		Classes: classes,
		Height:  height,
		Width:   width,
		T:       tensor.New(tensor.WithShape(classes, height, width), tensor.WithBacking(data)),
	}, nil
}

// data returns the backing float32 slice.
func (l *Logits) data() []float32 {
	return l.T.Data().([]float32)
}

// Accumulate adds other into l element-wise. Shapes must match.
func (l *Logits) Accumulate(other *Logits) error {
	if other.Classes != l.Classes || other.Height != l.Height || other.Width != l.Width {
		return fmt.Errorf("logit shape mismatch: [%d,%d,%d] vs [%d,%d,%d]",
			l.Classes, l.Height, l.Width, other.Classes, other.Height, other.Width)
	}
	_, err := l.T.Add(other.T, tensor.UseUnsafe())
	return err
}

// FlipHorizontal returns a copy with every row reversed, per channel. Used to
// map logits computed on a horizontally flipped image back to source
// orientation.
func (l *Logits) FlipHorizontal() *Logits {
	out := NewLogits(l.Classes, l.Height, l.Width)
	src, dst := l.data(), out.data()
	for c := 0; c < l.Classes; c++ {
		base := c * l.Height * l.Width
		for y := 0; y < l.Height; y++ {
			row := base + y*l.Width
			for x := 0; x < l.Width; x++ {
				dst[row+x] = src[row+l.Width-1-x]
			}
		}
	}
	return out
}

// FlipVertical returns a copy with the row order reversed, per channel.
func (l *Logits) FlipVertical() *Logits {
	out := NewLogits(l.Classes, l.Height, l.Width)
	src, dst := l.data(), out.data()
	for c := 0; c < l.Classes; c++ {
		base := c * l.Height * l.Width
		for y := 0; y < l.Height; y++ {
			srcRow := base + (l.Height-1-y)*l.Width
			dstRow := base + y*l.Width
			copy(dst[dstRow:dstRow+l.Width], src[srcRow:srcRow+l.Width])
		}
	}
	return out
}

// ResizeBilinear scales the volume to width x height with bilinear sampling
// per channel. Logits are continuous scores, so interpolation is valid here
// (unlike for label maps).
func (l *Logits) ResizeBilinear(width, height int) *Logits {
	if width == l.Width && height == l.Height {
		return l
	}
	out := NewLogits(l.Classes, height, width)
	src, dst := l.data(), out.data()

	scaleX := float32(l.Width) / float32(width)
	scaleY := float32(l.Height) / float32(height)
	plane := l.Height * l.Width
	outPlane := height * width

	for y := 0; y < height; y++ {
		fy := (float32(y)+0.5)*scaleY - 0.5
		y0 := int(math32.Floor(fy))
		wy := fy - float32(y0)
		if y0 < 0 {
			y0, wy = 0, 0
		}
		y1 := y0 + 1
		if y1 >= l.Height {
			y1 = l.Height - 1
		}
		for x := 0; x < width; x++ {
			fx := (float32(x)+0.5)*scaleX - 0.5
			x0 := int(math32.Floor(fx))
			wx := fx - float32(x0)
			if x0 < 0 {
				x0, wx = 0, 0
			}
			x1 := x0 + 1
			if x1 >= l.Width {
				x1 = l.Width - 1
			}
			for c := 0; c < l.Classes; c++ {
				base := c * plane
				top := src[base+y0*l.Width+x0]*(1-wx) + src[base+y0*l.Width+x1]*wx
				bottom := src[base+y1*l.Width+x0]*(1-wx) + src[base+y1*l.Width+x1]*wx
				dst[c*outPlane+y*width+x] = top*(1-wy) + bottom*wy
			}
		}
	}
	return out
}

// Argmax reduces the volume to a label map by per-pixel argmax over the
// class axis.
func (l *Logits) Argmax() (*LabelMap, error) {
	return LabelMapFromLogits(l.T)
}
