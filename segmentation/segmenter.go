package segmentation

import (
	"context"
	"image"
	"runtime"
)

// Segmenter is the inference port: it turns an input image into a per-pixel
// label map at the image's own resolution. Implementations own model state
// and are not required to be safe for concurrent use.
type Segmenter interface {
	Predict(ctx context.Context, img image.Image) (*LabelMap, error)
	Close() error
}

// LogitsSegmenter is the lower-level port used by the augmented and
// sliding-window prediction paths: it exposes the raw [C,H,W] class logits
// for an image at the model's working resolution, before any argmax.
type LogitsSegmenter interface {
	Segmenter
	// Logits runs the model on img and returns the class logit volume along
	// with the resolution it is expressed at.
	Logits(ctx context.Context, img image.Image) (*Logits, error)
}

// SharedLibPath locates the ONNX Runtime shared library for the current
// platform.
//
// Returns:
//   - string: Relative path to the platform's onnxruntime library.
func SharedLibPath() string {
	if runtime.GOOS == "windows" {
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll"
		}
	}
	if runtime.GOOS == "darwin" {
		return "./third_party/libonnxruntime.1.23.0.dylib"
	}
	if runtime.GOOS == "linux" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
	panic("Unable to find a version of the onnxruntime library supporting this system.")
}
