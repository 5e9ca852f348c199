package visualize

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-seg-export/segmentation"
)

// Colorize renders a label map through the color table into a 3-channel BGR
// Mat sized like the map. The caller owns the Mat and must Close it.
//
// Arguments:
//   - labels: The label map to render.
//   - colorMap: Flat R,G,B table from ColorMapList.
//
// Returns:
//   - gocv.Mat: BGR image, 8-bit, 3 channels.
//   - error: An error if the Mat cannot be built.
func Colorize(labels *segmentation.LabelMap, colorMap []uint8) (gocv.Mat, error) {
	buf := make([]uint8, len(labels.Pixels)*3)
	for i, p := range labels.Pixels {
		base := int(p) * 3
		// OpenCV Mats are BGR.
		buf[i*3] = colorMap[base+2]
		buf[i*3+1] = colorMap[base+1]
		buf[i*3+2] = colorMap[base]
	}
	mat, err := gocv.NewMatFromBytes(labels.Height, labels.Width, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to build color mat: %w", err)
	}
	return mat, nil
}

// Overlay alpha-blends the source image with the colorized prediction:
// weight of the source, 1-weight of the prediction. The prediction is
// resized to the image's dimensions if they differ. The caller owns the
// returned Mat.
//
// Arguments:
//   - img: The source image (BGR).
//   - labels: The predicted label map.
//   - colorMap: Flat R,G,B table.
//   - weight: Source image weight in [0,1]; the original pipeline uses 0.6.
//
// Returns:
//   - gocv.Mat: The blended image.
//   - error: An error if rendering fails.
func Overlay(img gocv.Mat, labels *segmentation.LabelMap, colorMap []uint8, weight float64) (gocv.Mat, error) {
	colored, err := Colorize(labels, colorMap)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer colored.Close()

	if colored.Rows() != img.Rows() || colored.Cols() != img.Cols() {
		gocv.Resize(colored, &colored, image.Pt(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationNearestNeighbor)
	}

	dst := gocv.NewMat()
	gocv.AddWeighted(img, weight, colored, 1.0-weight, 0, &dst)
	return dst, nil
}

// PseudoColor renders the label map as a paletted image whose palette is the
// color table, the form the pseudo-color mask artifact is saved in.
//
// Arguments:
//   - labels: The label map to render.
//   - colorMap: Flat R,G,B table; up to 256 entries are used.
//
// Returns:
//   - *image.Paletted: One palette index per pixel, equal to the class id.
func PseudoColor(labels *segmentation.LabelMap, colorMap []uint8) *image.Paletted {
	entries := len(colorMap) / 3
	if entries > 256 {
		entries = 256
	}
	palette := make(color.Palette, entries)
	for i := 0; i < entries; i++ {
		palette[i] = color.RGBA{
			R: colorMap[i*3],
			G: colorMap[i*3+1],
			B: colorMap[i*3+2],
			A: 255,
		}
	}

	out := image.NewPaletted(image.Rect(0, 0, labels.Width, labels.Height), palette)
	copy(out.Pix, labels.Pixels)
	return out
}
