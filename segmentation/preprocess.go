package segmentation

import (
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/nfnt/resize"
)

// PrepareInput fills the model's input tensor with a CHW float32 rendering of
// img, resized to width x height and normalized to [0,1].
//
// Arguments:
//   - img: The image to prepare.
//   - dst: The destination tensor to populate, shape [1,3,height,width].
//   - width: Model input width.
//   - height: Model input height.
//
// Returns:
//   - error: An error if the tensor is too small for the requested shape.
func PrepareInput(img image.Image, dst *ort.Tensor[float32], width, height int) error {
	data := dst.GetData()
	channelSize := width * height
	if len(data) < (channelSize * 3) {
		return fmt.Errorf("destination tensor only holds %d floats, needs "+
			"%d (make sure it's the right shape!)", len(data), channelSize*3)
	}
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	// Resize the image to the model resolution using the Lanczos3 algorithm.
	img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
