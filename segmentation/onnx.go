package segmentation

import (
	"context"
	"fmt"
	"image"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// Config holds the settings for the ONNX segmentation session.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// InputShape is the model's working resolution (width, height).
	InputShape image.Point
	// Classes is the size of the model's class axis.
	Classes int
	// InputName and OutputName are the model's tensor names. Defaults are
	// "images" and "output0" when left empty.
	InputName  string
	OutputName string
}

// ONNXSegmenter runs a semantic segmentation model through ONNX Runtime and
// implements both Segmenter and LogitsSegmenter. Not safe for concurrent use;
// the session's input/output tensors are reused across runs.
type ONNXSegmenter struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	config  Config
}

// NewONNXSegmenter creates a new ONNX segmentation session.
//
// Arguments:
//   - config: The session configuration.
//
// Returns:
//   - *ONNXSegmenter: The ready-to-run segmenter.
//   - error: An error if the runtime library or model cannot be loaded.
func NewONNXSegmenter(config Config) (*ONNXSegmenter, error) {
	// Check if the shared library exists before trying to use it.
	libPath := SharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("ONNX Runtime library not found at %s: %w", libPath, err)
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("model weights unavailable at %s: %w", config.ModelPath, err)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("error initializing ORT environment: %w", err)
	}

	if config.InputName == "" {
		config.InputName = "images"
	}
	if config.OutputName == "" {
		config.OutputName = "output0"
	}

	w, h := config.InputShape.X, config.InputShape.Y
	inputShape := ort.NewShape(1, 3, int64(h), int64(w))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(config.Classes), int64(h), int64(w))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy() // Clean up input tensor if output tensor creation fails
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}
	defer options.Destroy()

	// Sets the number of threads used to parallelize execution within onnxruntime graph nodes. A value of 0 uses the default number of threads.
	options.SetIntraOpNumThreads(4)
	// Sets the number of threads used to parallelize execution across separate onnxruntime graph nodes. A value of 0 uses the default number of threads.
	options.SetInterOpNumThreads(2)
	// Sets the optimization level to apply when loading a graph.
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.OutputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session: %w", err)
	}

	return &ONNXSegmenter{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		config:  config,
	}, nil
}

// Logits runs the model on img and returns a copy of the raw class logits at
// the model's working resolution.
func (s *ONNXSegmenter) Logits(ctx context.Context, img image.Image) (*Logits, error) {
	if s.session == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	// Check context cancellation before committing to a run.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	w, h := s.config.InputShape.X, s.config.InputShape.Y
	if err := PrepareInput(img, s.input, w, h); err != nil {
		return nil, fmt.Errorf("failed to prepare input: %w", err)
	}

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("failed to run inference: %w", err)
	}

	// The output tensor is reused by the next Run, so hand out a copy.
	raw := s.output.GetData()
	data := make([]float32, len(raw))
	copy(data, raw)
	return LogitsFromSlice(data, s.config.Classes, h, w)
}

// Predict runs inference on the provided image and returns the label map
// resized back to the image's own dimensions.
//
// Arguments:
//   - ctx: The context for the prediction.
//   - img: The image to segment.
//
// Returns:
//   - *LabelMap: Per-pixel class ids at source resolution.
//   - error: The error if any.
func (s *ONNXSegmenter) Predict(ctx context.Context, img image.Image) (*LabelMap, error) {
	logits, err := s.Logits(ctx, img)
	if err != nil {
		return nil, err
	}
	labels, err := logits.Argmax()
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return labels.ResizeNearest(bounds.Dx(), bounds.Dy()), nil
}

// Close releases the session and its tensors.
func (s *ONNXSegmenter) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	return nil
}
