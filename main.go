package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-seg-export/categories"
	"github.com/nvr-ai/go-seg-export/export"
	"github.com/nvr-ai/go-seg-export/polygons"
	"github.com/nvr-ai/go-seg-export/segmentation"
	"github.com/nvr-ai/go-seg-export/util"
)

const (
	// DefaultSaveDir is where artifacts land when --save-dir is not given.
	DefaultSaveDir = "./output/result"
	// DefaultInputSize is the model working resolution when --input-size is
	// not given.
	DefaultInputSize = "1024,512"
)

func main() {
	var (
		modelPath      string
		imagePath      string
		saveDir        string
		inputSize      string
		augPred        bool
		scales         string
		flipHorizontal bool
		flipVertical   bool
		slide          bool
		cropSize       string
		stride         string
		customColor    string
		weight         float64
		workers        int
		rank           int
		drawPolygons   bool
	)
	flag.StringVar(&modelPath, "model", "", "Path to the segmentation ONNX model file")
	flag.StringVar(&imagePath, "image-path", "", "Image to predict: a single image, a directory of images, or a list file")
	flag.StringVar(&saveDir, "save-dir", DefaultSaveDir, "Directory for the predicted results")
	flag.StringVar(&inputSize, "input-size", DefaultInputSize, "Model input resolution as width,height")
	flag.BoolVar(&augPred, "aug-pred", false, "Use multi-scale and flip augmented prediction")
	flag.StringVar(&scales, "scales", "1.0", "Comma-separated scales for augmented prediction, e.g. 0.75,1.0,1.25")
	flag.BoolVar(&flipHorizontal, "flip-horizontal", false, "Add a horizontal-flip pass to augmented prediction")
	flag.BoolVar(&flipVertical, "flip-vertical", false, "Add a vertical-flip pass to augmented prediction")
	flag.BoolVar(&slide, "slide", false, "Predict with a sliding window")
	flag.StringVar(&cropSize, "crop-size", "", "Sliding window size as width,height, e.g. 512,512")
	flag.StringVar(&stride, "stride", "", "Sliding window step as width,height, e.g. 256,256")
	flag.StringVar(&customColor, "custom-color", "", "Comma-separated flat R,G,B values overriding the color map prefix")
	flag.Float64Var(&weight, "weight", 0.6, "Source image weight of the overlay blend")
	flag.IntVar(&workers, "workers", 1, "Total number of worker ranks sharding the image list")
	flag.IntVar(&rank, "rank", 0, "This process's rank in [0, workers)")
	flag.BoolVar(&drawPolygons, "draw-polygons", false, "Also save polygon outline images")
	flag.Parse()

	if modelPath == "" {
		log.Fatal("no model specified, please set --model")
	}
	if imagePath == "" {
		log.Fatal("no input specified, please set --image-path")
	}
	if workers < 1 {
		log.Fatalf("invalid --workers %d, must be >= 1", workers)
	}

	size, err := parsePoint(inputSize)
	if err != nil {
		log.Fatalf("invalid --input-size: %v", err)
	}

	imageList, imageDir, err := util.LoadImageList(imagePath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("the number of images: %d", len(imageList))

	segmenter, err := segmentation.NewONNXSegmenter(segmentation.Config{
		ModelPath:  modelPath,
		InputShape: size,
		Classes:    categories.Count,
	})
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	defer segmenter.Close()

	opts := export.Options{
		SaveDir:      saveDir,
		ImageDir:     imageDir,
		Workers:      workers,
		Rank:         rank,
		Weight:       weight,
		DrawOutlines: drawPolygons,
	}
	if customColor != "" {
		opts.CustomColor, err = parseInts(customColor)
		if err != nil {
			log.Fatalf("invalid --custom-color: %v", err)
		}
	}
	if augPred {
		scaleList, err := parseFloats(scales)
		if err != nil {
			log.Fatalf("invalid --scales: %v", err)
		}
		opts.Augment = &segmentation.AugmentOptions{
			Scales:         scaleList,
			FlipHorizontal: flipHorizontal,
			FlipVertical:   flipVertical,
		}
	}
	if slide {
		crop, err := parsePoint(cropSize)
		if err != nil {
			log.Fatalf("invalid --crop-size: %v", err)
		}
		step, err := parsePoint(stride)
		if err != nil {
			log.Fatalf("invalid --stride: %v", err)
		}
		opts.Slide = &segmentation.SlideOptions{CropSize: crop, Stride: step}
	}

	pipeline, err := export.NewPipeline(segmenter, polygons.NewContourTracer(), opts)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := pipeline.Run(context.Background(), imageList); err != nil {
		log.Fatal(err)
	}
}

// parsePoint parses "width,height" into an image.Point.
func parsePoint(s string) (image.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("expected width,height, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y), nil
}

// parseFloats parses a comma-separated float32 list.
func parseFloats(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(f))
	}
	return out, nil
}

// parseInts parses a comma-separated int list.
func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
