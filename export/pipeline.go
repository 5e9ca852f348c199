package export

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-seg-export/categories"
	"github.com/nvr-ai/go-seg-export/coco"
	"github.com/nvr-ai/go-seg-export/polygons"
	"github.com/nvr-ai/go-seg-export/progress"
	"github.com/nvr-ai/go-seg-export/segmentation"
	"github.com/nvr-ai/go-seg-export/visualize"
)

// Options configures one pipeline run.
type Options struct {
	// SaveDir is the output root for all artifacts.
	SaveDir string
	// ImageDir is the input root stripped from recorded file names; empty
	// means only base names are recorded.
	ImageDir string
	// Workers and Rank select this process's shard. Workers must be >= 1 and
	// 0 <= Rank < Workers.
	Workers int
	Rank    int
	// Weight is the overlay blend weight of the source image (default 0.6).
	Weight float64
	// CustomColor optionally overrides the rendering color map prefix.
	CustomColor []int
	// DrawOutlines additionally saves a polygon outline artifact per image.
	DrawOutlines bool
	// Augment enables multi-scale / flip prediction; requires a segmenter
	// that exposes logits.
	Augment *segmentation.AugmentOptions
	// Slide enables sliding-window prediction; requires a segmenter that
	// exposes logits.
	Slide *segmentation.SlideOptions
}

// Pipeline drives the whole export for one rank's shard: predict, decompose,
// trace, assemble, persist. All state is owned by the single goroutine that
// calls Run.
type Pipeline struct {
	segmenter segmentation.Segmenter
	extractor polygons.Extractor
	opts      Options
}

// NewPipeline wires a pipeline from its two external collaborators.
//
// Arguments:
//   - segmenter: The inference port.
//   - tracer: The contour-tracing port.
//   - opts: Run configuration.
//
// Returns:
//   - *Pipeline: The configured pipeline.
//   - error: Invalid worker/rank configuration.
func NewPipeline(segmenter segmentation.Segmenter, tracer polygons.Tracer, opts Options) (*Pipeline, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", opts.Workers)
	}
	if opts.Rank < 0 || opts.Rank >= opts.Workers {
		return nil, fmt.Errorf("rank %d outside [0,%d)", opts.Rank, opts.Workers)
	}
	if opts.Weight == 0 {
		opts.Weight = 0.6
	}
	if opts.Augment != nil || opts.Slide != nil {
		if _, ok := segmenter.(segmentation.LogitsSegmenter); !ok {
			return nil, fmt.Errorf("augmented and sliding-window prediction need a logit-level segmenter")
		}
	}
	return &Pipeline{
		segmenter: segmenter,
		extractor: polygons.Extractor{Tracer: tracer},
		opts:      opts,
	}, nil
}

// Run processes this rank's shard of the image list and writes all
// artifacts, including the final annotation document. The document is
// written once, only after every image in the shard has been handled, so an
// interrupted run leaves image artifacts but no document.
//
// Arguments:
//   - ctx: Cancels in-flight inference between images.
//   - imageList: The full (unsharded) ordered image list.
//
// Returns:
//   - coco.Document: The aggregated document that was written.
//   - error: A fatal pipeline error; per-image extraction failures are
//     logged and skipped instead.
func (p *Pipeline) Run(ctx context.Context, imageList []string) (coco.Document, error) {
	shard := Partition(imageList, p.opts.Workers)[p.opts.Rank]

	writer := &ArtifactWriter{
		SaveDir:  p.opts.SaveDir,
		ColorMap: visualize.ColorMapList(256, p.opts.CustomColor),
		Weight:   p.opts.Weight,
	}
	assembler := coco.NewAssembler(p.opts.ImageDir)
	reporter := progress.New(len(shard))

	log.Printf("start to predict: %d images (rank %d/%d)", len(shard), p.opts.Rank, p.opts.Workers)

	for _, path := range shard {
		if err := p.processImage(ctx, path, assembler, writer); err != nil {
			if isImageError(err) {
				// Extraction failed: skip this image's artifacts and records,
				// keep the partial progress of the run.
				log.Printf("skipping %s: %v", path, err)
				reporter.Fail()
				continue
			}
			return coco.Document{}, err
		}
		reporter.Step()
	}
	reporter.Finish()

	doc := coco.Aggregate(categories.List(), assembler.Images(), assembler.Annotations())
	if err := writer.WriteDocument(doc, p.opts.Workers, p.opts.Rank); err != nil {
		return coco.Document{}, err
	}

	log.Printf("predicted images are saved in %s and %s",
		DocumentPath(p.opts.SaveDir, p.opts.Workers, p.opts.Rank), p.opts.SaveDir)
	return doc, nil
}

// imageError marks a failure scoped to a single image; the run continues.
type imageError struct{ err error }

func (e imageError) Error() string { return e.err.Error() }
func (e imageError) Unwrap() error { return e.err }

func isImageError(err error) bool {
	var ie imageError
	return errors.As(err, &ie)
}

// processImage runs the full per-image chain. Identifier allocation happens
// only after polygon extraction and artifact writes succeed, so a skipped
// image never consumes an id.
func (p *Pipeline) processImage(ctx context.Context, path string, assembler *coco.Assembler, writer *ArtifactWriter) error {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("unreadable image %s", path)
	}
	defer img.Close()

	labels, err := p.predict(ctx, img)
	if err != nil {
		return errors.Wrapf(err, "inference failed for %s", path)
	}
	size := image.Pt(labels.Width, labels.Height)

	// Trace every category in [0,19) unconditionally; absent categories
	// produce all-background masks and therefore zero polygons.
	byCategory := make(map[int][]polygons.Polygon)
	err = labels.Decompose(categories.Count, func(id int, mask segmentation.BinaryMask) error {
		polys, err := p.extractor.Extract(mask, size, id)
		if err != nil {
			return err
		}
		if len(polys) > 0 {
			byCategory[id] = polys
		}
		return nil
	})
	if err != nil {
		return imageError{errors.Wrap(err, "polygon extraction failed")}
	}

	relName := coco.RelativeFileName(path, p.opts.ImageDir)
	if err := writer.WriteOverlay(relName, img, labels); err != nil {
		return imageError{err}
	}
	if err := writer.WritePseudoColor(relName, labels); err != nil {
		return imageError{err}
	}
	if p.opts.DrawOutlines {
		if err := writer.WriteOutlines(relName, labels.Width, labels.Height, byCategory); err != nil {
			return imageError{err}
		}
	}

	record := assembler.AddImage(path, labels.Width, labels.Height)
	for id := 0; id < categories.Count; id++ {
		for _, poly := range byCategory[id] {
			assembler.AddAnnotation(record.ID, id, poly.Flatten())
		}
	}
	return nil
}

// predict selects the configured prediction mode.
func (p *Pipeline) predict(ctx context.Context, img gocv.Mat) (*segmentation.LabelMap, error) {
	goImg, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	switch {
	case p.opts.Augment != nil:
		return segmentation.AugmentedPredict(ctx, p.segmenter.(segmentation.LogitsSegmenter), goImg, *p.opts.Augment)
	case p.opts.Slide != nil:
		return segmentation.SlidePredict(ctx, p.segmenter.(segmentation.LogitsSegmenter), goImg, *p.opts.Slide)
	default:
		return p.segmenter.Predict(ctx, goImg)
	}
}
