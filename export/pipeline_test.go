package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-seg-export/coco"
	"github.com/nvr-ai/go-seg-export/polygons"
	"github.com/nvr-ai/go-seg-export/segmentation"
)

// fixedSegmenter returns the same label map for every image.
type fixedSegmenter struct {
	labels *segmentation.LabelMap
	err    error
}

func (s *fixedSegmenter) Predict(context.Context, image.Image) (*segmentation.LabelMap, error) {
	return s.labels, s.err
}

func (s *fixedSegmenter) Close() error { return nil }

// countingTracer traces a fixed triangle per non-empty mask and can be made
// to fail from a given call onward.
type countingTracer struct {
	calls     int
	failAfter int // 0 means never fail
}

func (tr *countingTracer) Trace(mask segmentation.BinaryMask, _ image.Point) ([]polygons.Polygon, error) {
	tr.calls++
	if tr.failAfter > 0 && tr.calls > tr.failAfter {
		return nil, fmt.Errorf("contour backend unavailable")
	}
	for _, p := range mask.Pixels {
		if p != 0 {
			return []polygons.Polygon{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}}}, nil
		}
	}
	return nil, nil
}

// threeRegionLabels is a 4x4 map holding categories 0, 1 and 2.
func threeRegionLabels() *segmentation.LabelMap {
	return &segmentation.LabelMap{
		Width:  4,
		Height: 4,
		Pixels: []uint8{
			0, 0, 1, 1,
			0, 0, 1, 1,
			2, 2, 2, 2,
			2, 2, 2, 2,
		},
	}
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(60 * x), G: uint8(60 * y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestPipelineRunExportsShard(t *testing.T) {
	imageDir := t.TempDir()
	saveDir := t.TempDir()
	imagePath := filepath.Join(imageDir, "frame.png")
	writeTestPNG(t, imagePath)

	seg := &fixedSegmenter{labels: threeRegionLabels()}
	pipeline, err := NewPipeline(seg, &countingTracer{}, Options{
		SaveDir:  saveDir,
		ImageDir: imageDir,
		Workers:  1,
	})
	require.NoError(t, err)

	doc, err := pipeline.Run(context.Background(), []string{imagePath})
	require.NoError(t, err)

	require.Len(t, doc.Images, 1)
	assert.Equal(t, 1, doc.Images[0].ID)
	assert.Equal(t, "frame.png", doc.Images[0].FileName)
	assert.Equal(t, 4, doc.Images[0].Width)
	assert.Equal(t, 4, doc.Images[0].Height)

	// Categories 0, 1 and 2 are present, each as one polygon; the other 16
	// masks are all background and contribute nothing.
	require.Len(t, doc.Annotations, 3)
	for i, record := range doc.Annotations {
		assert.Equal(t, i+1, record.ID)
		assert.Equal(t, i, record.CategoryID)
		assert.Equal(t, 1, record.ImageID)
		assert.Equal(t, 0, record.Area)
		assert.Empty(t, record.BBox)
	}

	assert.FileExists(t, filepath.Join(saveDir, "added_prediction", "frame.png"))
	assert.FileExists(t, filepath.Join(saveDir, "pseudo_color_prediction", "frame.png"))
	assert.NoFileExists(t, filepath.Join(saveDir, "polygon_prediction", "frame.png"))

	data, err := os.ReadFile(filepath.Join(saveDir, "annotations.json"))
	require.NoError(t, err)
	written, err := coco.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, written)
}

func TestPipelineDrawsOutlinesWhenEnabled(t *testing.T) {
	imageDir := t.TempDir()
	saveDir := t.TempDir()
	imagePath := filepath.Join(imageDir, "frame.png")
	writeTestPNG(t, imagePath)

	seg := &fixedSegmenter{labels: threeRegionLabels()}
	pipeline, err := NewPipeline(seg, &countingTracer{}, Options{
		SaveDir:      saveDir,
		ImageDir:     imageDir,
		Workers:      1,
		DrawOutlines: true,
	})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), []string{imagePath})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(saveDir, "polygon_prediction", "frame.png"))
}

func TestPipelineSkipsImageOnExtractionFailure(t *testing.T) {
	imageDir := t.TempDir()
	saveDir := t.TempDir()
	first := filepath.Join(imageDir, "a.png")
	second := filepath.Join(imageDir, "b.png")
	writeTestPNG(t, first)
	writeTestPNG(t, second)

	seg := &fixedSegmenter{labels: threeRegionLabels()}
	// 19 trace calls serve the first image; the tracer fails from the first
	// call of the second image onward.
	tracer := &countingTracer{failAfter: 19}
	pipeline, err := NewPipeline(seg, tracer, Options{
		SaveDir:  saveDir,
		ImageDir: imageDir,
		Workers:  1,
	})
	require.NoError(t, err)

	doc, err := pipeline.Run(context.Background(), []string{first, second})
	require.NoError(t, err, "an extraction failure skips the image, not the run")

	require.Len(t, doc.Images, 1)
	assert.Equal(t, "a.png", doc.Images[0].FileName)
	assert.Len(t, doc.Annotations, 3)

	// The skipped image leaves no artifacts and consumes no ids.
	assert.NoFileExists(t, filepath.Join(saveDir, "pseudo_color_prediction", "b.png"))
	assert.FileExists(t, filepath.Join(saveDir, "annotations.json"))
}

func TestPipelineUnreadableImageAbortsRun(t *testing.T) {
	saveDir := t.TempDir()
	seg := &fixedSegmenter{labels: threeRegionLabels()}
	pipeline, err := NewPipeline(seg, &countingTracer{}, Options{
		SaveDir: saveDir,
		Workers: 1,
	})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), []string{filepath.Join(saveDir, "missing.png")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable image")
}

func TestPipelineShardedRunWritesRankQualifiedDocument(t *testing.T) {
	imageDir := t.TempDir()
	saveDir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		p := filepath.Join(imageDir, fmt.Sprintf("img_%d.png", i))
		writeTestPNG(t, p)
		paths = append(paths, p)
	}

	seg := &fixedSegmenter{labels: threeRegionLabels()}
	pipeline, err := NewPipeline(seg, &countingTracer{}, Options{
		SaveDir:  saveDir,
		ImageDir: imageDir,
		Workers:  2,
		Rank:     1,
	})
	require.NoError(t, err)

	doc, err := pipeline.Run(context.Background(), paths)
	require.NoError(t, err)

	// Rank 1 of 2 owns the last ceil(3/2)=2..2 slice: one image, fresh ids.
	require.Len(t, doc.Images, 1)
	assert.Equal(t, 1, doc.Images[0].ID)
	assert.Equal(t, "img_2.png", doc.Images[0].FileName)

	assert.FileExists(t, filepath.Join(saveDir, "annotations_rank1.json"))
	assert.NoFileExists(t, filepath.Join(saveDir, "annotations.json"))
}

func TestDocumentPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "annotations.json"), DocumentPath("out", 1, 0))
	assert.Equal(t, filepath.Join("out", "annotations_rank0.json"), DocumentPath("out", 2, 0))
	assert.Equal(t, filepath.Join("out", "annotations_rank3.json"), DocumentPath("out", 4, 3))
}

func TestNewPipelineValidation(t *testing.T) {
	seg := &fixedSegmenter{labels: threeRegionLabels()}
	tracer := &countingTracer{}

	_, err := NewPipeline(seg, tracer, Options{Workers: 0})
	assert.Error(t, err)

	_, err = NewPipeline(seg, tracer, Options{Workers: 2, Rank: 2})
	assert.Error(t, err)

	_, err = NewPipeline(seg, tracer, Options{Workers: 1, Augment: &segmentation.AugmentOptions{}})
	assert.Error(t, err, "augmented prediction needs logit access")
}
