package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-seg-export/coco"
	"github.com/nvr-ai/go-seg-export/polygons"
	"github.com/nvr-ai/go-seg-export/segmentation"
	"github.com/nvr-ai/go-seg-export/visualize"
)

const (
	overlayDirName     = "added_prediction"
	pseudoColorDirName = "pseudo_color_prediction"
	outlineDirName     = "polygon_prediction"
)

// ArtifactWriter persists the per-image visualization artifacts and the
// final annotation document under one save root.
type ArtifactWriter struct {
	// SaveDir is the output root; artifact subdirectories live below it.
	SaveDir string
	// ColorMap is the flat R,G,B rendering table.
	ColorMap []uint8
	// Weight is the source-image weight of the overlay blend.
	Weight float64
}

// DocumentPath returns where the annotation document for a rank is written.
// With a single worker this is the classic annotations.json; with several
// workers the path is rank-qualified so independent ranks cannot overwrite
// each other's documents.
func DocumentPath(saveDir string, workers, rank int) string {
	if workers > 1 {
		return filepath.Join(saveDir, fmt.Sprintf("annotations_rank%d.json", rank))
	}
	return filepath.Join(saveDir, "annotations.json")
}

// pngName swaps a file name's extension for .png.
func pngName(relName string) string {
	return strings.TrimSuffix(relName, filepath.Ext(relName)) + ".png"
}

// mkdirFor creates the parent directory of a target path.
func mkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// WriteOverlay blends the source image with the prediction and saves it as
// added_prediction/<relName>, keeping the input's extension.
func (w *ArtifactWriter) WriteOverlay(relName string, img gocv.Mat, labels *segmentation.LabelMap) error {
	blended, err := visualize.Overlay(img, labels, w.ColorMap, w.Weight)
	if err != nil {
		return err
	}
	defer blended.Close()

	path := filepath.Join(w.SaveDir, overlayDirName, relName)
	if err := mkdirFor(path); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	if ok := gocv.IMWrite(path, blended); !ok {
		return fmt.Errorf("failed to write overlay image %s", path)
	}
	return nil
}

// WritePseudoColor saves the paletted prediction mask as
// pseudo_color_prediction/<relName with .png>.
func (w *ArtifactWriter) WritePseudoColor(relName string, labels *segmentation.LabelMap) error {
	path := filepath.Join(w.SaveDir, pseudoColorDirName, pngName(relName))
	if err := mkdirFor(path); err != nil {
		return fmt.Errorf("failed to create pseudo-color directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pseudo-color file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, visualize.PseudoColor(labels, w.ColorMap)); err != nil {
		return fmt.Errorf("failed to encode pseudo-color mask: %w", err)
	}
	return nil
}

// WriteOutlines saves the traced polygon boundaries as
// polygon_prediction/<relName with .png>.
func (w *ArtifactWriter) WriteOutlines(relName string, width, height int, byCategory map[int][]polygons.Polygon) error {
	path := filepath.Join(w.SaveDir, outlineDirName, pngName(relName))
	if err := mkdirFor(path); err != nil {
		return fmt.Errorf("failed to create outline directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create outline file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, visualize.DrawPolygons(width, height, byCategory)); err != nil {
		return fmt.Errorf("failed to encode outline image: %w", err)
	}
	return nil
}

// WriteDocument encodes and writes the aggregated annotation document. It is
// called exactly once, after the whole shard has been processed; an
// interrupted run therefore leaves per-image artifacts but no document.
func (w *ArtifactWriter) WriteDocument(doc coco.Document, workers, rank int) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode annotation document: %w", err)
	}

	path := DocumentPath(w.SaveDir, workers, rank)
	if err := mkdirFor(path); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write annotation document: %w", err)
	}
	return nil
}
