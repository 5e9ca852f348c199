package coco

import (
	"path/filepath"
	"strings"
)

// Assembler owns the per-shard identifier counters and accumulates the image
// and annotation records of one pipeline run. Image ids and annotation ids
// are independent sequences, both 1-based, strictly increasing, gapless.
// Single-owner state: one assembler belongs to one rank's processing loop.
type Assembler struct {
	imageDir         string
	nextImageID      int
	nextAnnotationID int
	images           []ImageRecord
	annotations      []AnnotationRecord
}

// NewAssembler creates an assembler whose file names are expressed relative
// to imageDir. An empty imageDir means only base file names are recorded.
func NewAssembler(imageDir string) *Assembler {
	return &Assembler{
		imageDir:         imageDir,
		nextImageID:      1,
		nextAnnotationID: 1,
	}
}

// RelativeFileName normalizes an image path for the output records: the
// configured root directory prefix is stripped if present along with one
// leading path separator; without a configured root only the base name is
// kept.
//
// Arguments:
//   - path: The image's input path.
//   - imageDir: The configured root directory, possibly empty.
//
// Returns:
//   - string: The normalized relative file name.
func RelativeFileName(path, imageDir string) string {
	if imageDir == "" {
		return filepath.Base(path)
	}
	name := strings.TrimPrefix(path, imageDir)
	if len(name) > 0 && (name[0] == '/' || name[0] == '\\') {
		name = name[1:]
	}
	return name
}

// AddImage allocates the next image id and appends the image record.
//
// Arguments:
//   - path: The image's input path; recorded relative to the assembler's
//     image directory.
//   - width: Label-map width in pixels.
//   - height: Label-map height in pixels.
//
// Returns:
//   - ImageRecord: The appended record, including its assigned id.
func (a *Assembler) AddImage(path string, width, height int) ImageRecord {
	record := ImageRecord{
		ID:       a.nextImageID,
		Width:    width,
		Height:   height,
		FileName: RelativeFileName(path, a.imageDir),
	}
	a.nextImageID++
	a.images = append(a.images, record)
	return record
}

// AddAnnotation allocates the next annotation id and appends a record for
// one polygon. Coordinates arrive as the float32 values the tracer produced
// and are normalized to plain float64 on the way in, so the record carries
// only encoder-native numbers.
//
// Arguments:
//   - imageID: The id previously assigned by AddImage.
//   - categoryID: The polygon's category.
//   - coords: Flattened alternating x,y coordinates.
//
// Returns:
//   - AnnotationRecord: The appended record, including its assigned id.
func (a *Assembler) AddAnnotation(imageID, categoryID int, coords []float32) AnnotationRecord {
	record := AnnotationRecord{
		ID:           a.nextAnnotationID,
		IsCrowd:      0,
		ImageID:      imageID,
		CategoryID:   categoryID,
		Segmentation: [][]float64{normalizeFloat32s(coords)},
		Area:         0,
		BBox:         []float64{},
	}
	a.nextAnnotationID++
	a.annotations = append(a.annotations, record)
	return record
}

// Images returns the accumulated image records in id order.
func (a *Assembler) Images() []ImageRecord {
	return a.images
}

// Annotations returns the accumulated annotation records in emission order.
func (a *Assembler) Annotations() []AnnotationRecord {
	return a.annotations
}
