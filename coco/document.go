// Package coco - COCO-style annotation records, identifier allocation, and
// the aggregated annotation document.
package coco

import (
	"encoding/json"

	"github.com/nvr-ai/go-seg-export/categories"
)

// ImageRecord describes one processed image. IDs are 1-based and assigned in
// processing order within a shard.
type ImageRecord struct {
	ID           int    `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileName     string `json:"file_name"`
	License      string `json:"license"`
	FlickrURL    string `json:"flickr_url"`
	CocoURL      string `json:"coco_url"`
	DateCaptured string `json:"date_captured"`
}

// AnnotationRecord describes one polygon of one category on one image. Area
// and bbox are deliberately not computed by this pipeline; they are emitted
// as 0 and [] respectively.
type AnnotationRecord struct {
	ID           int         `json:"id"`
	IsCrowd      int         `json:"iscrowd"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	Segmentation [][]float64 `json:"segmentation"`
	Area         int         `json:"area"`
	BBox         []float64   `json:"bbox"`
}

// Document is the final aggregated annotation artifact: the category table,
// the image metadata list, and the annotation list. Built once per shard
// after all of the shard's images are processed.
type Document struct {
	Categories  []categories.Category `json:"categories"`
	Images      []ImageRecord         `json:"images"`
	Annotations []AnnotationRecord    `json:"annotations"`
	Info        string                `json:"info"`
	Licenses    []string              `json:"licenses"`
}

// Aggregate merges the category table with the assembled image and
// annotation lists. Nil lists are replaced with empty ones so they encode as
// [] rather than null.
//
// Arguments:
//   - cats: The category table, in id order.
//   - images: Image records in processing order.
//   - annotations: Annotation records in emission order.
//
// Returns:
//   - Document: The aggregated document, ready to encode.
func Aggregate(cats []categories.Category, images []ImageRecord, annotations []AnnotationRecord) Document {
	if cats == nil {
		cats = []categories.Category{}
	}
	if images == nil {
		images = []ImageRecord{}
	}
	if annotations == nil {
		annotations = []AnnotationRecord{}
	}
	return Document{
		Categories:  cats,
		Images:      images,
		Annotations: annotations,
		Info:        "",
		Licenses:    []string{},
	}
}

// Encode serializes the document as UTF-8 JSON.
func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Decode parses a document previously produced by Encode.
func Decode(data []byte) (Document, error) {
	var doc Document
	err := json.Unmarshal(data, &doc)
	return doc, err
}
