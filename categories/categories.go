// Package categories - The fixed urban-scene category table used by the
// annotation export pipeline.
package categories

import "image/color"

// Category is one semantic class known to the pipeline. The ID values are
// stable and double as the label values emitted by the segmentation model,
// so the table order must stay aligned with the model's class axis.
type Category struct {
	// ID is the class index, 0-based.
	ID int `json:"id"`
	// Name is the human-readable class name.
	Name string `json:"name"`
	// Color is the display color as an RGB triple.
	Color [3]int `json:"color"`
	// SuperCategory is kept empty for this taxonomy.
	SuperCategory string `json:"supercategory"`
}

// Count is the number of categories in the table. The mask decomposer
// iterates label values [0, Count) and must stay in lock-step with the table.
const Count = 19

// cityscapes is the full 19-class urban-scene table, in id order.
var cityscapes = []Category{
	{ID: 0, Name: "road", Color: [3]int{128, 64, 128}},
	{ID: 1, Name: "sidewalk", Color: [3]int{244, 35, 232}},
	{ID: 2, Name: "building", Color: [3]int{70, 70, 70}},
	{ID: 3, Name: "wall", Color: [3]int{102, 102, 156}},
	{ID: 4, Name: "fence", Color: [3]int{190, 153, 153}},
	{ID: 5, Name: "pole", Color: [3]int{153, 153, 153}},
	{ID: 6, Name: "traffic_light", Color: [3]int{250, 170, 30}},
	{ID: 7, Name: "traffic_sign", Color: [3]int{220, 220, 0}},
	{ID: 8, Name: "vegetation", Color: [3]int{107, 142, 35}},
	{ID: 9, Name: "terrain", Color: [3]int{152, 251, 152}},
	{ID: 10, Name: "sky", Color: [3]int{70, 130, 180}},
	{ID: 11, Name: "person", Color: [3]int{220, 20, 60}},
	{ID: 12, Name: "rider", Color: [3]int{255, 0, 0}},
	{ID: 13, Name: "car", Color: [3]int{0, 0, 142}},
	{ID: 14, Name: "truck", Color: [3]int{0, 0, 70}},
	{ID: 15, Name: "bus", Color: [3]int{0, 60, 100}},
	{ID: 16, Name: "train", Color: [3]int{0, 80, 100}},
	{ID: 17, Name: "motorcycle", Color: [3]int{0, 0, 230}},
	{ID: 18, Name: "bicycle", Color: [3]int{119, 11, 32}},
}

// List returns the category table in id order (0..18).
//
// Returns:
//   - []Category: A copy of the table; callers may not mutate the registry.
func List() []Category {
	out := make([]Category, len(cityscapes))
	copy(out, cityscapes)
	return out
}

// ColorOf returns the display color for a category id.
//
// Arguments:
//   - id: The category id, must be in [0, Count).
//
// Returns:
//   - color.RGBA: The display color, opaque.
//   - bool: False if the id is outside the table.
func ColorOf(id int) (color.RGBA, bool) {
	if id < 0 || id >= len(cityscapes) {
		return color.RGBA{}, false
	}
	c := cityscapes[id].Color
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}, true
}

// NameOf returns the class name for a category id, or "" if unknown.
func NameOf(id int) string {
	if id < 0 || id >= len(cityscapes) {
		return ""
	}
	return cityscapes[id].Name
}
