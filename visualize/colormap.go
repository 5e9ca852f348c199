// Package visualize - Color-mapped renderings of label maps: pseudo-color
// masks, alpha-blended overlays, and polygon outline images.
package visualize

// ColorMapList builds the flat RGB color table used for rendering label
// maps. Colors are generated by spreading the bits of each class index
// across the three channels, which keeps nearby class ids visually distinct.
// The first generated entry is dropped so class 0 gets a non-black color.
//
// Arguments:
//   - numClasses: Number of table entries to produce (256 covers any uint8
//     label map).
//   - customColor: Optional flat R,G,B prefix that overrides the generated
//     colors in order.
//
// Returns:
//   - []uint8: Flat R,G,B triples, numClasses entries.
func ColorMapList(numClasses int, customColor []int) []uint8 {
	n := numClasses + 1
	colorMap := make([]uint8, n*3)
	for i := 0; i < n; i++ {
		lab := i
		for j := 0; lab != 0; j++ {
			colorMap[i*3] |= uint8(((lab >> 0) & 1) << (7 - j))
			colorMap[i*3+1] |= uint8(((lab >> 1) & 1) << (7 - j))
			colorMap[i*3+2] |= uint8(((lab >> 2) & 1) << (7 - j))
			lab >>= 3
		}
	}
	colorMap = colorMap[3:]

	for i := 0; i < len(customColor) && i < len(colorMap); i++ {
		colorMap[i] = uint8(customColor[i])
	}
	return colorMap
}
