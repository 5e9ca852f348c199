package visualize

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/nvr-ai/go-seg-export/categories"
	"github.com/nvr-ai/go-seg-export/polygons"
)

// DrawPolygons renders the traced polygon boundaries onto a black canvas,
// one stroke color per category from the registry. Useful for eyeballing
// what actually went into the annotation document.
//
// Arguments:
//   - width: Canvas width in pixels.
//   - height: Canvas height in pixels.
//   - byCategory: Polygons keyed by category id.
//
// Returns:
//   - *image.RGBA: The outline image.
func DrawPolygons(width, height int, byCategory map[int][]polygons.Polygon) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	gc := draw2dimg.NewGraphicContext(canvas)
	gc.SetLineWidth(1.5)

	for id := 0; id < categories.Count; id++ {
		polys := byCategory[id]
		if len(polys) == 0 {
			continue
		}
		stroke, ok := categories.ColorOf(id)
		if !ok {
			continue
		}
		gc.SetStrokeColor(stroke)

		for _, poly := range polys {
			if len(poly) < 2 {
				continue
			}
			gc.BeginPath()
			gc.MoveTo(float64(poly[0].X), float64(poly[0].Y))
			for _, pt := range poly[1:] {
				gc.LineTo(float64(pt.X), float64(pt.Y))
			}
			gc.Close()
			gc.Stroke()
		}
	}
	return canvas
}
