// Package export renders lesson output as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/pointerquest/internal/scene"
	"github.com/san-kum/pointerquest/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`

// CanvasToSVG draws every lit braille dot of canvas as a circle. scale is
// the size of one dot in SVG units.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fg, bg string) string {
	if canvas == nil {
		return ""
	}
	dw, dh := canvas.Dots()
	width, height := float64(dw)*scale, float64(dh)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height, bg)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fg)
	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SceneToSVG renders g the way the terminal view does, with the default
// camera, on a cols x rows braille canvas.
func SceneToSVG(g *scene.Graph, cols, rows int, theme viz.Theme) string {
	canvas := viz.NewCanvas(cols, rows)
	viz.Render3D(canvas, viz.SceneWireframe(g), viz.NewCamera())
	return CanvasToSVG(canvas, 4, string(theme.Canvas), background(theme))
}

func background(theme viz.Theme) string {
	if theme.Name == "paper" {
		return "#fafafa"
	}
	return "#0a0a0a"
}

// SeriesToSVG draws values over times as a polyline with 10% padding.
func SeriesToSVG(times, values []float64, width, height int, stroke string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}
	minX, maxX := padded(times[:n])
	minY, maxY := padded(values[:n])

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, float64(width), float64(height), float64(width), float64(height), "#0a0a0a")
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := 0; i < n; i++ {
		x := (times[i] - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (values[i]-minY)/(maxY-minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func padded(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
