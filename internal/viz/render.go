package viz

import (
	"math"
	"sort"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/scene"
)

type Vec3 = scene.Vec3

// Camera orbits the origin and projects world points onto the canvas.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 16, Near: 0.1, RotX: 0.45, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX = math.Mod(c.RotX+a, 2*math.Pi) }
func (c *Camera) RotateY(a float64) { c.RotY = math.Mod(c.RotY+a, 2*math.Pi) }
func (c *Camera) RotateZ(a float64) { c.RotZ = math.Mod(c.RotZ+a, 2*math.Pi) }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Project maps p to dot coordinates on a sw x sh surface. It returns the
// depth and whether the point is on screen and in front of the camera.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := p.Rotate(Vec3{X: c.RotX, Y: c.RotY, Z: c.RotZ}).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	unit := float64(min(sw, sh)) / 12
	sx := int(math.Round(rot.X*persp*unit)) + sw/2
	sy := int(math.Round(-rot.Y*persp*unit)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
	Dashed     bool
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{} }

func (w *Wireframe) Add(s, e Vec3, dashed bool) {
	w.Edges = append(w.Edges, Edge{Start: s, End: e, Dashed: dashed})
}

// faintOpacity is the opacity below which a node is drawn dashed; nodes
// under hiddenOpacity are not drawn at all. A pulsing node is dashed while
// its thickness is below thinStroke.
const (
	faintOpacity  = 0.5
	hiddenOpacity = 0.05
	thinStroke    = scene.BaseThickness - scene.ThicknessSwing/2
)

// SceneWireframe flattens the visible nodes of g into world-space edges.
// A hidden node hides its subtree.
func SceneWireframe(g *scene.Graph) *Wireframe {
	w := NewWireframe()
	if g == nil || g.Root == nil {
		return w
	}
	var visit func(n *scene.Node, parent func(Vec3) Vec3)
	visit = func(n *scene.Node, parent func(Vec3) Vec3) {
		if !n.Visible {
			return
		}
		toWorld := func(p Vec3) Vec3 { return parent(n.Local(p)) }
		if n.Opacity >= hiddenOpacity {
			dashed := n.Opacity < faintOpacity || n.Thickness < thinStroke
			for _, e := range shapeEdges(n.Shape, n.Size) {
				w.Add(toWorld(e[0]), toWorld(e[1]), dashed)
			}
		}
		for _, c := range n.Children {
			visit(c, toWorld)
		}
	}
	visit(g.Root, func(p Vec3) Vec3 { return p })
	return w
}

// shapeEdges returns the model-space outline of a shape of the given size.
func shapeEdges(shape lessons.Shape, size float64) [][2]Vec3 {
	s := size / 2
	switch shape {
	case lessons.ShapeCube:
		v := []Vec3{{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s}, {X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s}}
		idx := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
		edges := make([][2]Vec3, len(idx))
		for i, e := range idx {
			edges[i] = [2]Vec3{v[e[0]], v[e[1]]}
		}
		return edges
	case lessons.ShapeSphere:
		var edges [][2]Vec3
		edges = append(edges, circle(s, 12, func(a, b float64) Vec3 { return Vec3{X: a, Y: b} })...)
		edges = append(edges, circle(s, 12, func(a, b float64) Vec3 { return Vec3{X: a, Z: b} })...)
		return append(edges, circle(s, 12, func(a, b float64) Vec3 { return Vec3{Y: a, Z: b} })...)
	case lessons.ShapeRing:
		return circle(s, 24, func(a, b float64) Vec3 { return Vec3{X: a, Z: b} })
	case lessons.ShapeArrow:
		tip := Vec3{Y: s}
		return [][2]Vec3{
			{{Y: -s}, tip},
			{tip, {X: -s / 3, Y: s * 0.6}},
			{tip, {X: s / 3, Y: s * 0.6}},
		}
	}
	return nil
}

func circle(r float64, segments int, plane func(a, b float64) Vec3) [][2]Vec3 {
	edges := make([][2]Vec3, segments)
	for i := 0; i < segments; i++ {
		a1 := 2 * math.Pi * float64(i) / float64(segments)
		a2 := 2 * math.Pi * float64(i+1) / float64(segments)
		edges[i] = [2]Vec3{
			plane(r*math.Cos(a1), r*math.Sin(a1)),
			plane(r*math.Cos(a2), r*math.Sin(a2)),
		}
	}
	return edges
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	dashed         bool
}

// Render3D draws w onto c back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Dashed})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.Line(e.x1, e.y1, e.x2, e.y2, e.dashed)
	}
}
