// Package scene holds the 3D object graph a lesson animates and the binder
// that maps metric records onto it.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/pointerquest/internal/lessons"
)

// MinScale is the smallest scale component the binder will write.
const MinScale = 0.1

// A pulsing node's thickness swings by ThicknessSwing around
// BaseThickness once per cycle.
const (
	BaseThickness  = 3.0
	ThicknessSwing = 2.0
)

var ErrInvalidGraph = errors.New("scene: invalid graph")

// Node is one object of the scene: a mesh, or a group when it has children.
type Node struct {
	Name     string
	Shape    lessons.Shape
	Color    string
	Size     float64
	Position Vec3
	Rotation Vec3
	Scale    Vec3
	Opacity  float64
	Visible  bool
	// Spin is added to Rotation.Y every applied frame.
	Spin   float64
	Memory lessons.MemoryKind
	// Pulse is the animation rate in cycles per lesson second. Progress
	// and Thickness are derived from it and the record time.
	Pulse     float64
	Progress  float64
	Thickness float64
	Children  []*Node

	base Vec3
}

func newNode(name string, shape lessons.Shape, color string, size float64, pos Vec3) *Node {
	return &Node{
		Name:      name,
		Shape:     shape,
		Color:     color,
		Size:      size,
		Position:  pos,
		Scale:     Vec3{1, 1, 1},
		Opacity:   1,
		Visible:   true,
		Thickness: BaseThickness,
		base:      pos,
	}
}

func (n *Node) tag(ns lessons.NodeSpec) {
	n.Memory = ns.Memory
	n.Pulse = ns.Pulse
}

// PulseAt returns the cycle progress in [0,1) and the thickness of a node
// pulsing at rate after t lesson seconds.
func PulseAt(rate, t float64) (progress, thickness float64) {
	if rate <= 0 || t <= 0 {
		return 0, BaseThickness
	}
	_, progress = math.Modf(rate * t)
	return progress, BaseThickness + ThicknessSwing*math.Sin(2*math.Pi*progress)
}

// Local maps a point from node space into its parent's space.
func (n *Node) Local(p Vec3) Vec3 {
	return p.Mul(n.Scale).Rotate(n.Rotation).Add(n.Position)
}

type Graph struct {
	Root  *Node
	index map[string]*Node
}

// Build creates the graph for a layout. Replicated nodes become groups whose
// children sit on a circle in the XZ plane and are named "<name>/<i>".
func Build(layout lessons.Layout) *Graph {
	root := newNode("root", lessons.ShapeGroup, "", 0, Vec3{})
	g := &Graph{Root: root, index: map[string]*Node{"root": root}}

	for _, ns := range layout.Nodes {
		parent := root
		if p, ok := g.index[ns.Parent]; ok && ns.Parent != "" {
			parent = p
		}

		shape, color := ns.Style()
		var n *Node
		if ns.Replicas > 0 {
			n = newNode(ns.Name, lessons.ShapeGroup, color, ns.Size, V(ns.Position))
			for i := 0; i < ns.Replicas; i++ {
				a := 2 * math.Pi * float64(i) / float64(ns.Replicas)
				pos := Vec3{ns.Radius * math.Cos(a), 0, ns.Radius * math.Sin(a)}
				child := newNode(fmt.Sprintf("%s/%d", ns.Name, i), shape, color, ns.Size, pos)
				child.Rotation.Y = -a
				child.tag(ns)
				n.Children = append(n.Children, child)
				g.index[child.Name] = child
			}
		} else {
			n = newNode(ns.Name, shape, color, ns.Size, V(ns.Position))
		}
		n.tag(ns)
		n.Spin = ns.Spin
		parent.Children = append(parent.Children, n)
		g.index[n.Name] = n
	}
	return g
}

func (g *Graph) Find(name string) *Node {
	if g == nil {
		return nil
	}
	return g.index[name]
}

// Walk visits every node depth-first with the function mapping node-local
// points to world space.
func (g *Graph) Walk(fn func(n *Node, toWorld func(Vec3) Vec3)) {
	if g == nil || g.Root == nil {
		return
	}
	var visit func(n *Node, parent func(Vec3) Vec3)
	visit = func(n *Node, parent func(Vec3) Vec3) {
		toWorld := func(p Vec3) Vec3 { return parent(n.Local(p)) }
		fn(n, toWorld)
		for _, c := range n.Children {
			visit(c, toWorld)
		}
	}
	visit(g.Root, func(p Vec3) Vec3 { return p })
}

// Len returns the number of nodes including the root.
func (g *Graph) Len() int {
	n := 0
	g.Walk(func(*Node, func(Vec3) Vec3) { n++ })
	return n
}

// Valid reports the first node whose transform or material is unusable by a
// renderer.
func (g *Graph) Valid() error {
	var err error
	g.Walk(func(n *Node, _ func(Vec3) Vec3) {
		if err != nil {
			return
		}
		switch {
		case !n.Position.finite() || !n.Rotation.finite() || !n.Scale.finite():
			err = fmt.Errorf("%w: node %s has a non-finite transform", ErrInvalidGraph, n.Name)
		case n.Scale.X <= 0 || n.Scale.Y <= 0 || n.Scale.Z <= 0:
			err = fmt.Errorf("%w: node %s has non-positive scale %v", ErrInvalidGraph, n.Name, n.Scale)
		case n.Opacity < 0 || n.Opacity > 1 || math.IsNaN(n.Opacity):
			err = fmt.Errorf("%w: node %s has opacity %g", ErrInvalidGraph, n.Name, n.Opacity)
		case !(n.Thickness > 0) || math.IsInf(n.Thickness, 0):
			err = fmt.Errorf("%w: node %s has thickness %g", ErrInvalidGraph, n.Name, n.Thickness)
		}
	})
	return err
}
