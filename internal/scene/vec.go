package scene

import "math"

type Vec3 struct {
	X, Y, Z float64
}

// V builds a Vec3 from a layout triple.
func V(p [3]float64) Vec3 { return Vec3{p[0], p[1], p[2]} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Mul(o Vec3) Vec3      { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

func (v Vec3) finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rotate applies Euler rotation r (radians, X then Y then Z) to v.
func (v Vec3) Rotate(r Vec3) Vec3 {
	cx, sx := math.Cos(r.X), math.Sin(r.X)
	v.Y, v.Z = v.Y*cx-v.Z*sx, v.Y*sx+v.Z*cx
	cy, sy := math.Cos(r.Y), math.Sin(r.Y)
	v.X, v.Z = v.X*cy+v.Z*sy, -v.X*sy+v.Z*cy
	cz, sz := math.Cos(r.Z), math.Sin(r.Z)
	v.X, v.Y = v.X*cz-v.Y*sz, v.X*sz+v.Y*cz
	return v
}
