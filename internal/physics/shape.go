package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type ShapeType int

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapeCompound
	ShapeTriangleMesh
)

func (t ShapeType) String() string {
	switch t {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCompound:
		return "compound"
	case ShapeTriangleMesh:
		return "mesh"
	}
	return "unknown"
}

// Shape is the collision geometry attached to a Body.
type Shape interface {
	Type() ShapeType
	IsConvex() bool
	IsCompound() bool
	// Bounds returns the world-space AABB of the shape placed at pos with rot.
	Bounds(pos rl.Vector3, rot rl.Quaternion) AABB
}

// ConvexShape is a shape that can be swept through the world.
type ConvexShape interface {
	Shape
	// BoundingRadius is the radius of a sphere around the shape origin that
	// contains the whole shape.
	BoundingRadius() float32
}

type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Type() ShapeType         { return ShapeSphere }
func (s *Sphere) IsConvex() bool          { return true }
func (s *Sphere) IsCompound() bool        { return false }
func (s *Sphere) BoundingRadius() float32 { return s.Radius }

func (s *Sphere) Bounds(pos rl.Vector3, _ rl.Quaternion) AABB {
	return NewAABBFromCenter(pos, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
}

// Box is oriented by its body's rotation. Against triangle meshes it collides
// through its enclosing bounds.
type Box struct {
	HalfExtents rl.Vector3
}

func NewBox(halfExtents rl.Vector3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Type() ShapeType  { return ShapeBox }
func (b *Box) IsConvex() bool   { return true }
func (b *Box) IsCompound() bool { return false }

func (b *Box) BoundingRadius() float32 {
	return rl.Vector3Length(b.HalfExtents)
}

func (b *Box) Bounds(pos rl.Vector3, rot rl.Quaternion) AABB {
	if !isAligned(rot) {
		return NewOBB(pos, b.HalfExtents, rot).Bounds()
	}
	return NewAABBFromCenter(pos, absVec(b.HalfExtents))
}

// ChildShape is a convex shape placed at a local offset inside a Compound.
type ChildShape struct {
	Offset rl.Vector3
	Shape  ConvexShape
}

type Compound struct {
	Children []ChildShape
}

func NewCompound(children ...ChildShape) *Compound {
	return &Compound{Children: children}
}

func (c *Compound) Type() ShapeType  { return ShapeCompound }
func (c *Compound) IsConvex() bool   { return false }
func (c *Compound) IsCompound() bool { return true }

func (c *Compound) Bounds(pos rl.Vector3, rot rl.Quaternion) AABB {
	if len(c.Children) == 0 {
		return AABB{Min: pos, Max: pos}
	}
	var out AABB
	for i, child := range c.Children {
		b := child.Shape.Bounds(childPosition(pos, rot, child.Offset), rot)
		if i == 0 {
			out = b
		} else {
			out = out.Union(b)
		}
	}
	return out
}

func childPosition(pos rl.Vector3, rot rl.Quaternion, offset rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(offset, rot))
}

type Triangle struct {
	A, B, C rl.Vector3
}

// Normal returns the unit face normal following counter-clockwise winding.
func (t Triangle) Normal() rl.Vector3 {
	return rl.Vector3Normalize(rl.Vector3CrossProduct(
		rl.Vector3Subtract(t.B, t.A),
		rl.Vector3Subtract(t.C, t.A),
	))
}

// TriangleMesh is concave static geometry. Triangles are in the body's local
// space; only translation is applied when placing them.
type TriangleMesh struct {
	Triangles []Triangle
	local     AABB
}

func NewTriangleMesh(tris []Triangle) *TriangleMesh {
	m := &TriangleMesh{Triangles: tris}
	for i, t := range tris {
		b := AABB{Min: t.A, Max: t.A}.Union(AABB{Min: t.B, Max: t.B}).Union(AABB{Min: t.C, Max: t.C})
		if i == 0 {
			m.local = b
		} else {
			m.local = m.local.Union(b)
		}
	}
	return m
}

// NewPlaneMesh builds a two-triangle horizontal quad centered on the origin.
func NewPlaneMesh(width, depth float32) *TriangleMesh {
	hw, hd := width/2, depth/2
	a := rl.Vector3{X: -hw, Z: -hd}
	b := rl.Vector3{X: -hw, Z: hd}
	c := rl.Vector3{X: hw, Z: hd}
	d := rl.Vector3{X: hw, Z: -hd}
	return NewTriangleMesh([]Triangle{{A: a, B: b, C: c}, {A: a, B: c, C: d}})
}

func (m *TriangleMesh) Type() ShapeType  { return ShapeTriangleMesh }
func (m *TriangleMesh) IsConvex() bool   { return false }
func (m *TriangleMesh) IsCompound() bool { return false }

func (m *TriangleMesh) Bounds(pos rl.Vector3, _ rl.Quaternion) AABB {
	return AABB{Min: rl.Vector3Add(m.local.Min, pos), Max: rl.Vector3Add(m.local.Max, pos)}
}

func (m *TriangleMesh) worldTriangle(i int, pos rl.Vector3) Triangle {
	t := m.Triangles[i]
	return Triangle{
		A: rl.Vector3Add(t.A, pos),
		B: rl.Vector3Add(t.B, pos),
		C: rl.Vector3Add(t.C, pos),
	}
}

func absVec(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: abs(v.X), Y: abs(v.Y), Z: abs(v.Z)}
}

func sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
