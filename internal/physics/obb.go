package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB is a box with its own orientation. Boxes on rotated bodies collide
// through it; unrotated boxes keep the cheaper AABB paths.
type OBB struct {
	Center   rl.Vector3
	HalfSize rl.Vector3
	Axes     [3]rl.Vector3
}

// NewOBB orients a box of the given half extents by rot.
func NewOBB(center, half rl.Vector3, rot rl.Quaternion) OBB {
	if isAligned(rot) {
		rot = rl.QuaternionIdentity()
	}
	return OBB{
		Center:   center,
		HalfSize: absVec(half),
		Axes: [3]rl.Vector3{
			rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, rot),
			rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, rot),
			rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, rot),
		},
	}
}

// isAligned reports whether rot leaves the axes where they are. The zero
// quaternion counts as no rotation.
func isAligned(rot rl.Quaternion) bool {
	return abs(rot.X)+abs(rot.Y)+abs(rot.Z) < epsilon
}

func (o OBB) half(i int) float32 {
	return getAxis(o.HalfSize, i)
}

// Bounds is the smallest AABB enclosing the box.
func (o OBB) Bounds() AABB {
	var ext rl.Vector3
	for i, axis := range o.Axes {
		h := o.half(i)
		ext.X += abs(axis.X) * h
		ext.Y += abs(axis.Y) * h
		ext.Z += abs(axis.Z) * h
	}
	return NewAABBFromCenter(o.Center, ext)
}

// local is the box at the origin of its own frame.
func (o OBB) local() AABB {
	return AABB{Min: rl.Vector3Negate(o.HalfSize), Max: o.HalfSize}
}

func (o OBB) toLocal(p rl.Vector3) rl.Vector3 {
	return o.toLocalDir(rl.Vector3Subtract(p, o.Center))
}

func (o OBB) toLocalDir(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: rl.Vector3DotProduct(v, o.Axes[0]),
		Y: rl.Vector3DotProduct(v, o.Axes[1]),
		Z: rl.Vector3DotProduct(v, o.Axes[2]),
	}
}

func (o OBB) toWorld(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(o.Center, o.toWorldDir(p))
}

func (o OBB) toWorldDir(v rl.Vector3) rl.Vector3 {
	out := rl.Vector3Scale(o.Axes[0], v.X)
	out = rl.Vector3Add(out, rl.Vector3Scale(o.Axes[1], v.Y))
	return rl.Vector3Add(out, rl.Vector3Scale(o.Axes[2], v.Z))
}

// ClosestPoint returns the point of the box nearest to p.
func (o OBB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return o.toWorld(o.local().ClosestPoint(o.toLocal(p)))
}

// project is the box's half length along unit axis.
func (o OBB) project(axis rl.Vector3) float32 {
	var r float32
	for i, a := range o.Axes {
		r += o.half(i) * abs(rl.Vector3DotProduct(a, axis))
	}
	return r
}

// support returns the point of the box furthest along dir. Axes that are
// perpendicular to dir contribute nothing, so a face-on query lands on the
// face center.
func (o OBB) support(dir rl.Vector3) rl.Vector3 {
	var local rl.Vector3
	for i, a := range o.Axes {
		d := rl.Vector3DotProduct(dir, a)
		switch {
		case d > 1e-3:
			setAxis(&local, i, o.half(i))
		case d < -1e-3:
			setAxis(&local, i, -o.half(i))
		}
	}
	return o.toWorld(local)
}

// Penetration runs the separating axis test over the 15 candidate axes and
// returns the axis of least penetration. normal points from b toward a and
// depth goes negative for boxes that are apart but within the contact
// breaking threshold. fromA reports whether the axis is a face normal of a.
func (a OBB) Penetration(b OBB) (normal rl.Vector3, depth float32, fromA bool, ok bool) {
	t := rl.Vector3Subtract(a.Center, b.Center)
	depth = float32(math.MaxFloat32)

	test := func(axis rl.Vector3, ownedByA bool) bool {
		l := rl.Vector3Length(axis)
		if l < 1e-4 {
			return true
		}
		axis = rl.Vector3Scale(axis, 1/l)
		dist := rl.Vector3DotProduct(t, axis)
		d := a.project(axis) + b.project(axis) - abs(dist)
		if d < -ContactBreakingThreshold {
			return false
		}
		if d < depth {
			if dist < 0 {
				axis = rl.Vector3Negate(axis)
			}
			normal, depth, fromA = axis, d, ownedByA
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(a.Axes[i], true) || !test(b.Axes[i], false) {
			return rl.Vector3{}, 0, false, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(rl.Vector3CrossProduct(a.Axes[i], b.Axes[j]), false) {
				return rl.Vector3{}, 0, false, false
			}
		}
	}
	return normal, depth, fromA, true
}

// IntersectsOBB reports whether the two boxes overlap.
func (a OBB) IntersectsOBB(b OBB) bool {
	_, depth, _, ok := a.Penetration(b)
	return ok && depth >= 0
}

// IntersectsSphere reports whether the sphere touches the box.
func (o OBB) IntersectsSphere(center rl.Vector3, radius float32) bool {
	return rl.Vector3Distance(o.ClosestPoint(center), center) <= radius
}
