package physics

import rl "github.com/gen2brain/raylib-go/raylib"

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, halfExtents rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, halfExtents),
		Max: rl.Vector3Add(center, halfExtents),
	}
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) HalfExtents() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Subtract(a.Max, a.Min), 0.5)
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) Contains(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Union returns the smallest AABB containing both boxes.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: rl.Vector3{X: min(a.Min.X, b.Min.X), Y: min(a.Min.Y, b.Min.Y), Z: min(a.Min.Z, b.Min.Z)},
		Max: rl.Vector3{X: max(a.Max.X, b.Max.X), Y: max(a.Max.Y, b.Max.Y), Z: max(a.Max.Z, b.Max.Z)},
	}
}

// Expand grows the box by r on every side.
func (a AABB) Expand(r rl.Vector3) AABB {
	return AABB{Min: rl.Vector3Subtract(a.Min, r), Max: rl.Vector3Add(a.Max, r)}
}

// ClosestPoint clamps p into the box.
func (a AABB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: clamp(p.X, a.Min.X, a.Max.X),
		Y: clamp(p.Y, a.Min.Y, a.Max.Y),
		Z: clamp(p.Z, a.Min.Z, a.Max.Z),
	}
}

// Overlap returns the per-axis overlap of a and b. Negative components are
// gaps between the boxes on that axis.
func (a AABB) Overlap(b AABB) rl.Vector3 {
	return rl.Vector3{
		X: min(a.Max.X, b.Max.X) - max(a.Min.X, b.Min.X),
		Y: min(a.Max.Y, b.Max.Y) - max(a.Min.Y, b.Min.Y),
		Z: min(a.Max.Z, b.Max.Z) - max(a.Min.Z, b.Min.Z),
	}
}

// Resolve returns the minimum translation vector to push 'a' out of 'b'.
// Returns zero vector if no overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3Zero()
	}
	axis, sign, depth := leastPenetrationAxis(a, b)
	var out rl.Vector3
	setAxis(&out, axis, sign*depth)
	return out
}

// leastPenetrationAxis picks the axis with the smallest overlap and the
// direction that moves a away from b along it.
func leastPenetrationAxis(a, b AABB) (axis int, sign float32, depth float32) {
	o := a.Overlap(b)
	axis, depth = 0, o.X
	if o.Y < depth {
		axis, depth = 1, o.Y
	}
	if o.Z < depth {
		axis, depth = 2, o.Z
	}
	sign = 1
	if getAxis(a.Center(), axis) < getAxis(b.Center(), axis) {
		sign = -1
	}
	return axis, sign, depth
}
