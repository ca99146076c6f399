package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// SweepHit describes the first contact of a shape moved from→to. Point is on
// the surface of the body that was hit.
type SweepHit struct {
	Body     *Body
	Point    rl.Vector3
	Normal   rl.Vector3
	Fraction float32
}

// ConvexSweepTest moves shape linearly from→to and returns the closest body it
// would touch. Overlaps present at the start of the sweep are not reported.
func (w *World) ConvexSweepTest(shape ConvexShape, from, to rl.Vector3, rot rl.Quaternion, filter QueryFilter) (SweepHit, bool) {
	dir := rl.Vector3Subtract(to, from)
	closest := SweepHit{Fraction: 1}
	hit := false

	for _, b := range w.order {
		if !filter.accepts(b) {
			continue
		}
		t, normal, ok := sweepBody(shape, from, dir, b)
		if !ok || t > closest.Fraction || (hit && t == closest.Fraction) {
			continue
		}
		center := rl.Vector3Add(from, rl.Vector3Scale(dir, t))
		closest = SweepHit{
			Body:     b,
			Point:    rl.Vector3Subtract(center, rl.Vector3Scale(normal, supportDistance(shape, normal))),
			Normal:   normal,
			Fraction: t,
		}
		hit = true
	}
	return closest, hit
}

// sweepBody casts the center of shape against the target grown by shape.
// Sphere/sphere and box/box are exact. Mixed pairs grow the target into a box,
// so hits near corners come slightly early. Rotated boxes are swept against
// their enclosing bounds.
func sweepBody(shape ConvexShape, origin, dir rl.Vector3, b *Body) (float32, rl.Vector3, bool) {
	switch target := b.Shape.(type) {
	case *Sphere:
		if s, ok := shape.(*Sphere); ok {
			return raySphere(origin, dir, b.Position, target.Radius+s.Radius)
		}
		return rayAABB(origin, dir, NewAABBFromCenter(b.Position, grownBy(shape, target.Radius)))
	case *Box:
		bounds := target.Bounds(b.Position, b.Rotation)
		return rayAABB(origin, dir, bounds.Expand(grownBy(shape, 0)))
	case *Compound:
		best, bestNormal, found := float32(0), rl.Vector3{}, false
		for _, child := range target.Children {
			body := Body{Shape: child.Shape, Position: childPosition(b.Position, b.Rotation, child.Offset), Rotation: b.Rotation}
			if t, n, ok := sweepBody(shape, origin, dir, &body); ok && (!found || t < best) {
				best, bestNormal, found = t, n, true
			}
		}
		return best, bestNormal, found
	case *TriangleMesh:
		best, bestNormal, found := float32(0), rl.Vector3{}, false
		for i := range target.Triangles {
			tri := target.worldTriangle(i, b.Position)
			n := tri.Normal()
			if rl.Vector3DotProduct(n, dir) > 0 {
				n = rl.Vector3Negate(n)
			}
			off := rl.Vector3Scale(n, supportDistance(shape, n))
			moved := Triangle{A: rl.Vector3Add(tri.A, off), B: rl.Vector3Add(tri.B, off), C: rl.Vector3Add(tri.C, off)}
			if t, hn, ok := rayTriangle(origin, dir, moved); ok && (!found || t < best) {
				best, bestNormal, found = t, hn, true
			}
		}
		return best, bestNormal, found
	}
	return 0, rl.Vector3{}, false
}

// grownBy returns the half extents of the moving shape plus r on every axis.
func grownBy(shape ConvexShape, r float32) rl.Vector3 {
	var h rl.Vector3
	switch s := shape.(type) {
	case *Box:
		h = absVec(s.HalfExtents)
	default:
		br := shape.BoundingRadius()
		h = rl.Vector3{X: br, Y: br, Z: br}
	}
	return rl.Vector3{X: h.X + r, Y: h.Y + r, Z: h.Z + r}
}
