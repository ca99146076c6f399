package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RayHit describes where a ray segment first touches a body. Fraction is the
// position along from→to in [0, 1].
type RayHit struct {
	Body     *Body
	Point    rl.Vector3
	Normal   rl.Vector3
	Fraction float32
}

// RayTestClosest returns the closest hit along the segment from→to.
func (w *World) RayTestClosest(from, to rl.Vector3, filter QueryFilter) (RayHit, bool) {
	dir := rl.Vector3Subtract(to, from)
	closest := RayHit{Fraction: 1}
	hit := false

	for _, b := range w.order {
		if !filter.accepts(b) {
			continue
		}
		t, normal, ok := rayBody(from, dir, b)
		if !ok || t > closest.Fraction || (hit && t == closest.Fraction) {
			continue
		}
		closest = RayHit{
			Body:     b,
			Point:    rl.Vector3Add(from, rl.Vector3Scale(dir, t)),
			Normal:   normal,
			Fraction: t,
		}
		hit = true
	}
	return closest, hit
}

// RayTestAll returns one hit per body crossed by the segment, in body order.
// Callers must not rely on the hits being sorted by distance.
func (w *World) RayTestAll(from, to rl.Vector3, filter QueryFilter) []RayHit {
	dir := rl.Vector3Subtract(to, from)
	var hits []RayHit
	for _, b := range w.order {
		if !filter.accepts(b) {
			continue
		}
		t, normal, ok := rayBody(from, dir, b)
		if !ok {
			continue
		}
		hits = append(hits, RayHit{
			Body:     b,
			Point:    rl.Vector3Add(from, rl.Vector3Scale(dir, t)),
			Normal:   normal,
			Fraction: t,
		})
	}
	return hits
}

func rayBody(origin, dir rl.Vector3, b *Body) (float32, rl.Vector3, bool) {
	switch s := b.Shape.(type) {
	case *Sphere:
		return raySphere(origin, dir, b.Position, s.Radius)
	case *Box:
		if !isAligned(b.Rotation) {
			box := NewOBB(b.Position, s.HalfExtents, b.Rotation)
			t, n, ok := rayAABB(box.toLocal(origin), box.toLocalDir(dir), box.local())
			return t, box.toWorldDir(n), ok
		}
		return rayAABB(origin, dir, s.Bounds(b.Position, b.Rotation))
	case *Compound:
		best, bestNormal, found := float32(0), rl.Vector3{}, false
		for _, child := range s.Children {
			body := Body{Shape: child.Shape, Position: childPosition(b.Position, b.Rotation, child.Offset), Rotation: b.Rotation}
			if t, n, ok := rayBody(origin, dir, &body); ok && (!found || t < best) {
				best, bestNormal, found = t, n, true
			}
		}
		return best, bestNormal, found
	case *TriangleMesh:
		best, bestNormal, found := float32(0), rl.Vector3{}, false
		for i := range s.Triangles {
			if t, n, ok := rayTriangle(origin, dir, s.worldTriangle(i, b.Position)); ok && (!found || t < best) {
				best, bestNormal, found = t, n, true
			}
		}
		return best, bestNormal, found
	}
	return 0, rl.Vector3{}, false
}

// raySphere reports entry hits only; a segment starting inside the sphere misses.
func raySphere(origin, dir, center rl.Vector3, radius float32) (float32, rl.Vector3, bool) {
	oc := rl.Vector3Subtract(origin, center)
	a := rl.Vector3DotProduct(dir, dir)
	if a < epsilon {
		return 0, rl.Vector3{}, false
	}
	b := 2.0 * rl.Vector3DotProduct(oc, dir)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius
	if c < 0 {
		return 0, rl.Vector3{}, false
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, rl.Vector3{}, false
	}

	t := (-b - sqrt(discriminant)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, rl.Vector3{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
	return t, rl.Vector3Normalize(rl.Vector3Subtract(point, center)), true
}

// rayAABB is a slab test. Segments starting inside the box miss.
func rayAABB(origin, dir rl.Vector3, box AABB) (float32, rl.Vector3, bool) {
	tmin, tmax := float32(-1e30), float32(1e30)
	axis, sign := -1, float32(0)

	for i := 0; i < 3; i++ {
		o, d := getAxis(origin, i), getAxis(dir, i)
		lo, hi := getAxis(box.Min, i), getAxis(box.Max, i)
		if abs(d) < epsilon {
			if o < lo || o > hi {
				return 0, rl.Vector3{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, i, s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, rl.Vector3{}, false
		}
	}

	if axis < 0 || tmin < 0 || tmin > 1 {
		return 0, rl.Vector3{}, false
	}

	var normal rl.Vector3
	setAxis(&normal, axis, sign)
	return tmin, normal, true
}

// rayTriangle is Möller–Trumbore, double sided. The normal faces the ray origin.
func rayTriangle(origin, dir rl.Vector3, tri Triangle) (float32, rl.Vector3, bool) {
	e1 := rl.Vector3Subtract(tri.B, tri.A)
	e2 := rl.Vector3Subtract(tri.C, tri.A)
	p := rl.Vector3CrossProduct(dir, e2)
	det := rl.Vector3DotProduct(e1, p)
	if abs(det) < epsilon {
		return 0, rl.Vector3{}, false
	}
	inv := 1 / det

	s := rl.Vector3Subtract(origin, tri.A)
	u := rl.Vector3DotProduct(s, p) * inv
	if u < 0 || u > 1 {
		return 0, rl.Vector3{}, false
	}
	q := rl.Vector3CrossProduct(s, e1)
	v := rl.Vector3DotProduct(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, rl.Vector3{}, false
	}

	t := rl.Vector3DotProduct(e2, q) * inv
	if t < 0 || t > 1 {
		return 0, rl.Vector3{}, false
	}

	n := tri.Normal()
	if rl.Vector3DotProduct(n, dir) > 0 {
		n = rl.Vector3Negate(n)
	}
	return t, n, true
}
