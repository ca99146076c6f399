package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// ContactBreakingThreshold keeps touching or nearly touching shapes in the
// manifold list so resting contacts do not flicker between frames.
const ContactBreakingThreshold float32 = 0.02

// ContactPoint follows the usual rigid-body convention: NormalWorldOnB points
// from body B toward body A, and Distance is negative while penetrating.
type ContactPoint struct {
	PositionWorldOnA rl.Vector3
	PositionWorldOnB rl.Vector3
	NormalWorldOnB   rl.Vector3
	Distance         float32

	// TriangleA/TriangleB index the mesh triangle that produced the contact,
	// or -1 when that side is not a mesh.
	TriangleA int
	TriangleB int
}

// Manifold holds every contact point between two bodies for one step.
type Manifold struct {
	BodyA  BodyID
	BodyB  BodyID
	Points []ContactPoint
}

func (m *Manifold) NumContacts() int {
	return len(m.Points)
}

// placed is a convex piece of a body positioned in world space.
type placed struct {
	shape ConvexShape
	pos   rl.Vector3
	rot   rl.Quaternion
}

// flatten splits a body into convex pieces. Meshes are returned separately.
func flatten(b *Body) ([]placed, *TriangleMesh) {
	switch s := b.Shape.(type) {
	case *Compound:
		out := make([]placed, 0, len(s.Children))
		for _, child := range s.Children {
			out = append(out, placed{shape: child.Shape, pos: childPosition(b.Position, b.Rotation, child.Offset), rot: b.Rotation})
		}
		return out, nil
	case *TriangleMesh:
		return nil, s
	case ConvexShape:
		return []placed{{shape: s, pos: b.Position, rot: b.Rotation}}, nil
	}
	return nil, nil
}

// generateContacts runs the narrow phase for one candidate pair.
func generateContacts(a, b *Body) []ContactPoint {
	piecesA, meshA := flatten(a)
	piecesB, meshB := flatten(b)

	var points []ContactPoint
	switch {
	case meshA != nil && meshB != nil:
		return nil
	case meshB != nil:
		for _, pa := range piecesA {
			points = append(points, convexVsMesh(pa, meshB, b.Position)...)
		}
	case meshA != nil:
		for _, pb := range piecesB {
			for _, cp := range convexVsMesh(pb, meshA, a.Position) {
				points = append(points, flipContact(cp))
			}
		}
	default:
		for _, pa := range piecesA {
			for _, pb := range piecesB {
				points = append(points, convexVsConvex(pa, pb)...)
			}
		}
	}
	return points
}

func flipContact(cp ContactPoint) ContactPoint {
	return ContactPoint{
		PositionWorldOnA: cp.PositionWorldOnB,
		PositionWorldOnB: cp.PositionWorldOnA,
		NormalWorldOnB:   rl.Vector3Negate(cp.NormalWorldOnB),
		Distance:         cp.Distance,
		TriangleA:        cp.TriangleB,
		TriangleB:        cp.TriangleA,
	}
}

func convexVsConvex(a, b placed) []ContactPoint {
	switch sa := a.shape.(type) {
	case *Sphere:
		switch sb := b.shape.(type) {
		case *Sphere:
			return sphereVsSphere(a.pos, sa.Radius, b.pos, sb.Radius)
		case *Box:
			if !isAligned(b.rot) {
				return sphereVsOBB(a.pos, sa.Radius, NewOBB(b.pos, sb.HalfExtents, b.rot))
			}
			return sphereVsBox(a.pos, sa.Radius, sb.Bounds(b.pos, rl.Quaternion{}))
		}
	case *Box:
		if !isAligned(a.rot) {
			obbA := NewOBB(a.pos, sa.HalfExtents, a.rot)
			switch sb := b.shape.(type) {
			case *Sphere:
				return flipAll(sphereVsOBB(b.pos, sb.Radius, obbA))
			case *Box:
				return obbVsOBB(obbA, NewOBB(b.pos, sb.HalfExtents, b.rot))
			}
			return nil
		}
		boxA := sa.Bounds(a.pos, rl.Quaternion{})
		switch sb := b.shape.(type) {
		case *Sphere:
			return flipAll(sphereVsBox(b.pos, sb.Radius, boxA))
		case *Box:
			if !isAligned(b.rot) {
				return obbVsOBB(NewOBB(a.pos, sa.HalfExtents, a.rot), NewOBB(b.pos, sb.HalfExtents, b.rot))
			}
			return boxVsBox(boxA, sb.Bounds(b.pos, rl.Quaternion{}))
		}
	}
	return nil
}

func flipAll(points []ContactPoint) []ContactPoint {
	for i := range points {
		points[i] = flipContact(points[i])
	}
	return points
}

func noTriangle(cp ContactPoint) ContactPoint {
	cp.TriangleA = -1
	cp.TriangleB = -1
	return cp
}

func sphereVsSphere(pa rl.Vector3, ra float32, pb rl.Vector3, rb float32) []ContactPoint {
	d := rl.Vector3Subtract(pa, pb)
	dist := rl.Vector3Length(d)
	if dist > ra+rb+ContactBreakingThreshold {
		return nil
	}

	n := rl.Vector3{Y: 1}
	if dist > epsilon {
		n = rl.Vector3Scale(d, 1/dist)
	}

	return []ContactPoint{noTriangle(ContactPoint{
		PositionWorldOnA: rl.Vector3Subtract(pa, rl.Vector3Scale(n, ra)),
		PositionWorldOnB: rl.Vector3Add(pb, rl.Vector3Scale(n, rb)),
		NormalWorldOnB:   n,
		Distance:         dist - ra - rb,
	})}
}

// sphereVsBox treats the sphere as body A and the box as body B.
func sphereVsBox(center rl.Vector3, radius float32, box AABB) []ContactPoint {
	closest := box.ClosestPoint(center)
	d := rl.Vector3Subtract(center, closest)
	dist := rl.Vector3Length(d)
	if dist > radius+ContactBreakingThreshold {
		return nil
	}

	if dist <= epsilon {
		// Center is inside the box: push out through the nearest face.
		axis, face, depth := nearestFace(box, center)
		var n rl.Vector3
		setAxis(&n, axis, 1)
		if face == getAxis(box.Min, axis) {
			setAxis(&n, axis, -1)
		}
		onB := center
		setAxis(&onB, axis, face)
		return []ContactPoint{noTriangle(ContactPoint{
			PositionWorldOnA: rl.Vector3Subtract(center, rl.Vector3Scale(n, radius)),
			PositionWorldOnB: onB,
			NormalWorldOnB:   n,
			Distance:         -(depth + radius),
		})}
	}

	n := rl.Vector3Scale(d, 1/dist)
	return []ContactPoint{noTriangle(ContactPoint{
		PositionWorldOnA: rl.Vector3Subtract(center, rl.Vector3Scale(n, radius)),
		PositionWorldOnB: closest,
		NormalWorldOnB:   n,
		Distance:         dist - radius,
	})}
}

// sphereVsOBB runs sphereVsBox in the box's own frame and maps the
// contacts back to world space.
func sphereVsOBB(center rl.Vector3, radius float32, box OBB) []ContactPoint {
	points := sphereVsBox(box.toLocal(center), radius, box.local())
	for i := range points {
		points[i].PositionWorldOnA = box.toWorld(points[i].PositionWorldOnA)
		points[i].PositionWorldOnB = box.toWorld(points[i].PositionWorldOnB)
		points[i].NormalWorldOnB = box.toWorldDir(points[i].NormalWorldOnB)
	}
	return points
}

// obbVsOBB produces a single contact on the incident box: the deepest point
// of whichever box does not own the separating face.
func obbVsOBB(a, b OBB) []ContactPoint {
	n, depth, fromA, ok := a.Penetration(b)
	if !ok {
		return nil
	}

	var onA, onB rl.Vector3
	if fromA {
		onB = b.support(n)
		onA = rl.Vector3Subtract(onB, rl.Vector3Scale(n, depth))
	} else {
		onA = a.support(rl.Vector3Negate(n))
		onB = rl.Vector3Add(onA, rl.Vector3Scale(n, depth))
	}
	return []ContactPoint{noTriangle(ContactPoint{
		PositionWorldOnA: onA,
		PositionWorldOnB: onB,
		NormalWorldOnB:   n,
		Distance:         -depth,
	})}
}

// nearestFace finds the face of box closest to an interior point p.
func nearestFace(box AABB, p rl.Vector3) (axis int, face float32, depth float32) {
	depth = -1
	for i := 0; i < 3; i++ {
		lo, hi, c := getAxis(box.Min, i), getAxis(box.Max, i), getAxis(p, i)
		if d := c - lo; depth < 0 || d < depth {
			axis, face, depth = i, lo, d
		}
		if d := hi - c; d < depth {
			axis, face, depth = i, hi, d
		}
	}
	return axis, face, depth
}

// boxVsBox produces up to four points at the corners of the overlap face.
func boxVsBox(a, b AABB) []ContactPoint {
	if !a.Expand(rl.Vector3{X: ContactBreakingThreshold, Y: ContactBreakingThreshold, Z: ContactBreakingThreshold}).Intersects(b) {
		return nil
	}

	axis, sign, depth := leastPenetrationAxis(a, b)
	var n rl.Vector3
	setAxis(&n, axis, sign)

	faceB := getAxis(b.Max, axis)
	if sign < 0 {
		faceB = getAxis(b.Min, axis)
	}

	u, v := (axis+1)%3, (axis+2)%3
	lo := rl.Vector3{X: max(a.Min.X, b.Min.X), Y: max(a.Min.Y, b.Min.Y), Z: max(a.Min.Z, b.Min.Z)}
	hi := rl.Vector3{X: min(a.Max.X, b.Max.X), Y: min(a.Max.Y, b.Max.Y), Z: min(a.Max.Z, b.Max.Z)}

	us := []float32{getAxis(lo, u), getAxis(hi, u)}
	vs := []float32{getAxis(lo, v), getAxis(hi, v)}

	points := make([]ContactPoint, 0, 4)
	for _, cu := range us {
		for _, cv := range vs {
			var onB rl.Vector3
			setAxis(&onB, axis, faceB)
			setAxis(&onB, u, cu)
			setAxis(&onB, v, cv)

			duplicate := false
			for _, p := range points {
				if p.PositionWorldOnB == onB {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}

			points = append(points, noTriangle(ContactPoint{
				PositionWorldOnA: rl.Vector3Subtract(onB, rl.Vector3Scale(n, depth)),
				PositionWorldOnB: onB,
				NormalWorldOnB:   n,
				Distance:         -depth,
			}))
		}
	}
	return points
}

// convexVsMesh treats the convex piece as body A and the mesh as body B.
func convexVsMesh(a placed, mesh *TriangleMesh, meshPos rl.Vector3) []ContactPoint {
	bounds := a.shape.Bounds(a.pos, a.rot).Expand(rl.Vector3{
		X: ContactBreakingThreshold, Y: ContactBreakingThreshold, Z: ContactBreakingThreshold,
	})
	if !bounds.Intersects(mesh.Bounds(meshPos, rl.Quaternion{})) {
		return nil
	}

	var points []ContactPoint
	for i := range mesh.Triangles {
		tri := mesh.worldTriangle(i, meshPos)
		triBounds := AABB{Min: tri.A, Max: tri.A}.Union(AABB{Min: tri.B, Max: tri.B}).Union(AABB{Min: tri.C, Max: tri.C})
		if !bounds.Intersects(triBounds) {
			continue
		}

		var cp ContactPoint
		var ok bool
		switch s := a.shape.(type) {
		case *Sphere:
			cp, ok = sphereVsTriangle(a.pos, s.Radius, tri)
		case *Box:
			cp, ok = boxVsTriangle(s.Bounds(a.pos, a.rot), tri)
		}
		if !ok {
			continue
		}
		cp.TriangleA = -1
		cp.TriangleB = i
		points = append(points, cp)
	}
	return points
}

func sphereVsTriangle(center rl.Vector3, radius float32, tri Triangle) (ContactPoint, bool) {
	closest := closestPointOnTriangle(center, tri)
	d := rl.Vector3Subtract(center, closest)
	dist := rl.Vector3Length(d)
	if dist > radius+ContactBreakingThreshold {
		return ContactPoint{}, false
	}

	n := tri.Normal()
	if dist > epsilon {
		n = rl.Vector3Scale(d, 1/dist)
	}
	return ContactPoint{
		PositionWorldOnA: rl.Vector3Subtract(center, rl.Vector3Scale(n, radius)),
		PositionWorldOnB: closest,
		NormalWorldOnB:   n,
		Distance:         dist - radius,
	}, true
}

// boxVsTriangle only detects triangles whose point nearest the box center lies
// inside the box. Thin boxes crossing a triangle edge-on can be missed.
func boxVsTriangle(box AABB, tri Triangle) (ContactPoint, bool) {
	center := box.Center()
	closest := closestPointOnTriangle(center, tri)
	if !box.Expand(rl.Vector3{X: ContactBreakingThreshold, Y: ContactBreakingThreshold, Z: ContactBreakingThreshold}).Contains(closest) {
		return ContactPoint{}, false
	}

	n := tri.Normal()
	s := rl.Vector3DotProduct(rl.Vector3Subtract(center, closest), n)
	if s < 0 {
		n = rl.Vector3Negate(n)
		s = -s
	}

	h := box.HalfExtents()
	reach := abs(h.X*n.X) + abs(h.Y*n.Y) + abs(h.Z*n.Z)
	depth := reach - s

	return ContactPoint{
		PositionWorldOnA: rl.Vector3Subtract(closest, rl.Vector3Scale(n, depth)),
		PositionWorldOnB: closest,
		NormalWorldOnB:   n,
		Distance:         -depth,
	}, true
}
