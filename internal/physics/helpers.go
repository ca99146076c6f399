package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const epsilon = 1e-6

// clamp restricts a value to a range
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func getAxis(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setAxis(v *rl.Vector3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

// supportDistance is how far the shape reaches from its origin along unit direction n.
func supportDistance(shape ConvexShape, n rl.Vector3) float32 {
	switch s := shape.(type) {
	case *Box:
		h := absVec(s.HalfExtents)
		return abs(h.X*n.X) + abs(h.Y*n.Y) + abs(h.Z*n.Z)
	}
	return shape.BoundingRadius()
}

// closestPointOnTriangle returns the point of t nearest to p (Ericson, RTCD 5.1.5).
func closestPointOnTriangle(p rl.Vector3, t Triangle) rl.Vector3 {
	ab := rl.Vector3Subtract(t.B, t.A)
	ac := rl.Vector3Subtract(t.C, t.A)
	ap := rl.Vector3Subtract(p, t.A)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return t.A
	}

	bp := rl.Vector3Subtract(p, t.B)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return t.B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(t.A, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, t.C)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return t.C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(t.A, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(t.B, rl.Vector3Scale(rl.Vector3Subtract(t.C, t.B), w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(t.A, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}
