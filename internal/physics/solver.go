package physics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	// Fraction of penetration removed per step.
	baumgarte = 0.8
	// Penetration allowed before positional correction kicks in.
	penetrationSlop = 0.005
)

// solve pushes penetrating bodies apart and applies bounce and friction
// impulses, one pass per manifold using its deepest point.
func (w *World) solve() {
	for i := range w.manifolds {
		m := &w.manifolds[i]
		a, b := w.bodies[m.BodyA], w.bodies[m.BodyB]
		if a == nil || b == nil || a.NoContactResponse || b.NoContactResponse {
			continue
		}

		invA, invB := a.inverseMass(), b.inverseMass()
		total := invA + invB
		if total == 0 {
			continue
		}

		deepest := m.Points[0]
		for _, p := range m.Points[1:] {
			if p.Distance < deepest.Distance {
				deepest = p
			}
		}
		if deepest.Distance >= 0 {
			continue
		}
		n := deepest.NormalWorldOnB

		// Positional correction, split by inverse mass
		if depth := -deepest.Distance - penetrationSlop; depth > 0 {
			push := depth * baumgarte / total
			a.Position = rl.Vector3Add(a.Position, rl.Vector3Scale(n, push*invA))
			b.Position = rl.Vector3Subtract(b.Position, rl.Vector3Scale(n, push*invB))
		}

		relVel := rl.Vector3Subtract(a.Velocity, b.Velocity)
		vn := rl.Vector3DotProduct(relVel, n)
		if vn >= 0 {
			continue // already separating
		}

		e := (a.Restitution + b.Restitution) * 0.5
		j := -(1 + e) * vn / total
		a.Velocity = rl.Vector3Add(a.Velocity, rl.Vector3Scale(n, j*invA))
		b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(n, j*invB))

		// Coulomb friction along the tangential slide direction
		tangent := rl.Vector3Subtract(relVel, rl.Vector3Scale(n, vn))
		slide := rl.Vector3Length(tangent)
		if slide < epsilon {
			continue
		}
		tangent = rl.Vector3Scale(tangent, 1/slide)
		mu := sqrt(a.Friction * b.Friction)
		jt := min(slide/total, mu*j)
		a.Velocity = rl.Vector3Subtract(a.Velocity, rl.Vector3Scale(tangent, jt*invA))
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(tangent, jt*invB))
	}
}
