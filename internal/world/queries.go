package world

import (
	"slices"

	"mirgo/internal/components"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

type RayTestResult struct {
	Start         rl.Vector3
	End           rl.Vector3
	CollisionMask uint8
	HitPosition   rl.Vector3
	HitNormal     rl.Vector3
	HitFraction   float32 // 1 when nothing was hit
	HitPrimitive  *components.Primitive
}

type RayHit struct {
	Position  rl.Vector3
	Normal    rl.Vector3
	Fraction  float32
	Primitive *components.Primitive
}

// RayTestMultiResult holds every hit along the ray. Hits are in the order the
// simulation reported them, not sorted by distance.
type RayTestMultiResult struct {
	Start         rl.Vector3
	End           rl.Vector3
	CollisionMask uint8
	Hits          []RayHit
}

func (r *RayTestMultiResult) NumHits() int {
	return len(r.Hits)
}

type SweepTestResult struct {
	Start         rl.Vector3
	End           rl.Vector3
	CollisionMask uint8
	HitPosition   rl.Vector3
	HitNormal     rl.Vector3
	HitFraction   float32 // 1 when nothing was hit
	HitPrimitive  *components.Primitive
}

// queryFilter matches bodies whose group is in mask, skipping the bodies of
// the ignored primitives.
func queryFilter(mask uint8, ignore []*components.Primitive) physics.QueryFilter {
	f := physics.QueryFilter{Group: physics.ColGroupAll, Mask: mask}
	if len(ignore) == 0 {
		return f
	}
	ids := make([]physics.BodyID, 0, len(ignore))
	for _, p := range ignore {
		if p != nil && p.BodyID() != physics.InvalidBody {
			ids = append(ids, p.BodyID())
		}
	}
	f.Skip = func(b *physics.Body) bool {
		return slices.Contains(ids, b.ID)
	}
	return f
}

// RayTest returns the closest hit between start and end.
func (w *World) RayTest(start, end rl.Vector3, collisionMask uint8, ignore ...*components.Primitive) RayTestResult {
	res := RayTestResult{
		Start:         start,
		End:           end,
		CollisionMask: collisionMask,
		HitFraction:   1,
	}
	if w.sim == nil {
		return res
	}

	hit, ok := w.sim.RayTestClosest(start, end, queryFilter(collisionMask, ignore))
	if !ok {
		return res
	}
	res.HitPosition = hit.Point
	res.HitNormal = hit.Normal
	res.HitFraction = hit.Fraction
	res.HitPrimitive = w.primitives[hit.Body.ID]
	return res
}

// RayTestMulti returns every body crossed between start and end.
func (w *World) RayTestMulti(start, end rl.Vector3, collisionMask uint8, ignore ...*components.Primitive) RayTestMultiResult {
	res := RayTestMultiResult{
		Start:         start,
		End:           end,
		CollisionMask: collisionMask,
	}
	if w.sim == nil {
		return res
	}

	for _, hit := range w.sim.RayTestAll(start, end, queryFilter(collisionMask, ignore)) {
		res.Hits = append(res.Hits, RayHit{
			Position:  hit.Point,
			Normal:    hit.Normal,
			Fraction:  hit.Fraction,
			Primitive: w.primitives[hit.Body.ID],
		})
	}
	return res
}

// SweepTest moves prim's shape from start to end at the node's current
// rotation and reports the first primitive it would touch. prim itself is
// always ignored. On error out is left untouched.
func (w *World) SweepTest(prim *components.Primitive, start, end rl.Vector3, collisionMask uint8, out *SweepTestResult, ignore ...*components.Primitive) error {
	if prim == nil {
		return ErrUnsupportedSweepShape
	}
	if !sweepable(prim.Shape) {
		w.log.Error("sweep test needs a convex, non-compound shape",
			zap.String("node", prim.Name()), zap.Stringer("shape", shapeType(prim.Shape)))
		return ErrUnsupportedSweepShape
	}

	rot := rl.QuaternionIdentity()
	if n := prim.GetNode(); n != nil {
		rot = n.WorldRotationQuat()
	}
	w.sweep(prim.Shape.(physics.ConvexShape), start, end, rot, collisionMask, out, append(slices.Clip(ignore), prim))
	return nil
}

// SweepTestShape sweeps a shape that is not attached to any primitive.
func (w *World) SweepTestShape(shape physics.Shape, start, end rl.Vector3, rot rl.Quaternion, collisionMask uint8, out *SweepTestResult, ignore ...*components.Primitive) error {
	if !sweepable(shape) {
		w.log.Error("sweep test needs a convex, non-compound shape", zap.Stringer("shape", shapeType(shape)))
		return ErrUnsupportedSweepShape
	}
	w.sweep(shape.(physics.ConvexShape), start, end, rot, collisionMask, out, ignore)
	return nil
}

// sweep fills out. A zero-length sweep reports no hit without querying the
// simulation.
func (w *World) sweep(shape physics.ConvexShape, start, end rl.Vector3, rot rl.Quaternion, collisionMask uint8, out *SweepTestResult, ignore []*components.Primitive) {
	*out = SweepTestResult{
		Start:         start,
		End:           end,
		CollisionMask: collisionMask,
		HitFraction:   1,
	}
	if start == end || w.sim == nil {
		return
	}

	hit, ok := w.sim.ConvexSweepTest(shape, start, end, rot, queryFilter(collisionMask, ignore))
	if !ok {
		return
	}
	out.HitPosition = hit.Point
	out.HitNormal = hit.Normal
	out.HitFraction = hit.Fraction
	out.HitPrimitive = w.primitives[hit.Body.ID]
}

func sweepable(shape physics.Shape) bool {
	if shape == nil || shape.IsCompound() || !shape.IsConvex() {
		return false
	}
	_, ok := shape.(physics.ConvexShape)
	return ok
}

func shapeType(shape physics.Shape) physics.ShapeType {
	if shape == nil {
		return -1
	}
	return shape.Type()
}
