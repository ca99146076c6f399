package world

import (
	"testing"

	"mirgo/internal/components"
	"mirgo/internal/engine"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSim records how often the world asks the physics world to sweep.
type countingSim struct {
	*physics.World
	sweeps int
}

func (s *countingSim) ConvexSweepTest(shape physics.ConvexShape, from, to rl.Vector3, rot rl.Quaternion, filter physics.QueryFilter) (physics.SweepHit, bool) {
	s.sweeps++
	return s.World.ConvexSweepTest(shape, from, to, rot, filter)
}

// staticBox adds a static box of half extent 1 at pos under root.
func staticBox(root *engine.Node, name string, pos rl.Vector3) *components.Primitive {
	n := engine.NewNode(name)
	n.SetPosition(pos)
	p := components.NewPrimitive(physics.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}))
	n.AddComponent(p)
	root.AddChild(n)
	return p
}

func TestRayTestReportsClosestPrimitive(t *testing.T) {
	w := newTestWorld(t)
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	near := staticBox(root, "Near", rl.Vector3{})
	far := staticBox(root, "Far", rl.Vector3{Y: -4})

	res := w.RayTest(rl.Vector3{Y: 5}, rl.Vector3{Y: -5}, physics.ColGroupAll)
	assert.Equal(t, near, res.HitPrimitive)
	assert.InDelta(t, 0.4, res.HitFraction, 1e-5)
	assert.InDelta(t, 1, res.HitPosition.Y, 1e-5)
	assert.InDelta(t, 1, res.HitNormal.Y, 1e-5)

	res = w.RayTest(rl.Vector3{Y: 5}, rl.Vector3{Y: -5}, physics.ColGroupAll, near)
	assert.Equal(t, far, res.HitPrimitive, "ignored primitives are skipped")

	res = w.RayTest(rl.Vector3{Y: 5}, rl.Vector3{Y: -5}, physics.ColGroup3)
	assert.Nil(t, res.HitPrimitive, "mask excludes group 0")

	res = w.RayTest(rl.Vector3{X: 10, Y: 5}, rl.Vector3{X: 10, Y: -5}, physics.ColGroupAll)
	assert.Nil(t, res.HitPrimitive)
	assert.Equal(t, float32(1), res.HitFraction)
}

func TestRayTestMultiReturnsEveryHit(t *testing.T) {
	w := newTestWorld(t)
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	staticBox(root, "Near", rl.Vector3{})
	staticBox(root, "Far", rl.Vector3{Y: -4})

	res := w.RayTestMulti(rl.Vector3{Y: 5}, rl.Vector3{Y: -10}, physics.ColGroupAll)
	require.Equal(t, 2, res.NumHits())
	for _, hit := range res.Hits {
		assert.NotNil(t, hit.Primitive)
		assert.Greater(t, hit.Fraction, float32(0))
	}
}

func TestZeroLengthSweepSkipsSimulation(t *testing.T) {
	sim := &countingSim{World: physics.NewWorld()}
	w := newTestWorld(t, WithSimulation(sim))
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	staticBox(root, "Box", rl.Vector3{})

	p := rl.Vector3{Y: 5}
	out := SweepTestResult{HitFraction: 0.3}
	err := w.SweepTestShape(physics.NewSphere(0.5), p, p, rl.QuaternionIdentity(), physics.ColGroupAll, &out)
	require.NoError(t, err)
	assert.Equal(t, float32(1), out.HitFraction)
	assert.Nil(t, out.HitPrimitive)
	assert.Equal(t, 0, sim.sweeps)

	err = w.SweepTestShape(physics.NewSphere(0.5), p, rl.Vector3{Y: -5}, rl.QuaternionIdentity(), physics.ColGroupAll, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, sim.sweeps)
	assert.NotNil(t, out.HitPrimitive)
	assert.InDelta(t, 0.35, out.HitFraction, 1e-5)
}

func TestSweepIgnoresItsOwnBody(t *testing.T) {
	w := newTestWorld(t)
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	floor := staticBox(root, "Floor", rl.Vector3{})

	mover := engine.NewNode("Mover")
	mover.SetPosition(rl.Vector3{Y: 5})
	prim := components.NewPrimitive(physics.NewSphere(0.5))
	prim.BodyType = physics.BodyKinematic
	mover.AddComponent(prim)
	root.AddChild(mover)

	var out SweepTestResult
	require.NoError(t, w.SweepTest(prim, rl.Vector3{Y: 5}, rl.Vector3{Y: -5}, physics.ColGroupAll, &out))
	assert.Equal(t, floor, out.HitPrimitive)
}

func TestSweepRejectsCompoundShapes(t *testing.T) {
	sim := &countingSim{World: physics.NewWorld()}
	w, logs := observedWorld(t, WithSimulation(sim))

	compound := physics.NewCompound(physics.ChildShape{Shape: physics.NewSphere(1)})
	n := engine.NewNode("Cluster")
	prim := components.NewPrimitive(compound)
	n.AddComponent(prim)
	w.SetRootNode(n)

	out := SweepTestResult{HitFraction: 0.25, HitPosition: rl.Vector3{X: 7}}
	before := out
	err := w.SweepTest(prim, rl.Vector3{}, rl.Vector3{X: 1}, physics.ColGroupAll, &out)
	assert.ErrorIs(t, err, ErrUnsupportedSweepShape)
	assert.Equal(t, before, out)
	assert.Equal(t, 0, sim.sweeps)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Cluster", logs.All()[0].ContextMap()["node"])

	mesh := physics.NewPlaneMesh(10, 10)
	err = w.SweepTestShape(mesh, rl.Vector3{}, rl.Vector3{X: 1}, rl.QuaternionIdentity(), physics.ColGroupAll, &out)
	assert.ErrorIs(t, err, ErrUnsupportedSweepShape)
	assert.Equal(t, before, out)
	assert.Equal(t, 2, logs.Len())
}
