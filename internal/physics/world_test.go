package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSphereBody(bt BodyType, pos rl.Vector3, radius float32) *Body {
	b := NewBody(bt, NewSphere(radius))
	b.Position = pos
	return b
}

func newBoxBody(bt BodyType, pos, half rl.Vector3) *Body {
	b := NewBody(bt, NewBox(half))
	b.Position = pos
	return b
}

func TestAddRemoveBody(t *testing.T) {
	w := NewWorld()
	a := w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{}, 1))
	b := w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 10}, 1))

	assert.NotEqual(t, InvalidBody, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, w.NumBodies())

	w.RemoveBody(a)
	assert.Nil(t, w.Body(a))
	assert.NotNil(t, w.Body(b))
	assert.Equal(t, 1, w.NumBodies())

	// Removing twice is a no-op
	w.RemoveBody(a)
	assert.Equal(t, 1, w.NumBodies())
}

func TestDispatchSphereSphere(t *testing.T) {
	w := NewWorld()
	a := w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 0}, 1))
	b := w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 1.5}, 1))

	w.DispatchAllCollisionPairs()
	require.Len(t, w.Manifolds(), 1)

	m := w.Manifolds()[0]
	assert.Equal(t, a, m.BodyA)
	assert.Equal(t, b, m.BodyB)
	require.Equal(t, 1, m.NumContacts())

	cp := m.Points[0]
	assert.InDelta(t, -0.5, cp.Distance, 1e-5)
	// Normal points from B toward A
	assert.InDelta(t, -1, cp.NormalWorldOnB.X, 1e-5)
	assert.InDelta(t, 1, cp.PositionWorldOnA.X, 1e-5)
	assert.InDelta(t, 0.5, cp.PositionWorldOnB.X, 1e-5)
}

func TestDispatchSeparatedBodies(t *testing.T) {
	w := NewWorld()
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{}, 1))
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 3}, 1))

	w.DispatchAllCollisionPairs()
	assert.Empty(t, w.Manifolds())
}

func TestDispatchRequiresDynamicBody(t *testing.T) {
	w := NewWorld()
	w.AddBody(newBoxBody(BodyStatic, rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1}))
	w.AddBody(newBoxBody(BodyKinematic, rl.Vector3{X: 0.5}, rl.Vector3{X: 1, Y: 1, Z: 1}))

	w.DispatchAllCollisionPairs()
	assert.Empty(t, w.Manifolds())
}

func TestDispatchRespectsGroupMask(t *testing.T) {
	w := NewWorld()
	a := newSphereBody(BodyDynamic, rl.Vector3{}, 1)
	a.Group = ColGroup1
	b := newSphereBody(BodyDynamic, rl.Vector3{X: 1}, 1)
	b.Mask = ColGroupAll &^ ColGroup1
	w.AddBody(a)
	w.AddBody(b)

	w.DispatchAllCollisionPairs()
	assert.Empty(t, w.Manifolds())

	b.Mask = ColGroupAll
	w.DispatchAllCollisionPairs()
	assert.Len(t, w.Manifolds(), 1)
}

func TestBoxBoxContactPoints(t *testing.T) {
	w := NewWorld()
	floor := w.AddBody(newBoxBody(BodyStatic, rl.Vector3{}, rl.Vector3{X: 5, Y: 0.5, Z: 5}))
	box := w.AddBody(newBoxBody(BodyDynamic, rl.Vector3{Y: 0.9}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))

	w.DispatchAllCollisionPairs()
	require.Len(t, w.Manifolds(), 1)
	m := w.Manifolds()[0]
	assert.Equal(t, floor, m.BodyA)
	assert.Equal(t, box, m.BodyB)
	assert.Len(t, m.Points, 4)

	for _, cp := range m.Points {
		// B (the box) sits above A (the floor): normal from B to A is -Y
		assert.InDelta(t, -1, cp.NormalWorldOnB.Y, 1e-5)
		assert.InDelta(t, -0.1, cp.Distance, 1e-5)
		assert.InDelta(t, 0.4, cp.PositionWorldOnB.Y, 1e-5)
	}
}

func TestSphereRestsOnMesh(t *testing.T) {
	w := NewWorld()
	ground := NewBody(BodyStatic, NewPlaneMesh(20, 20))
	w.AddBody(ground)
	ball := newSphereBody(BodyDynamic, rl.Vector3{Y: 2}, 0.5)
	w.AddBody(ball)

	for i := 0; i < 240; i++ {
		w.StepSimulation(1.0/60.0, 1)
	}

	assert.InDelta(t, 0.5, ball.Position.Y, 0.05)
	assert.NotEmpty(t, w.Manifolds())
}

func TestBoxFallsOntoFloor(t *testing.T) {
	w := NewWorld()
	w.AddBody(newBoxBody(BodyStatic, rl.Vector3{}, rl.Vector3{X: 10, Y: 0.5, Z: 10}))
	box := newBoxBody(BodyDynamic, rl.Vector3{Y: 3}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	w.AddBody(box)

	for i := 0; i < 240; i++ {
		w.StepSimulation(1.0/60.0, 1)
	}
	assert.InDelta(t, 1.0, box.Position.Y, 0.05)
}

func TestNoContactResponsePassesThrough(t *testing.T) {
	w := NewWorld(WithGravity(rl.Vector3{}))
	trigger := newBoxBody(BodyStatic, rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	trigger.NoContactResponse = true
	w.AddBody(trigger)
	ball := newSphereBody(BodyDynamic, rl.Vector3{X: 0.5}, 0.5)
	w.AddBody(ball)

	w.StepSimulation(1.0/60.0, 1)
	assert.Len(t, w.Manifolds(), 1)
	assert.Equal(t, float32(0.5), ball.Position.X)
}

func TestStepSimulationSubsteps(t *testing.T) {
	w := NewWorld(WithFixedTimeStep(0.01), WithGravity(rl.Vector3{}))

	assert.Equal(t, 0, w.StepSimulation(0.005, 4))
	assert.Equal(t, 1, w.StepSimulation(0.006, 4))
	// Large frames are clamped to maxSubSteps
	assert.Equal(t, 4, w.StepSimulation(0.1, 4))
	// Variable step
	assert.Equal(t, 1, w.StepSimulation(0.033, 0))
}

func TestKinematicBodiesAreNotIntegrated(t *testing.T) {
	w := NewWorld()
	k := newBoxBody(BodyKinematic, rl.Vector3{Y: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})
	w.AddBody(k)

	w.StepSimulation(0.5, 0)
	assert.Equal(t, float32(5), k.Position.Y)
}

func TestOversizedBodyStillCollides(t *testing.T) {
	w := NewWorld(WithCellSize(1))
	w.AddBody(newBoxBody(BodyStatic, rl.Vector3{}, rl.Vector3{X: 50, Y: 0.5, Z: 50}))
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 30, Y: 0.9}, 0.5))

	w.DispatchAllCollisionPairs()
	assert.Len(t, w.Manifolds(), 1)
}

func TestContactAddedCallback(t *testing.T) {
	calls := 0
	w := NewWorld(WithContactAdded(func(cp *ContactPoint, a, b *Body) {
		calls++
		cp.Distance = -42
	}))
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{}, 1))
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 1}, 1))

	w.DispatchAllCollisionPairs()
	assert.Equal(t, 1, calls)
	require.Len(t, w.Manifolds(), 1)
	assert.Equal(t, float32(-42), w.Manifolds()[0].Points[0].Distance)
}

func TestCompoundChildrenCollide(t *testing.T) {
	w := NewWorld()
	shape := NewCompound(
		ChildShape{Offset: rl.Vector3{X: -2}, Shape: NewSphere(0.5)},
		ChildShape{Offset: rl.Vector3{X: 2}, Shape: NewSphere(0.5)},
	)
	c := NewBody(BodyStatic, shape)
	w.AddBody(c)
	w.AddBody(newSphereBody(BodyDynamic, rl.Vector3{X: 2.8}, 0.5))

	w.DispatchAllCollisionPairs()
	require.Len(t, w.Manifolds(), 1)
	assert.Len(t, w.Manifolds()[0].Points, 1)
}
