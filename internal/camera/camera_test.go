package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
	assert.InDelta(t, want.Z, got.Z, 1e-4)
}

func TestFlyMovesAlongView(t *testing.T) {
	c := New(rl.Vector3{})
	c.Pitch = 0
	assertVec(t, rl.Vector3{Z: -1}, c.Forward())

	c.Update(Input{Forward: 1}, 0.5)
	assertVec(t, rl.Vector3{Z: -4}, c.Position)

	c.Update(Input{Right: 1, Boost: true}, 0.5)
	assertVec(t, rl.Vector3{X: 12, Z: -4}, c.Position)

	c.Update(Input{Forward: 1, Right: 1}, 1)
	assert.InDelta(t, 8, rl.Vector3Distance(rl.Vector3{X: 12, Z: -4}, c.Position), 1e-4, "diagonals are not faster")
}

func TestFlyPitchIsClamped(t *testing.T) {
	c := New(rl.Vector3{})
	c.Update(Input{Look: rl.Vector2{Y: -10000}}, 0)
	assert.Equal(t, float32(89), c.Pitch)
	c.Update(Input{Look: rl.Vector2{Y: 10000}}, 0)
	assert.Equal(t, float32(-89), c.Pitch)
}

func TestLookAt(t *testing.T) {
	c := New(rl.Vector3{X: 10, Y: 10})
	c.LookAt(rl.Vector3{})
	want := rl.Vector3Normalize(rl.Vector3{X: -10, Y: -10})
	assertVec(t, want, c.Forward())

	cam := c.GetRaylibCamera()
	assertVec(t, rl.Vector3Add(c.Position, want), cam.Target)
}
