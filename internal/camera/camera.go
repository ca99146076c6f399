// Package camera provides a free-flying debug camera for inspecting a world.
package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Input is one frame of movement intent. Axes are in [-1, 1].
type Input struct {
	Forward float32
	Right   float32
	Up      float32
	Look    rl.Vector2 // mouse delta in pixels
	Boost   bool
}

type Fly struct {
	Position  rl.Vector3
	Yaw       float32 // degrees, 0 looks down -Z
	Pitch     float32
	MoveSpeed float32
	LookSpeed float32
	Boost     float32
}

func New(pos rl.Vector3) *Fly {
	return &Fly{
		Position:  pos,
		Pitch:     -20.0,
		MoveSpeed: 8.0, // units per second
		LookSpeed: 0.1,
		Boost:     3.0,
	}
}

// LookAt points the camera at target.
func (c *Fly) LookAt(target rl.Vector3) {
	d := rl.Vector3Subtract(target, c.Position)
	horiz := math.Hypot(float64(d.X), float64(d.Z))
	c.Yaw = float32(math.Atan2(float64(-d.X), float64(-d.Z)) * 180 / math.Pi)
	c.Pitch = float32(math.Atan2(float64(d.Y), horiz) * 180 / math.Pi)
}

func (c *Fly) Update(in Input, deltaTime float32) {
	c.Yaw -= in.Look.X * c.LookSpeed
	c.Pitch -= in.Look.Y * c.LookSpeed
	c.Pitch = max(-89, min(89, c.Pitch))

	forward, right := c.directions()

	var move rl.Vector3
	move = rl.Vector3Add(move, rl.Vector3Scale(forward, in.Forward))
	move = rl.Vector3Add(move, rl.Vector3Scale(right, in.Right))
	move.Y += in.Up

	// Normalize diagonal movement so you don't go faster diagonally
	if l := rl.Vector3Length(move); l > 1 {
		move = rl.Vector3Scale(move, 1/l)
	}

	speed := c.MoveSpeed
	if in.Boost {
		speed *= c.Boost
	}
	c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(move, speed*deltaTime))
}

// Forward returns the unit view direction.
func (c *Fly) Forward() rl.Vector3 {
	yaw := float64(c.Yaw) * math.Pi / 180
	pitch := float64(c.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(-math.Sin(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(-math.Cos(yaw) * math.Cos(pitch)),
	}
}

// directions returns the horizontal forward and right vectors.
func (c *Fly) directions() (forward, right rl.Vector3) {
	yaw := float64(c.Yaw) * math.Pi / 180
	forward = rl.Vector3{X: float32(-math.Sin(yaw)), Z: float32(-math.Cos(yaw))}
	right = rl.Vector3{X: float32(math.Cos(yaw)), Z: float32(-math.Sin(yaw))}
	return
}

func (c *Fly) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, c.Forward()),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
