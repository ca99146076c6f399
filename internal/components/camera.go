package components

import (
	"math"

	"mirgo/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("camera", func(props map[string]any) (engine.Component, error) {
		c := NewCamera()
		c.FOV = engine.PropFloat(props, "fov", c.FOV)
		c.Near = engine.PropFloat(props, "near", c.Near)
		c.Far = engine.PropFloat(props, "far", c.Far)
		c.IsMain = engine.PropBool(props, "main", c.IsMain)
		return c, nil
	})
}

type Camera struct {
	engine.BaseComponent
	FOV        float32
	Near       float32
	Far        float32
	Projection rl.CameraProjection
	IsMain     bool // the world makes the first main camera it sees active
}

func NewCamera() *Camera {
	return &Camera{
		FOV:        45.0,
		Near:       0.1,
		Far:        1000.0,
		Projection: rl.CameraPerspective,
	}
}

// GetRaylibCamera builds a camera looking along the node's yaw and pitch.
func (c *Camera) GetRaylibCamera() rl.Camera3D {
	n := c.GetNode()
	if n == nil {
		return rl.Camera3D{}
	}

	eyePos := n.WorldPosition()
	rot := n.WorldRotation()
	yaw := float64(rot.Y) * math.Pi / 180.0
	pitch := float64(rot.X) * math.Pi / 180.0
	forward := rl.Vector3{
		X: float32(-math.Sin(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(-math.Cos(yaw) * math.Cos(pitch)),
	}

	return rl.Camera3D{
		Position:   eyePos,
		Target:     rl.Vector3Add(eyePos, forward),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.FOV,
		Projection: c.Projection,
	}
}
