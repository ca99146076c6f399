package components

import "mirgo/internal/engine"

func init() {
	engine.RegisterComponent("rotator", func(props map[string]any) (engine.Component, error) {
		return &Rotator{Speed: engine.PropFloat(props, "speed", 90)}, nil
	})
}

// Rotator is a simple script that spins a node around the Y axis. Kinematic
// primitives on the same node push their new transform into the simulation.
type Rotator struct {
	engine.BaseComponent
	Speed float32 // degrees per second
}

func (r *Rotator) Update(deltaTime float32) {
	n := r.GetNode()
	if n == nil {
		return
	}
	rot := n.Transform.Rotation
	rot.Y += r.Speed * deltaTime
	if rot.Y > 360 {
		rot.Y -= 360
	}
	n.SetRotation(rot)
}
