package components

import (
	"fmt"

	"mirgo/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("light", func(props map[string]any) (engine.Component, error) {
		return LightFromProps(props)
	})
}

type LightKind int

const (
	LightPoint LightKind = iota
	LightDirectional
)

// Light is a point or directional light. The World tracks every node that
// carries one so the renderer can read them without walking the tree.
type Light struct {
	engine.BaseComponent
	Kind      LightKind
	Color     rl.Color
	Intensity float32
	Radius    float32    // falloff distance, point lights only
	Direction rl.Vector3 // directional lights only
}

func NewPointLight() *Light {
	return &Light{
		Kind:      LightPoint,
		Color:     rl.White,
		Intensity: 1.0,
		Radius:    10.0,
	}
}

func NewDirectionalLight() *Light {
	return &Light{
		Kind:      LightDirectional,
		Color:     rl.White,
		Intensity: 1.0,
		Direction: rl.Vector3Normalize(rl.Vector3{X: 0.35, Y: -1.0, Z: -0.35}),
	}
}

func (l *Light) GetPosition() rl.Vector3 {
	if n := l.GetNode(); n != nil {
		return n.WorldPosition()
	}
	return rl.Vector3Zero()
}

func (l *Light) GetColorFloat() []float32 {
	return []float32{
		float32(l.Color.R) / 255.0 * l.Intensity,
		float32(l.Color.G) / 255.0 * l.Intensity,
		float32(l.Color.B) / 255.0 * l.Intensity,
	}
}

func LightFromProps(props map[string]any) (*Light, error) {
	var l *Light
	switch kind := engine.PropString(props, "kind", "point"); kind {
	case "point":
		l = NewPointLight()
	case "directional":
		l = NewDirectionalLight()
	default:
		return nil, fmt.Errorf("unknown light kind %q", kind)
	}

	var err error
	if l.Color, err = engine.PropColor(props, "color", l.Color); err != nil {
		return nil, err
	}
	if l.Direction, err = engine.PropVector3(props, "direction", l.Direction); err != nil {
		return nil, err
	}
	if l.Kind == LightDirectional {
		l.Direction = rl.Vector3Normalize(l.Direction)
	}
	l.Intensity = engine.PropFloat(props, "intensity", l.Intensity)
	l.Radius = engine.PropFloat(props, "radius", l.Radius)
	return l, nil
}
