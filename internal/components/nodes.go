package components

import (
	"mirgo/internal/engine"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Built-in node types. Scene files and World.SpawnNode refer to them by name.
var (
	TypeNode             = engine.RegisterNodeType("Node", nil)
	TypeNode3D           = engine.RegisterNodeType("Node3D", nil)
	TypeBox              = engine.RegisterNodeType("Box", newBoxNode)
	TypeSphere           = engine.RegisterNodeType("Sphere", newSphereNode)
	TypePointLight       = engine.RegisterNodeType("PointLight", newPointLightNode)
	TypeDirectionalLight = engine.RegisterNodeType("DirectionalLight", newDirectionalLightNode)
	TypeAudio            = engine.RegisterNodeType("Audio", newAudioNode)
	TypeCamera           = engine.RegisterNodeType("Camera", newCameraNode)
)

func newBoxNode() *engine.Node {
	n := engine.NewNode("")
	p := NewPrimitive(physics.NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))
	p.BodyType = physics.BodyDynamic
	n.AddComponent(p)
	return n
}

func newSphereNode() *engine.Node {
	n := engine.NewNode("")
	p := NewPrimitive(physics.NewSphere(0.5))
	p.BodyType = physics.BodyDynamic
	n.AddComponent(p)
	return n
}

func newPointLightNode() *engine.Node {
	n := engine.NewNode("")
	n.AddComponent(NewPointLight())
	return n
}

func newDirectionalLightNode() *engine.Node {
	n := engine.NewNode("")
	n.AddComponent(NewDirectionalLight())
	return n
}

func newAudioNode() *engine.Node {
	n := engine.NewNode("")
	n.AddComponent(NewAudio())
	return n
}

func newCameraNode() *engine.Node {
	n := engine.NewNode("")
	n.AddComponent(NewCamera())
	return n
}
