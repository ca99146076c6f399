package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// BodyID identifies a body inside a World. Zero is never assigned.
type BodyID uint32

const InvalidBody BodyID = 0

type BodyType int

const (
	BodyStatic    BodyType = iota // never moves, infinite mass
	BodyDynamic                   // integrated and pushed by contacts
	BodyKinematic                 // moved by gameplay, pushes dynamic bodies
)

// Collision filter groups. A pair collides only when each body's group is in
// the other's mask.
const (
	ColGroup0   uint8 = 0x01
	ColGroup1   uint8 = 0x02
	ColGroup2   uint8 = 0x04
	ColGroup3   uint8 = 0x08
	ColGroup4   uint8 = 0x10
	ColGroup5   uint8 = 0x20
	ColGroup6   uint8 = 0x40
	ColGroup7   uint8 = 0x80
	ColGroupAll uint8 = 0xff
)

type Body struct {
	ID       BodyID
	Type     BodyType
	Shape    Shape
	Position rl.Vector3
	Rotation rl.Quaternion
	Velocity rl.Vector3

	Mass        float32
	Restitution float32 // 0 = no bounce, 1 = perfect bounce
	Friction    float32 // 0 = ice, 1 = stops immediately
	UseGravity  bool

	Group uint8
	Mask  uint8

	// NoContactResponse bodies still generate manifolds but are never pushed
	// apart. Trigger volumes use this.
	NoContactResponse bool
}

// NewBody returns a body with the defaults used by the engine: unit mass,
// group 0, colliding with everything.
func NewBody(bodyType BodyType, shape Shape) *Body {
	return &Body{
		Type:        bodyType,
		Shape:       shape,
		Rotation:    rl.QuaternionIdentity(),
		Mass:        1.0,
		Restitution: 0.2,
		Friction:    0.5,
		UseGravity:  true,
		Group:       ColGroup0,
		Mask:        ColGroupAll,
	}
}

func (b *Body) Bounds() AABB {
	return b.Shape.Bounds(b.Position, b.Rotation)
}

func (b *Body) IsDynamic() bool {
	return b.Type == BodyDynamic
}

func (b *Body) inverseMass() float32 {
	if b.Type != BodyDynamic || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

func (b *Body) collidesWith(other *Body) bool {
	return b.Group&other.Mask != 0 && other.Group&b.Mask != 0
}

// QueryFilter selects which bodies a ray or sweep may hit. Group is the query's
// own group; Mask selects body groups. Skip, when set, rejects individual bodies.
type QueryFilter struct {
	Group uint8
	Mask  uint8
	Skip  func(b *Body) bool
}

func (f QueryFilter) accepts(b *Body) bool {
	if b.Group&f.Mask == 0 || f.Group&b.Mask == 0 {
		return false
	}
	return f.Skip == nil || !f.Skip(b)
}
