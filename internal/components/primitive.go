package components

import (
	"fmt"

	"mirgo/internal/engine"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("primitive", func(props map[string]any) (engine.Component, error) {
		return PrimitiveFromProps(props)
	})
}

// Collision is the payload of Primitive.Collided.
type Collision struct {
	Other  *Primitive
	Point  rl.Vector3
	Normal rl.Vector3 // points away from Other
}

// Primitive gives its node a collision body. The World creates the body when
// the node registers and removes it when the node leaves.
type Primitive struct {
	engine.BaseComponent
	Shape       physics.Shape
	BodyType    physics.BodyType
	Mass        float32
	Restitution float32
	Friction    float32
	UseGravity  bool
	Group       uint8
	Mask        uint8

	collisionEnabled bool
	overlapsEnabled  bool
	bodyID           physics.BodyID

	Collided     engine.EventWithArg[Collision]
	OverlapBegan engine.EventWithArg[*Primitive]
	OverlapEnded engine.EventWithArg[*Primitive]
}

func NewPrimitive(shape physics.Shape) *Primitive {
	return &Primitive{
		Shape:            shape,
		BodyType:         physics.BodyStatic,
		Mass:             1.0,
		Restitution:      0.2,
		Friction:         0.5,
		UseGravity:       true,
		Group:            physics.ColGroup0,
		Mask:             physics.ColGroupAll,
		collisionEnabled: true,
	}
}

func (p *Primitive) IsCollisionEnabled() bool { return p.collisionEnabled }
func (p *Primitive) AreOverlapsEnabled() bool { return p.overlapsEnabled }

// SetCollisionEnabled toggles contact response. A primitive with collision off
// and overlaps on acts as a trigger volume. Takes effect the next time the
// body is built.
func (p *Primitive) SetCollisionEnabled(enabled bool) { p.collisionEnabled = enabled }

func (p *Primitive) SetOverlapsEnabled(enabled bool) { p.overlapsEnabled = enabled }

func (p *Primitive) BodyID() physics.BodyID      { return p.bodyID }
func (p *Primitive) SetBodyID(id physics.BodyID) { p.bodyID = id }

// Name returns the owning node's name, for logging.
func (p *Primitive) Name() string {
	if n := p.GetNode(); n != nil {
		return n.Name
	}
	return ""
}

// BuildBody creates a physics body matching the primitive and its node's
// current world transform.
func (p *Primitive) BuildBody() *physics.Body {
	b := physics.NewBody(p.BodyType, p.Shape)
	b.Mass = p.Mass
	b.Restitution = p.Restitution
	b.Friction = p.Friction
	b.UseGravity = p.UseGravity
	b.Group = p.Group
	b.Mask = p.Mask
	b.NoContactResponse = !p.collisionEnabled
	p.SyncToBody(b)
	return b
}

// SyncToBody copies the node's world transform onto b.
func (p *Primitive) SyncToBody(b *physics.Body) {
	n := p.GetNode()
	if n == nil || b == nil {
		return
	}
	b.Position = n.WorldPosition()
	b.Rotation = n.WorldRotationQuat()
}

// SyncFromBody moves the node to where the simulation put b.
func (p *Primitive) SyncFromBody(b *physics.Body) {
	n := p.GetNode()
	if n == nil || b == nil {
		return
	}
	if b.Position != n.WorldPosition() {
		n.SetWorldPosition(b.Position)
	}
}

// OnCollision is called by the World once per frame for each touching pair.
func (p *Primitive) OnCollision(other *Primitive, point, normal rl.Vector3) {
	p.Collided.Invoke(Collision{Other: other, Point: point, Normal: normal})

	n := p.GetNode()
	if n == nil {
		return
	}
	otherNode := other.GetNode()
	for _, c := range n.Components() {
		if h, ok := c.(engine.CollisionHandler); ok {
			h.OnCollision(otherNode, point, normal)
		}
	}
}

func (p *Primitive) BeginOverlap(other *Primitive) {
	p.OverlapBegan.Invoke(other)

	n := p.GetNode()
	if n == nil {
		return
	}
	otherNode := other.GetNode()
	for _, c := range n.Components() {
		if h, ok := c.(engine.OverlapHandler); ok {
			h.OnBeginOverlap(otherNode)
		}
	}
}

func (p *Primitive) EndOverlap(other *Primitive) {
	p.OverlapEnded.Invoke(other)

	n := p.GetNode()
	if n == nil {
		return
	}
	otherNode := other.GetNode()
	for _, c := range n.Components() {
		if h, ok := c.(engine.OverlapHandler); ok {
			h.OnEndOverlap(otherNode)
		}
	}
}

// PrimitiveFromProps builds a primitive from scene file props:
//
//	shape: box | sphere | plane | compound
//	half_extents: [x, y, z]      (box)
//	radius: r                    (sphere)
//	width, depth                 (plane)
//	children: [{shape, offset, ...}]  (compound)
//	body: static | dynamic | kinematic
//	mass, restitution, friction, gravity, group, mask, collision, overlaps
func PrimitiveFromProps(props map[string]any) (*Primitive, error) {
	shape, err := shapeFromProps(props)
	if err != nil {
		return nil, err
	}
	p := NewPrimitive(shape)

	switch body := engine.PropString(props, "body", "static"); body {
	case "static":
		p.BodyType = physics.BodyStatic
	case "dynamic":
		p.BodyType = physics.BodyDynamic
	case "kinematic":
		p.BodyType = physics.BodyKinematic
	default:
		return nil, fmt.Errorf("unknown body type %q", body)
	}

	p.Mass = engine.PropFloat(props, "mass", p.Mass)
	p.Restitution = engine.PropFloat(props, "restitution", p.Restitution)
	p.Friction = engine.PropFloat(props, "friction", p.Friction)
	p.UseGravity = engine.PropBool(props, "gravity", p.UseGravity)
	p.Group = uint8(engine.PropInt(props, "group", int(p.Group)))
	p.Mask = uint8(engine.PropInt(props, "mask", int(p.Mask)))
	p.collisionEnabled = engine.PropBool(props, "collision", p.collisionEnabled)
	p.overlapsEnabled = engine.PropBool(props, "overlaps", p.overlapsEnabled)
	return p, nil
}

func shapeFromProps(props map[string]any) (physics.Shape, error) {
	switch kind := engine.PropString(props, "shape", "box"); kind {
	case "box", "sphere":
		return convexFromProps(props)
	case "plane":
		return physics.NewPlaneMesh(
			engine.PropFloat(props, "width", 10),
			engine.PropFloat(props, "depth", 10),
		), nil
	case "compound":
		list, ok := props["children"].([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("compound shape needs children")
		}
		children := make([]physics.ChildShape, 0, len(list))
		for i, raw := range list {
			childProps, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("children[%d]: not a map", i)
			}
			shape, err := convexFromProps(childProps)
			if err != nil {
				return nil, fmt.Errorf("children[%d]: %w", i, err)
			}
			offset, err := engine.PropVector3(childProps, "offset", rl.Vector3{})
			if err != nil {
				return nil, fmt.Errorf("children[%d]: %w", i, err)
			}
			children = append(children, physics.ChildShape{Offset: offset, Shape: shape})
		}
		return physics.NewCompound(children...), nil
	default:
		return nil, fmt.Errorf("unknown shape %q", kind)
	}
}

func convexFromProps(props map[string]any) (physics.ConvexShape, error) {
	switch kind := engine.PropString(props, "shape", "box"); kind {
	case "box":
		half, err := engine.PropVector3(props, "half_extents", rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
		if err != nil {
			return nil, err
		}
		return physics.NewBox(half), nil
	case "sphere":
		return physics.NewSphere(engine.PropFloat(props, "radius", 0.5)), nil
	default:
		return nil, fmt.Errorf("shape %q is not convex", kind)
	}
}
