package components

import (
	"testing"

	"mirgo/internal/engine"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerSpy struct {
	engine.BaseComponent
	began, ended []*engine.Node
	hits         []*engine.Node
	normals      []rl.Vector3
}

func (h *handlerSpy) OnBeginOverlap(other *engine.Node) { h.began = append(h.began, other) }
func (h *handlerSpy) OnEndOverlap(other *engine.Node)   { h.ended = append(h.ended, other) }

func (h *handlerSpy) OnCollision(other *engine.Node, point, normal rl.Vector3) {
	h.hits = append(h.hits, other)
	h.normals = append(h.normals, normal)
}

func TestPrimitiveFromProps(t *testing.T) {
	p, err := PrimitiveFromProps(map[string]any{
		"shape":        "box",
		"half_extents": []any{1, 2, 3},
		"body":         "dynamic",
		"mass":         2.5,
		"collision":    false,
		"overlaps":     true,
		"group":        2,
	})
	require.NoError(t, err)

	box, ok := p.Shape.(*physics.Box)
	require.True(t, ok)
	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, box.HalfExtents)
	assert.Equal(t, physics.BodyDynamic, p.BodyType)
	assert.Equal(t, float32(2.5), p.Mass)
	assert.False(t, p.IsCollisionEnabled())
	assert.True(t, p.AreOverlapsEnabled())
	assert.Equal(t, physics.ColGroup1, p.Group)
}

func TestPrimitiveFromPropsCompound(t *testing.T) {
	p, err := PrimitiveFromProps(map[string]any{
		"shape": "compound",
		"children": []any{
			map[string]any{"shape": "sphere", "radius": 0.25, "offset": []any{0, 1, 0}},
			map[string]any{"shape": "box"},
		},
	})
	require.NoError(t, err)
	assert.True(t, p.Shape.IsCompound())
	assert.Len(t, p.Shape.(*physics.Compound).Children, 2)
}

func TestPrimitiveFromPropsErrors(t *testing.T) {
	_, err := PrimitiveFromProps(map[string]any{"shape": "cone"})
	assert.Error(t, err)

	_, err = PrimitiveFromProps(map[string]any{"body": "floaty"})
	assert.Error(t, err)

	_, err = PrimitiveFromProps(map[string]any{"shape": "compound"})
	assert.Error(t, err)

	_, err = PrimitiveFromProps(map[string]any{
		"shape":    "compound",
		"children": []any{map[string]any{"shape": "plane"}},
	})
	assert.Error(t, err)
}

func TestBuildBodyUsesNodeTransform(t *testing.T) {
	n := engine.NewNode("Crate")
	n.SetPosition(rl.Vector3{X: 1, Y: 2, Z: 3})
	p := NewPrimitive(physics.NewSphere(1))
	p.BodyType = physics.BodyKinematic
	p.SetCollisionEnabled(false)
	n.AddComponent(p)

	b := p.BuildBody()
	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, b.Position)
	assert.Equal(t, physics.BodyKinematic, b.Type)
	assert.True(t, b.NoContactResponse)

	b.Position = rl.Vector3{X: 4}
	p.SyncFromBody(b)
	assert.Equal(t, rl.Vector3{X: 4}, n.Transform.Position)
}

func TestPrimitiveForwardsCallbacks(t *testing.T) {
	a, b := engine.NewNode("A"), engine.NewNode("B")
	pa, pb := NewPrimitive(physics.NewSphere(1)), NewPrimitive(physics.NewSphere(1))
	a.AddComponent(pa)
	b.AddComponent(pb)
	spy := &handlerSpy{}
	a.AddComponent(spy)

	var began []*Primitive
	pa.OverlapBegan.AddListener(func(other *Primitive) { began = append(began, other) })

	pa.BeginOverlap(pb)
	pa.EndOverlap(pb)
	pa.OnCollision(pb, rl.Vector3{}, rl.Vector3{Y: 1})

	assert.Equal(t, []*engine.Node{b}, spy.began)
	assert.Equal(t, []*engine.Node{b}, spy.ended)
	assert.Equal(t, []*engine.Node{b}, spy.hits)
	assert.Equal(t, []rl.Vector3{{Y: 1}}, spy.normals)
	assert.Equal(t, []*Primitive{pb}, began)
}

func TestLightFromProps(t *testing.T) {
	l, err := LightFromProps(map[string]any{"kind": "directional", "direction": []any{0, -2, 0}, "intensity": 3})
	require.NoError(t, err)
	assert.Equal(t, LightDirectional, l.Kind)
	assert.InDelta(t, -1, l.Direction.Y, 1e-6)
	assert.Equal(t, float32(3), l.Intensity)

	_, err = LightFromProps(map[string]any{"kind": "spot"})
	assert.Error(t, err)
}

func TestBuiltinNodeTypes(t *testing.T) {
	box := engine.CreateNode("Box")
	require.NotNil(t, box)
	p := engine.GetComponent[*Primitive](box)
	require.NotNil(t, p)
	assert.Equal(t, physics.BodyDynamic, p.BodyType)

	light := engine.CreateNodeByID(TypePointLight)
	require.NotNil(t, light)
	assert.NotNil(t, engine.GetComponent[*Light](light))

	cam := engine.CreateNode("Camera")
	require.NotNil(t, cam)
	assert.NotNil(t, engine.GetComponent[*Camera](cam))
}

func TestRotatorWraps(t *testing.T) {
	n := engine.NewNode("Spinner")
	r := &Rotator{Speed: 180}
	n.AddComponent(r)
	n.SetRotation(rl.Vector3{Y: 300})

	r.Update(0.5)
	assert.InDelta(t, 30, n.Transform.Rotation.Y, 1e-4)
	assert.True(t, n.IsTransformDirty())
}

func TestAudioPlayOnStart(t *testing.T) {
	a := NewAudio()
	a.PlayOnStart = true
	a.Start()
	assert.True(t, a.IsPlaying())
	a.OnDestroy()
	assert.False(t, a.IsPlaying())
}
