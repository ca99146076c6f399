package engine

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestRegisterNodeType(t *testing.T) {
	id := RegisterNodeType("registryTestMesh", func() *Node {
		n := NewNode("")
		n.Tags = []string{"mesh"}
		return n
	})
	if id == 0 {
		t.Fatal("TypeID 0 is reserved")
	}

	n := CreateNode("registryTestMesh")
	if n == nil {
		t.Fatal("CreateNode returned nil for a registered type")
	}
	if n.Name != "registryTestMesh" {
		t.Errorf("unnamed nodes should take the type name, got %q", n.Name)
	}
	if n.TypeID() != id || n.TypeName() != "registryTestMesh" {
		t.Error("type id and name should be stamped on the node")
	}
	if !n.HasTag("mesh") {
		t.Error("factory output should be kept")
	}

	byID := CreateNodeByID(id)
	if byID == nil || byID == n {
		t.Error("CreateNodeByID should build a fresh node")
	}

	if found, ok := LookupNodeType("registryTestMesh"); !ok || found != id {
		t.Error("LookupNodeType should find the registered id")
	}
}

func TestCreateUnknownNodeType(t *testing.T) {
	if CreateNode("doesNotExist") != nil {
		t.Error("unknown names should return nil")
	}
	if CreateNodeByID(TypeID(1<<30)) != nil {
		t.Error("unknown ids should return nil")
	}
}

func TestRegisterNodeTypeDuplicatePanics(t *testing.T) {
	RegisterNodeType("registryTestDup", nil)

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	RegisterNodeType("registryTestDup", nil)
}

func TestNilFactoryBuildsPlainNode(t *testing.T) {
	RegisterNodeType("registryTestPlain", nil)
	n := CreateNode("registryTestPlain")
	if n == nil || n.Name != "registryTestPlain" {
		t.Fatal("nil factory should build a plain node")
	}
}

type propsComponent struct {
	BaseComponent
	speed float32
	label string
	color rl.Color
}

func TestCreateComponent(t *testing.T) {
	RegisterComponent("registryTestProps", func(props map[string]any) (Component, error) {
		c := &propsComponent{
			speed: PropFloat(props, "speed", 1),
			label: PropString(props, "label", "none"),
		}
		var err error
		c.color, err = PropColor(props, "color", rl.White)
		return c, err
	})

	c, err := CreateComponent("registryTestProps", map[string]any{"speed": 3, "color": []any{255, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pc := c.(*propsComponent)
	if pc.speed != 3 || pc.label != "none" {
		t.Errorf("unexpected props %+v", pc)
	}
	if pc.color != (rl.Color{R: 255, A: 255}) {
		t.Errorf("unexpected color %v", pc.color)
	}

	_, err = CreateComponent("registryTestProps", map[string]any{"color": "red"})
	if err == nil {
		t.Error("bad props should fail")
	}

	_, err = CreateComponent("nope", nil)
	if err == nil {
		t.Error("unknown components should fail")
	}
}

func TestPropVector3(t *testing.T) {
	v, err := PropVector3(map[string]any{"pos": []any{1, 2.5, -3}}, "pos", rl.Vector3{})
	if err != nil || v != (rl.Vector3{X: 1, Y: 2.5, Z: -3}) {
		t.Errorf("got %v, %v", v, err)
	}

	def := rl.Vector3{X: 9}
	v, err = PropVector3(map[string]any{}, "pos", def)
	if err != nil || v != def {
		t.Error("missing keys should return the default")
	}

	_, err = PropVector3(map[string]any{"pos": []any{1, 2}}, "pos", def)
	if err == nil {
		t.Error("short lists should fail")
	}
}

type fakeResolver map[uint64]*Node

func (r fakeResolver) FindByUID(uid uint64) *Node { return r[uid] }

func TestNodeRef(t *testing.T) {
	n := NewNode("Target")
	res := fakeResolver{n.UID: n}

	ref := RefTo(n)
	if !ref.IsValid() || ref.Get(res) != n {
		t.Error("ref should resolve to its node")
	}

	delete(res, n.UID)
	if ref.Get(res) != nil {
		t.Error("ref to a node that left the world should resolve to nil")
	}

	ref.Clear()
	if ref.IsValid() || ref.Get(res) != nil {
		t.Error("cleared ref should be invalid")
	}

	if (NodeRef{UID: 5}).Get(nil) != nil {
		t.Error("nil resolver should resolve to nil")
	}
}

func TestEventListeners(t *testing.T) {
	var e Event
	calls := 0
	id := e.AddListener(func() { calls++ })
	e.AddListener(func() { calls += 10 })
	if e.AddListener(nil) != 0 {
		t.Error("nil listeners should be ignored")
	}

	e.Invoke()
	if calls != 11 {
		t.Errorf("expected 11, got %d", calls)
	}

	e.RemoveListener(id)
	e.Invoke()
	if calls != 21 || e.GetListenerCount() != 1 {
		t.Errorf("listener not removed: calls=%d count=%d", calls, e.GetListenerCount())
	}
}

func TestEventWithArgRemoveDuringInvoke(t *testing.T) {
	var e EventWithArg[int]
	var got []int
	var first ListenerID
	first = e.AddListener(func(v int) {
		got = append(got, v)
		e.RemoveListener(first)
	})
	e.AddListener(func(v int) { got = append(got, -v) })

	e.Invoke(1)
	e.Invoke(2)

	want := []int{1, -1, -2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCreateComponentWrapsFactoryError(t *testing.T) {
	sentinel := errors.New("boom")
	RegisterComponent("registryTestFails", func(map[string]any) (Component, error) {
		return nil, sentinel
	})
	_, err := CreateComponent("registryTestFails", nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}
