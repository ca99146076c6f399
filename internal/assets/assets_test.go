package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mirgo/internal/components"
	"mirgo/internal/engine"
	"mirgo/internal/physics"
	"mirgo/internal/scripting"
	"mirgo/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const arena = `
root:
  name: Arena
  type: Node3D
  tags: [level]
  children:
    - name: Floor
      position: [0, -1, 0]
      components:
        - type: primitive
          shape: box
          half_extents: [10, 1, 10]
    - name: Ball
      type: Sphere
      position: [0, 4, 0]
      scale: [2, 2, 2]
      replicate: high
    - name: Sun
      type: DirectionalLight
    - name: Eye
      position: [0, 5, -10]
      components:
        - type: camera
          main: true
`

func writeScene(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o644))
}

type countingAssigner struct {
	next  engine.NetID
	rates map[string]engine.ReplicationRate
}

func (a *countingAssigner) Assign(n *engine.Node, rate engine.ReplicationRate) engine.NetID {
	a.next++
	n.NetID = a.next
	n.ReplicationRate = rate
	a.rates[n.Name] = rate
	return n.NetID
}

func TestInstantiateBuildsTree(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "arena", arena)
	net := &countingAssigner{rates: map[string]engine.ReplicationRate{}}
	m := NewManager(dir, zaptest.NewLogger(t), WithNetAssigner(net))

	scene, err := m.LoadScene("arena")
	require.NoError(t, err)
	root, err := scene.Instantiate()
	require.NoError(t, err)

	assert.Equal(t, "Arena", root.Name)
	assert.Equal(t, components.TypeNode3D, root.TypeID())
	assert.True(t, root.HasTag("level"))
	require.Len(t, root.Children, 4)

	floor := root.FindChild("Floor", false)
	require.NotNil(t, floor)
	assert.Equal(t, rl.Vector3{Y: -1}, floor.Transform.Position)
	prim := engine.GetComponent[*components.Primitive](floor)
	require.NotNil(t, prim)
	assert.Equal(t, physics.ShapeBox, prim.Shape.Type())

	ball := root.FindChild("Ball", false)
	require.NotNil(t, ball)
	assert.Equal(t, rl.Vector3{X: 2, Y: 2, Z: 2}, ball.Transform.Scale)
	assert.NotNil(t, engine.GetComponent[*components.Primitive](ball), "Sphere nodes come with a primitive")
	assert.Equal(t, engine.ReplicationHigh, net.rates["Ball"])
	assert.NotEqual(t, engine.InvalidNetID, ball.NetID)

	assert.NotNil(t, engine.GetComponent[*components.Light](root.FindChild("Sun", false)))
	cam := engine.GetComponent[*components.Camera](root.FindChild("Eye", false))
	require.NotNil(t, cam)
	assert.True(t, cam.IsMain)
	assert.Equal(t, rl.Vector3{X: 1, Y: 1, Z: 1}, root.FindChild("Eye", false).Transform.Scale)

	again, err := scene.Instantiate()
	require.NoError(t, err)
	assert.NotSame(t, root, again)
	assert.NotEqual(t, root.UID, again.UID)
}

func TestLoadSceneCachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "arena", arena)
	m := NewManager(dir, zaptest.NewLogger(t))

	first, err := m.LoadScene("arena")
	require.NoError(t, err)
	second, err := m.LoadScene("arena")
	require.NoError(t, err)
	assert.Same(t, first, second)

	m.Reload()
	third, err := m.LoadScene("arena")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoadSceneErrors(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "broken", "root: [not, a, node")
	writeScene(t, dir, "unknown", "root:\n  type: Dragon\n")
	writeScene(t, dir, "badrate", "root:\n  replicate: sometimes\n")
	writeScene(t, dir, "untyped", "root:\n  components:\n    - shape: box\n")
	m := NewManager(dir, zaptest.NewLogger(t))

	_, err := m.LoadScene("missing")
	assert.ErrorIs(t, err, ErrSceneNotFound)
	_, err = m.LoadScene("../arena")
	assert.ErrorIs(t, err, ErrSceneNotFound)

	for _, name := range []string{"broken", "unknown", "badrate", "untyped"} {
		_, err := m.LoadScene(name)
		assert.Error(t, err, name)
		assert.False(t, errors.Is(err, ErrSceneNotFound), name)
	}
}

func TestInstantiateReportsComponentErrors(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "bad", `
root:
  name: Bad
  components:
    - type: primitive
      shape: cylinder
`)
	m := NewManager(dir, zaptest.NewLogger(t))
	scene, err := m.LoadScene("bad")
	require.NoError(t, err)
	root, err := scene.Instantiate()
	assert.Nil(t, root)
	assert.ErrorContains(t, err, "cylinder")
}

func TestWithComponentOverridesRegistry(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "spin", `
root:
  name: Top
  components:
    - type: spinner
      speed: 12
`)
	var seen map[string]any
	m := NewManager(dir, zaptest.NewLogger(t), WithComponent("spinner", func(props map[string]any) (engine.Component, error) {
		seen = props
		return &components.Rotator{Speed: engine.PropFloat(props, "speed", 0)}, nil
	}))
	scene, err := m.LoadScene("spin")
	require.NoError(t, err)
	root, err := scene.Instantiate()
	require.NoError(t, err)

	rot := engine.GetComponent[*components.Rotator](root)
	require.NotNil(t, rot)
	assert.Equal(t, float32(12), rot.Speed)
	assert.Equal(t, 12, seen["speed"])
}

func TestWorldLoadsQueuedSceneFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "arena", arena)
	m := NewManager(dir, zaptest.NewLogger(t))
	w := world.New(world.WithLogger(zaptest.NewLogger(t)), world.WithSceneLoader(m))

	require.NoError(t, w.QueueRootScene("arena"))
	w.Update(1.0 / 60.0)

	require.NotNil(t, w.GetRootNode())
	assert.Equal(t, "Arena", w.GetRootNode().Name)
	assert.Equal(t, 5, w.NumNodes())
	assert.Len(t, w.GetLights(), 1)
	assert.Len(t, w.Primitives(), 2)
	assert.Equal(t, w.FindNode("Eye"), w.GetActiveCamera())
}

func TestShippedSceneRuns(t *testing.T) {
	dir := filepath.Join("..", "..", "assets", "scenes")
	log := zaptest.NewLogger(t)
	m := NewManager(dir, log, WithComponent("script", scripting.Factory(dir, log)))
	w := world.New(world.WithLogger(log), world.WithSceneLoader(m))
	defer w.Destroy()

	require.NoError(t, w.QueueRootScene("main"))
	for range 30 {
		w.Update(1.0 / 60.0)
		w.FlushPendingDestroys()
	}

	require.NotNil(t, w.GetRootNode())
	assert.Equal(t, w.FindNode("Eye"), w.GetActiveCamera())
	assert.Len(t, w.GetLights(), 2)
	assert.Len(t, w.FindNodesByName("Crate"), 2)
	assert.NotNil(t, w.FindNode("Barbell"))
}
