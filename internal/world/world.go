// Package world owns the simulation for one level: the physics world, the
// node tree hanging off the root, and the bookkeeping the renderer, audio and
// network layers read every frame.
package world

import (
	"errors"

	"mirgo/internal/components"
	"mirgo/internal/debug"
	"mirgo/internal/engine"
	"mirgo/internal/physics"
	"mirgo/internal/stats"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedSweepShape = errors.New("sweep shape must be convex and not compound")
	ErrUnknownNodeType       = errors.New("unknown node type")
	ErrNoSceneLoader         = errors.New("no scene loader configured")
)

// Simulation is the rigid body world the World drives. *physics.World
// implements it.
type Simulation interface {
	AddBody(b *physics.Body) physics.BodyID
	RemoveBody(id physics.BodyID)
	Body(id physics.BodyID) *physics.Body
	NumBodies() int

	StepSimulation(dt float32, maxSubSteps int) int
	DispatchAllCollisionPairs()
	Manifolds() []physics.Manifold

	RayTestClosest(from, to rl.Vector3, filter physics.QueryFilter) (physics.RayHit, bool)
	RayTestAll(from, to rl.Vector3, filter physics.QueryFilter) []physics.RayHit
	ConvexSweepTest(shape physics.ConvexShape, from, to rl.Vector3, rot rl.Quaternion, filter physics.QueryFilter) (physics.SweepHit, bool)

	SetGravity(g rl.Vector3)
	Gravity() rl.Vector3
	SetContactAdded(fn physics.ContactAddedFunc)
}

// NetLookup resolves network ids to nodes. The result is checked against
// world membership before it is handed out. The world calls Track when a
// replicated node joins and Release when it leaves.
type NetLookup interface {
	Lookup(id engine.NetID) *engine.Node
	Track(n *engine.Node)
	Release(n *engine.Node)
}

type FogSettings struct {
	Enabled     bool
	Color       rl.Vector4
	Near        float32
	Far         float32
	Density     float32
	Exponential bool
}

type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

func WithStats(fs *stats.FrameStats) Option {
	return func(w *World) { w.stats = fs }
}

func WithSceneLoader(l SceneLoader) Option {
	return func(w *World) { w.scenes = l }
}

func WithNetLookup(l NetLookup) Option {
	return func(w *World) { w.net = l }
}

// WithSimulation replaces the default physics world.
func WithSimulation(sim Simulation) Option {
	return func(w *World) { w.sim = sim }
}

// WithPhysicsOptions configures the default physics world. Ignored when
// WithSimulation is used.
func WithPhysicsOptions(opts ...physics.Option) Option {
	return func(w *World) { w.physicsOpts = append(w.physicsOpts, opts...) }
}

// WithMaxSubSteps caps the fixed physics steps run per frame. Zero runs a
// single variable step.
func WithMaxSubSteps(n int) Option {
	return func(w *World) { w.maxSubSteps = n }
}

type World struct {
	log         *zap.Logger
	stats       *stats.FrameStats
	sim         Simulation
	physicsOpts []physics.Option
	scenes      SceneLoader
	net         NetLookup

	root            *engine.Node
	queuedRootScene Scene

	nodes      map[uint64]*engine.Node
	primitives map[physics.BodyID]*components.Primitive
	lights     []*components.Light
	audios     []*components.Audio

	repNodes            [engine.NumReplicationRates][]*engine.Node
	repIndex            [engine.NumReplicationRates]int
	repRates            map[uint64]engine.ReplicationRate // bucket each node joined
	incrementalRepTier  engine.ReplicationRate
	incrementalRepIndex int

	lines             []Line
	ambientLightColor rl.Vector4
	shadowColor       rl.Vector4
	fog               FogSettings

	activeCamera  engine.NodeRef
	audioReceiver engine.NodeRef

	gameTickEnabled bool
	maxSubSteps     int
	edgeSmoothing   bool

	previousOverlaps []PrimitivePair
	currentOverlaps  []PrimitivePair
	dispatching      bool
	pendingPurges    []*components.Primitive
	unbegun          []PrimitivePair
}

func New(opts ...Option) *World {
	w := &World{
		log:               zap.NewNop(),
		nodes:             make(map[uint64]*engine.Node),
		primitives:        make(map[physics.BodyID]*components.Primitive),
		repRates:          make(map[uint64]engine.ReplicationRate),
		ambientLightColor: rl.Vector4{X: 0.1, Y: 0.1, Z: 0.1, W: 1},
		shadowColor:       rl.Vector4{X: 0, Y: 0, Z: 0, W: 0.8},
		gameTickEnabled:   true,
		maxSubSteps:       2,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sim == nil {
		popts := append([]physics.Option{physics.WithLogger(w.log)}, w.physicsOpts...)
		w.sim = physics.NewWorld(popts...)
	}
	return w
}

// Destroy tears down the node tree and releases the simulation. The World
// must not be used afterwards except through its nil-safe accessors.
func (w *World) Destroy() {
	w.DestroyRootNode()
	debug.Assert(w.root == nil, "root node survived world teardown")
	w.queuedRootScene = nil
	w.lines = nil
	w.previousOverlaps = nil
	w.currentOverlaps = nil
	w.sim = nil
}

// Clear destroys the node tree but keeps the simulation.
func (w *World) Clear() {
	w.DestroyRootNode()
}

// Simulation exposes the underlying physics world.
func (w *World) Simulation() Simulation {
	return w.sim
}

func (w *World) GetRootNode() *engine.Node {
	return w.root
}

// SetRootNode installs node as the root. The old root leaves the world but is
// not destroyed.
func (w *World) SetRootNode(node *engine.Node) {
	if w.root == node {
		return
	}
	if w.root != nil {
		w.root.SetWorld(nil)
	}
	w.root = node
	if node != nil {
		node.SetWorld(w)
	}
}

func (w *World) DestroyRootNode() {
	if w.root == nil {
		return
	}
	w.root.Destroy()
	w.root = nil
}

// FlushPendingDestroys destroys nodes queued with QueueDestroy. Called once
// per frame after Update, outside of any tree traversal.
func (w *World) FlushPendingDestroys() {
	if w.root == nil {
		return
	}
	w.root.FlushPendingDestroys()
	if w.root.IsPendingDestroy() {
		w.DestroyRootNode()
	}
}

func (w *World) FindByUID(uid uint64) *engine.Node {
	return w.nodes[uid]
}

func (w *World) FindNode(name string) *engine.Node {
	if w.root == nil {
		return nil
	}
	if w.root.Name == name {
		return w.root
	}
	return w.root.FindChild(name, true)
}

func (w *World) FindNodesByTag(tag string) []*engine.Node {
	return w.collect(func(n *engine.Node) bool { return n.HasTag(tag) })
}

func (w *World) FindNodesByName(name string) []*engine.Node {
	return w.collect(func(n *engine.Node) bool { return n.Name == name })
}

func (w *World) collect(match func(*engine.Node) bool) []*engine.Node {
	var out []*engine.Node
	if w.root == nil {
		return out
	}
	w.root.ForEach(func(n *engine.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (w *World) NumNodes() int {
	return len(w.nodes)
}

func (w *World) SetActiveCamera(n *engine.Node) { w.activeCamera.Set(n) }

func (w *World) GetActiveCamera() *engine.Node {
	return w.activeCamera.Get(w)
}

func (w *World) SetAudioReceiver(n *engine.Node) { w.audioReceiver.Set(n) }

// GetAudioReceiver falls back to the active camera when no receiver is set.
func (w *World) GetAudioReceiver() *engine.Node {
	if n := w.audioReceiver.Get(w); n != nil {
		return n
	}
	return w.GetActiveCamera()
}

func (w *World) SetAmbientLightColor(c rl.Vector4) { w.ambientLightColor = c }
func (w *World) GetAmbientLightColor() rl.Vector4  { return w.ambientLightColor }
func (w *World) SetShadowColor(c rl.Vector4)       { w.shadowColor = c }
func (w *World) GetShadowColor() rl.Vector4        { return w.shadowColor }
func (w *World) SetFogSettings(f FogSettings)      { w.fog = f }
func (w *World) GetFogSettings() FogSettings       { return w.fog }

func (w *World) SetGravity(g rl.Vector3) {
	if w.sim != nil {
		w.sim.SetGravity(g)
	}
}

// GetGravity returns the zero vector once the simulation is gone.
func (w *World) GetGravity() rl.Vector3 {
	if w.sim == nil {
		return rl.Vector3{}
	}
	return w.sim.Gravity()
}

// EnableInternalEdgeSmoothing snaps contact normals against triangle meshes to
// the face normal, so bodies slide over the seams between triangles.
func (w *World) EnableInternalEdgeSmoothing(enable bool) {
	w.edgeSmoothing = enable
	if w.sim == nil {
		return
	}
	if enable {
		w.sim.SetContactAdded(physics.SmoothInternalEdges)
	} else {
		w.sim.SetContactAdded(nil)
	}
}

func (w *World) IsInternalEdgeSmoothingEnabled() bool {
	return w.edgeSmoothing
}

func (w *World) SetGameTickEnabled(enabled bool) { w.gameTickEnabled = enabled }
func (w *World) IsGameTickEnabled() bool         { return w.gameTickEnabled }

func (w *World) SetMaxSubSteps(n int) { w.maxSubSteps = n }
