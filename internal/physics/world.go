package physics

import (
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Spatial grid cell size - bodies sharing a cell are narrow-phased together
const CellSize = 5.0

// maxCellsPerBody sends bodies that would occupy more cells than this to the
// oversized list, which is paired against everything.
const maxCellsPerBody = 64

// Cell key for spatial hashing
type CellKey struct {
	X, Y, Z int
}

// ContactAddedFunc is called for every new contact point before it is stored
// in a manifold. It may rewrite the point.
type ContactAddedFunc func(cp *ContactPoint, a, b *Body)

type Option func(*World)

func WithGravity(g rl.Vector3) Option {
	return func(w *World) { w.gravity = g }
}

func WithFixedTimeStep(step float32) Option {
	return func(w *World) {
		if step > 0 {
			w.fixedTimeStep = step
		}
	}
}

func WithCellSize(size float32) Option {
	return func(w *World) {
		if size > 0 {
			w.cellSize = size
		}
	}
}

func WithContactAdded(fn ContactAddedFunc) Option {
	return func(w *World) { w.contactAdded = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

type pairKey struct {
	lo, hi BodyID
}

// World is a small rigid body world: bodies, a grid broadphase, a narrowphase
// producing manifolds, and an impulse solver.
type World struct {
	gravity       rl.Vector3
	fixedTimeStep float32
	cellSize      float32
	accumulator   float32

	bodies map[BodyID]*Body
	order  []*Body // insertion order, used for deterministic iteration
	nextID BodyID

	grid      map[CellKey][]*Body
	oversized []*Body

	manifolds    []Manifold
	contactAdded ContactAddedFunc

	log *zap.Logger
}

func NewWorld(opts ...Option) *World {
	w := &World{
		gravity:       rl.Vector3{X: 0, Y: -10, Z: 0},
		fixedTimeStep: 1.0 / 60.0,
		cellSize:      CellSize,
		bodies:        make(map[BodyID]*Body),
		grid:          make(map[CellKey][]*Body),
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) SetGravity(g rl.Vector3) { w.gravity = g }
func (w *World) Gravity() rl.Vector3     { return w.gravity }

func (w *World) SetContactAdded(fn ContactAddedFunc) { w.contactAdded = fn }
func (w *World) ContactAdded() ContactAddedFunc      { return w.contactAdded }

// AddBody assigns an ID to b and inserts it into the world.
func (w *World) AddBody(b *Body) BodyID {
	w.nextID++
	b.ID = w.nextID
	w.bodies[b.ID] = b
	w.order = append(w.order, b)
	return b.ID
}

// RemoveBody removes the body and drops any manifolds that reference it.
func (w *World) RemoveBody(id BodyID) {
	if _, ok := w.bodies[id]; !ok {
		return
	}
	delete(w.bodies, id)
	for i, b := range w.order {
		if b.ID == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	kept := w.manifolds[:0]
	for _, m := range w.manifolds {
		if m.BodyA != id && m.BodyB != id {
			kept = append(kept, m)
		}
	}
	w.manifolds = kept
}

func (w *World) Body(id BodyID) *Body {
	return w.bodies[id]
}

func (w *World) NumBodies() int {
	return len(w.order)
}

// Manifolds returns the contact manifolds from the last step or dispatch.
func (w *World) Manifolds() []Manifold {
	return w.manifolds
}

// StepSimulation advances the world by dt. With maxSubSteps > 0 time is
// consumed in fixed steps and at most maxSubSteps are run; leftover time is
// carried to the next call. With maxSubSteps == 0 a single step of dt is taken.
// Returns the number of steps taken.
func (w *World) StepSimulation(dt float32, maxSubSteps int) int {
	if maxSubSteps <= 0 {
		if dt > 0 {
			w.singleStep(dt)
			return 1
		}
		return 0
	}

	w.accumulator += dt
	steps := int(w.accumulator / w.fixedTimeStep)
	if steps == 0 {
		return 0
	}
	w.accumulator -= float32(steps) * w.fixedTimeStep

	if steps > maxSubSteps {
		w.log.Debug("physics: dropping substeps",
			zap.Int("wanted", steps), zap.Int("max", maxSubSteps))
		steps = maxSubSteps
	}
	for i := 0; i < steps; i++ {
		w.singleStep(w.fixedTimeStep)
	}
	return steps
}

func (w *World) singleStep(dt float32) {
	w.integrate(dt)
	w.DispatchAllCollisionPairs()
	w.solve()
}

func (w *World) integrate(dt float32) {
	for _, b := range w.order {
		if b.Type != BodyDynamic {
			continue
		}
		if b.UseGravity {
			b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(w.gravity, dt))
		}
		b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, dt))
	}
}

// DispatchAllCollisionPairs rebuilds the manifold list from the current body
// positions without moving anything.
func (w *World) DispatchAllCollisionPairs() {
	w.manifolds = w.manifolds[:0]

	for _, key := range w.candidatePairs() {
		a, b := w.bodies[key.lo], w.bodies[key.hi]
		points := generateContacts(a, b)
		if len(points) == 0 {
			continue
		}

		kept := points[:0]
		for i := range points {
			cp := points[i]
			if cp.Distance > ContactBreakingThreshold {
				continue
			}
			if w.contactAdded != nil {
				w.contactAdded(&cp, a, b)
			}
			kept = append(kept, cp)
		}
		if len(kept) == 0 {
			continue
		}
		w.manifolds = append(w.manifolds, Manifold{BodyA: a.ID, BodyB: b.ID, Points: kept})
	}
}

func (w *World) cellRange(bounds AABB) (lo, hi CellKey) {
	toCell := func(v float32) int {
		return int(math.Floor(float64(v / w.cellSize)))
	}
	lo = CellKey{toCell(bounds.Min.X), toCell(bounds.Min.Y), toCell(bounds.Min.Z)}
	hi = CellKey{toCell(bounds.Max.X), toCell(bounds.Max.Y), toCell(bounds.Max.Z)}
	return lo, hi
}

// rebuildGrid clears and repopulates the spatial hash grid
func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	w.oversized = w.oversized[:0]

	margin := rl.Vector3{X: ContactBreakingThreshold, Y: ContactBreakingThreshold, Z: ContactBreakingThreshold}
	for _, b := range w.order {
		lo, hi := w.cellRange(b.Bounds().Expand(margin))
		cells := (hi.X - lo.X + 1) * (hi.Y - lo.Y + 1) * (hi.Z - lo.Z + 1)
		if cells > maxCellsPerBody || cells <= 0 {
			w.oversized = append(w.oversized, b)
			continue
		}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := CellKey{x, y, z}
					w.grid[key] = append(w.grid[key], b)
				}
			}
		}
	}
}

// candidatePairs runs the broadphase and returns sorted, deduplicated pairs
// whose expanded bounds overlap and that pass the collision filter.
func (w *World) candidatePairs() []pairKey {
	w.rebuildGrid()

	seen := make(map[pairKey]struct{})
	var pairs []pairKey
	consider := func(a, b *Body) {
		if a == b {
			return
		}
		key := pairKey{lo: a.ID, hi: b.ID}
		if key.lo > key.hi {
			key.lo, key.hi = key.hi, key.lo
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		if !needsCollision(a, b) {
			return
		}
		margin := rl.Vector3{X: ContactBreakingThreshold, Y: ContactBreakingThreshold, Z: ContactBreakingThreshold}
		if !a.Bounds().Expand(margin).Intersects(b.Bounds()) {
			return
		}
		pairs = append(pairs, key)
	}

	for _, cell := range w.grid {
		for i := 0; i < len(cell); i++ {
			for j := i + 1; j < len(cell); j++ {
				consider(cell[i], cell[j])
			}
		}
	}
	for _, big := range w.oversized {
		for _, other := range w.order {
			consider(big, other)
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].lo != pairs[j].lo {
			return pairs[i].lo < pairs[j].lo
		}
		return pairs[i].hi < pairs[j].hi
	})
	return pairs
}

// needsCollision mirrors the default dispatcher rule: at least one body must
// be dynamic and the group/mask filter must pass both ways.
func needsCollision(a, b *Body) bool {
	if !a.IsDynamic() && !b.IsDynamic() {
		return false
	}
	return a.collidesWith(b)
}
