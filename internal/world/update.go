package world

import (
	"mirgo/internal/engine"
	"mirgo/internal/physics"
	"mirgo/internal/stats"
)

// Update advances the world by one frame:
//
//  1. swap in a queued root scene
//  2. step physics (gameplay only)
//  3. dispatch collisions and overlap callbacks (gameplay only)
//  4. age debug lines
//  5. tick the node tree
//  6. rebuild dirty world transforms
func (w *World) Update(deltaTime float32) {
	gameTick := w.gameTickEnabled

	w.timed(stats.PhaseLoad, w.loadQueuedScene)

	if gameTick && w.sim != nil {
		w.timed(stats.PhasePhysics, func() {
			w.pushTransforms()
			w.sim.StepSimulation(deltaTime, w.maxSubSteps)
			w.pullTransforms()
		})
		w.timed(stats.PhaseCollisions, func() {
			w.sim.DispatchAllCollisionPairs()
			w.UpdateCollisions()
		})
		w.stats.SetBodies(w.sim.NumBodies())
	}

	w.timed(stats.PhaseLines, func() { w.UpdateLines(deltaTime) })

	w.timed(stats.PhaseTick, func() {
		if w.root != nil {
			w.root.RecursiveTick(deltaTime, gameTick)
		}
	})

	w.timed(stats.PhaseTransforms, func() {
		if w.root == nil {
			return
		}
		w.root.ForEach(func(n *engine.Node) bool {
			if n.IsTransformDirty() {
				n.UpdateTransform(false)
			}
			return true
		})
	})

	w.stats.FrameDone()
}

func (w *World) timed(phase string, fn func()) {
	defer w.stats.Time(phase)()
	fn()
}

// pushTransforms copies node transforms onto their bodies so that anything
// moved by gameplay code since the last step is seen by the simulation.
func (w *World) pushTransforms() {
	for id, p := range w.primitives {
		p.SyncToBody(w.sim.Body(id))
	}
}

// pullTransforms moves the nodes of dynamic bodies to where the step left them.
func (w *World) pullTransforms() {
	for id, p := range w.primitives {
		if b := w.sim.Body(id); b != nil && b.Type == physics.BodyDynamic {
			p.SyncFromBody(b)
		}
	}
}

var (
	_ engine.Host     = (*World)(nil)
	_ engine.Resolver = (*World)(nil)
	_ Simulation      = (*physics.World)(nil)
)
