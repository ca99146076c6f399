package world

import (
	"slices"

	"mirgo/internal/components"
	"mirgo/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PrimitivePair is one side of an overlap: Observer is told when it begins
// and ends touching Other. Every overlap is stored as two pairs, one per side.
type PrimitivePair struct {
	Observer *components.Primitive
	Other    *components.Primitive
}

func (p PrimitivePair) involves(prim *components.Primitive) bool {
	return p.Observer == prim || p.Other == prim
}

// GetOverlaps returns the overlap pairs recorded by the last collision pass.
func (w *World) GetOverlaps() []PrimitivePair {
	return w.currentOverlaps
}

// UpdateCollisions turns the simulation's contact manifolds into collision
// and overlap callbacks. It must run right after DispatchAllCollisionPairs.
func (w *World) UpdateCollisions() {
	if w.sim == nil {
		return
	}

	w.previousOverlaps, w.currentOverlaps = w.currentOverlaps, w.previousOverlaps[:0]
	w.unbegun = w.unbegun[:0]
	w.dispatching = true

	// Callbacks may destroy nodes, which removes bodies and compacts the
	// simulation's manifold list in place.
	manifolds := slices.Clone(w.sim.Manifolds())
	w.stats.SetManifolds(len(manifolds))

	for i := range manifolds {
		w.dispatchManifold(&manifolds[i])
	}

	for _, pair := range slices.Clone(w.currentOverlaps) {
		if slices.Contains(w.previousOverlaps, pair) {
			continue
		}
		if w.isPurgePending(pair.Observer) || w.isPurgePending(pair.Other) {
			w.unbegun = append(w.unbegun, pair)
			continue
		}
		pair.Observer.BeginOverlap(pair.Other)
	}

	for _, pair := range slices.Clone(w.previousOverlaps) {
		if !slices.Contains(w.currentOverlaps, pair) {
			pair.Observer.EndOverlap(pair.Other)
		}
	}

	for len(w.pendingPurges) > 0 {
		for _, p := range w.takePendingPurges() {
			w.endPairsOf(p)
		}
	}
	w.dispatching = false

	w.stats.SetOverlaps(len(w.currentOverlaps))
}

func (w *World) dispatchManifold(m *physics.Manifold) {
	if len(m.Points) == 0 {
		return
	}
	primA, primB := w.primitives[m.BodyA], w.primitives[m.BodyB]
	if primA == nil || primB == nil || primA == primB {
		return
	}

	if primA.IsCollisionEnabled() && primB.IsCollisionEnabled() {
		var normal, onA, onB rl.Vector3
		for _, cp := range m.Points {
			normal = rl.Vector3Add(normal, cp.NormalWorldOnB)
			onA = rl.Vector3Add(onA, cp.PositionWorldOnA)
			onB = rl.Vector3Add(onB, cp.PositionWorldOnB)
		}
		inv := 1 / float32(len(m.Points))
		normal = rl.Vector3Normalize(normal)
		onA = rl.Vector3Scale(onA, inv)
		onB = rl.Vector3Scale(onB, inv)

		primA.OnCollision(primB, onA, normal)
		primB.OnCollision(primA, onB, rl.Vector3Negate(normal))
	}

	if primA.AreOverlapsEnabled() && primB.AreOverlapsEnabled() {
		pair := PrimitivePair{Observer: primA, Other: primB}
		if !slices.Contains(w.currentOverlaps, pair) {
			w.currentOverlaps = append(w.currentOverlaps,
				pair,
				PrimitivePair{Observer: primB, Other: primA},
			)
		}
	}
}

// PurgeOverlaps ends every overlap involving prim and forgets it. Called when
// prim leaves the world. During a collision pass the purge is applied once
// the pass reaches a point where it cannot double-fire a callback.
func (w *World) PurgeOverlaps(prim *components.Primitive) {
	if w.dispatching {
		if !w.isPurgePending(prim) {
			w.pendingPurges = append(w.pendingPurges, prim)
		}
		return
	}
	w.endPairsOf(prim)
}

// endPairsOf removes the current pairs involving prim, firing EndOverlap for
// those that had begun. Pairs that were skipped by the begin pass of a
// collision pass are dropped silently.
func (w *World) endPairsOf(prim *components.Primitive) {
	var ended []PrimitivePair
	kept := w.currentOverlaps[:0]
	for _, pair := range w.currentOverlaps {
		if !pair.involves(prim) {
			kept = append(kept, pair)
			continue
		}
		if i := slices.Index(w.unbegun, pair); i >= 0 {
			w.unbegun = slices.Delete(w.unbegun, i, i+1)
			continue
		}
		ended = append(ended, pair)
	}
	clear(w.currentOverlaps[len(kept):])
	w.currentOverlaps = kept

	for _, pair := range ended {
		pair.Observer.EndOverlap(pair.Other)
	}
}

func (w *World) isPurgePending(prim *components.Primitive) bool {
	return slices.Contains(w.pendingPurges, prim)
}

func (w *World) takePendingPurges() []*components.Primitive {
	pending := w.pendingPurges
	w.pendingPurges = nil
	return pending
}
