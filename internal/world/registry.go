package world

import (
	"slices"

	"mirgo/internal/components"
	"mirgo/internal/debug"
	"mirgo/internal/engine"
	"mirgo/internal/physics"

	"go.uber.org/zap"
)

// RegisterNode is called by a node when it joins the world. It implements
// engine.Host.
func (w *World) RegisterNode(n *engine.Node) {
	debug.Assert(w.nodes[n.UID] == nil, "node %q registered twice", n.Name)
	w.nodes[n.UID] = n

	if a := engine.GetComponent[*components.Audio](n); a != nil {
		debug.Assert(!slices.Contains(w.audios, a), "audio on %q already tracked", n.Name)
		w.audios = append(w.audios, a)
	} else if l := engine.GetComponent[*components.Light](n); l != nil {
		debug.Assert(!slices.Contains(w.lights, l), "light on %q already tracked", n.Name)
		w.lights = append(w.lights, l)
	}

	if p := engine.GetComponent[*components.Primitive](n); p != nil && w.sim != nil {
		debug.Assert(p.BodyID() == physics.InvalidBody, "primitive on %q already has a body", n.Name)
		id := w.sim.AddBody(p.BuildBody())
		p.SetBodyID(id)
		w.primitives[id] = p
	}

	if c := engine.GetComponent[*components.Camera](n); c != nil && c.IsMain && w.GetActiveCamera() == nil {
		w.SetActiveCamera(n)
	}

	if n.NetID != engine.InvalidNetID {
		rate := n.ReplicationRate
		debug.Assert(rate < engine.NumReplicationRates, "bad replication rate %d", rate)
		w.repNodes[rate] = append(w.repNodes[rate], n)
		w.repRates[n.UID] = rate
		if w.net != nil {
			w.net.Track(n)
		}
	}

	w.stats.SetNodes(len(w.nodes))
}

// UnregisterNode is called by a node when it leaves the world. Its body is
// removed and any overlaps it was part of end immediately.
func (w *World) UnregisterNode(n *engine.Node) {
	debug.Assert(w.nodes[n.UID] == n, "unregistering unknown node %q", n.Name)
	delete(w.nodes, n.UID)

	if a := engine.GetComponent[*components.Audio](n); a != nil {
		i := slices.Index(w.audios, a)
		debug.Assert(i >= 0, "audio on %q not tracked", n.Name)
		if i >= 0 {
			w.audios = slices.Delete(w.audios, i, i+1)
		}
	} else if l := engine.GetComponent[*components.Light](n); l != nil {
		i := slices.Index(w.lights, l)
		debug.Assert(i >= 0, "light on %q not tracked", n.Name)
		if i >= 0 {
			w.lights = slices.Delete(w.lights, i, i+1)
		}
	}

	if p := engine.GetComponent[*components.Primitive](n); p != nil && p.BodyID() != physics.InvalidBody {
		w.PurgeOverlaps(p)
		delete(w.primitives, p.BodyID())
		if w.sim != nil {
			w.sim.RemoveBody(p.BodyID())
		}
		p.SetBodyID(physics.InvalidBody)
	}

	if n.NetID != engine.InvalidNetID {
		w.removeReplicated(n)
		if w.net != nil {
			w.net.Release(n)
		}
	}

	w.stats.SetNodes(len(w.nodes))
}

// removeReplicated drops n from the bucket it joined, even if its rate has
// changed since. A removal before the cursor shifts the remaining nodes down,
// so the cursor follows to avoid skipping one.
func (w *World) removeReplicated(n *engine.Node) {
	rate, ok := w.repRates[n.UID]
	if !ok {
		rate = n.ReplicationRate
	}
	delete(w.repRates, n.UID)
	if rate != n.ReplicationRate {
		w.log.Warn("replication rate changed while in the world",
			zap.String("node", n.Name), zap.Stringer("joined", rate), zap.Stringer("now", n.ReplicationRate))
	}
	bucket := w.repNodes[rate]
	i := slices.Index(bucket, n)
	if i < 0 {
		w.log.Warn("replicated node missing from its bucket",
			zap.String("node", n.Name), zap.Stringer("rate", rate))
		return
	}
	w.repNodes[rate] = slices.Delete(bucket, i, i+1)
	if w.repIndex[rate] > 0 && w.repIndex[rate] > i {
		w.repIndex[rate]--
	}
}

// GetNetNode returns the node with the given network id, or nil if it is not
// part of this world.
func (w *World) GetNetNode(id engine.NetID) *engine.Node {
	if id == engine.InvalidNetID {
		return nil
	}
	var n *engine.Node
	if w.net != nil {
		n = w.net.Lookup(id)
	} else {
	scan:
		for _, bucket := range w.repNodes {
			for _, candidate := range bucket {
				if candidate.NetID == id {
					n = candidate
					break scan
				}
			}
		}
	}
	if n == nil || n.World() != engine.Host(w) || w.nodes[n.UID] != n {
		return nil
	}
	return n
}

func (w *World) GetLights() []*components.Light {
	return w.lights
}

func (w *World) GetAudios() []*components.Audio {
	return w.audios
}

// PrimitiveForBody returns the primitive that owns the body, or nil.
func (w *World) PrimitiveForBody(id physics.BodyID) *components.Primitive {
	return w.primitives[id]
}

// Primitives returns every registered primitive in body id order.
func (w *World) Primitives() []*components.Primitive {
	ids := make([]physics.BodyID, 0, len(w.primitives))
	for id := range w.primitives {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*components.Primitive, len(ids))
	for i, id := range ids {
		out[i] = w.primitives[id]
	}
	return out
}

func (w *World) ReplicatedNodes(rate engine.ReplicationRate) []*engine.Node {
	debug.Assert(rate < engine.NumReplicationRates, "bad replication rate %d", rate)
	return w.repNodes[rate]
}

// ReplicationIndex is the network layer's cursor into the rate's bucket.
func (w *World) ReplicationIndex(rate engine.ReplicationRate) int {
	debug.Assert(rate < engine.NumReplicationRates, "bad replication rate %d", rate)
	return w.repIndex[rate]
}

func (w *World) SetReplicationIndex(rate engine.ReplicationRate, i int) {
	debug.Assert(rate < engine.NumReplicationRates, "bad replication rate %d", rate)
	w.repIndex[rate] = i
}

func (w *World) IncrementalRepTier() engine.ReplicationRate { return w.incrementalRepTier }
func (w *World) SetIncrementalRepTier(r engine.ReplicationRate) {
	w.incrementalRepTier = r
}

func (w *World) IncrementalRepIndex() int     { return w.incrementalRepIndex }
func (w *World) SetIncrementalRepIndex(i int) { w.incrementalRepIndex = i }
