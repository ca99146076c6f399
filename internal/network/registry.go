// Package network hands out network ids and walks the world's replication
// buckets. Serialization and transport live elsewhere.
package network

import (
	"sync"

	"mirgo/internal/engine"

	"go.uber.org/zap"
)

// Registry maps network ids to nodes. Ids are never reused while the
// registry lives.
type Registry struct {
	mu     sync.Mutex
	nodes  map[engine.NetID]*engine.Node
	nextID engine.NetID
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		nodes: make(map[engine.NetID]*engine.Node),
		log:   log,
	}
}

// Assign gives n a network id at the given rate. Nodes that already have one
// keep it. Assign must run before n joins a world for the world to bucket it.
func (r *Registry) Assign(n *engine.Node, rate engine.ReplicationRate) engine.NetID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.NetID != engine.InvalidNetID {
		return n.NetID
	}
	if n.World() != nil {
		r.log.Warn("assigning net id to a node already in a world; it will not replicate until it rejoins",
			zap.String("node", n.Name))
	}
	r.nextID++
	n.NetID = r.nextID
	n.ReplicationRate = rate
	r.nodes[n.NetID] = n
	return n.NetID
}

// Track records n under its existing id. The world calls it when a
// replicated node joins, so a node that left and came back is found again.
// An id held by another live node is left alone.
func (r *Registry) Track(n *engine.Node) {
	if n.NetID == engine.InvalidNetID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if held := r.nodes[n.NetID]; held != nil && held != n && !held.IsDestroyed() {
		r.log.Warn("net id already held by another node",
			zap.String("node", n.Name), zap.String("holder", held.Name), zap.Uint32("net_id", uint32(n.NetID)))
		return
	}
	r.nodes[n.NetID] = n
}

// Release forgets n's id. The world calls it when a replicated node leaves.
// The node keeps its NetID field so it can rejoin under the same id.
func (r *Registry) Release(n *engine.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nodes[n.NetID] == n {
		delete(r.nodes, n.NetID)
	}
}

// Lookup returns the node with id. Destroyed nodes are dropped on sight.
func (r *Registry) Lookup(id engine.NetID) *engine.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.nodes[id]
	if n != nil && n.IsDestroyed() {
		delete(r.nodes, id)
		return nil
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}
