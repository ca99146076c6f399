package network

import "mirgo/internal/engine"

// Buckets is the world's view of its replicated nodes.
type Buckets interface {
	ReplicatedNodes(rate engine.ReplicationRate) []*engine.Node
	ReplicationIndex(rate engine.ReplicationRate) int
	SetReplicationIndex(rate engine.ReplicationRate, i int)
}

// Collect returns up to budget nodes from the rate's bucket, starting at the
// bucket's cursor and wrapping around, and moves the cursor past them. Across
// calls every node is visited once per lap even when nodes leave the world in
// between.
func Collect(b Buckets, rate engine.ReplicationRate, budget int) []*engine.Node {
	nodes := b.ReplicatedNodes(rate)
	if len(nodes) == 0 || budget <= 0 {
		b.SetReplicationIndex(rate, 0)
		return nil
	}
	budget = min(budget, len(nodes))

	start := b.ReplicationIndex(rate)
	if start >= len(nodes) || start < 0 {
		start = 0
	}

	out := make([]*engine.Node, 0, budget)
	i := start
	for range budget {
		out = append(out, nodes[i])
		i = (i + 1) % len(nodes)
	}
	b.SetReplicationIndex(rate, i)
	return out
}

// Replicator hands out per-frame batches for every rate, most frequent first.
type Replicator struct {
	Budget [engine.NumReplicationRates]int
}

func NewReplicator() *Replicator {
	return &Replicator{
		Budget: [engine.NumReplicationRates]int{
			engine.ReplicationLow:    4,
			engine.ReplicationMedium: 8,
			engine.ReplicationHigh:   16,
		},
	}
}

// Tick collects this frame's nodes, calling send for each in rate order
// high to low.
func (r *Replicator) Tick(b Buckets, send func(n *engine.Node, rate engine.ReplicationRate)) {
	for rate := engine.NumReplicationRates - 1; ; rate-- {
		for _, n := range Collect(b, rate, r.Budget[rate]) {
			send(n, rate)
		}
		if rate == 0 {
			return
		}
	}
}
