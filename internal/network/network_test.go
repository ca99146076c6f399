package network_test

import (
	"testing"

	"mirgo/internal/engine"
	"mirgo/internal/network"
	"mirgo/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegistryAssignsStableIDs(t *testing.T) {
	reg := network.NewRegistry(zaptest.NewLogger(t))
	a := engine.NewNode("A")
	b := engine.NewNode("B")

	idA := reg.Assign(a, engine.ReplicationHigh)
	idB := reg.Assign(b, engine.ReplicationLow)
	assert.NotEqual(t, engine.InvalidNetID, idA)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, idA, reg.Assign(a, engine.ReplicationLow), "reassigning keeps the id")
	assert.Equal(t, engine.ReplicationHigh, a.ReplicationRate)

	assert.Equal(t, a, reg.Lookup(idA))
	reg.Release(a)
	assert.Nil(t, reg.Lookup(idA))
	assert.Equal(t, 1, reg.Len())

	b.Destroy()
	assert.Nil(t, reg.Lookup(idB), "destroyed nodes are pruned")
	assert.Equal(t, 0, reg.Len())
}

func TestWorldResolvesNetNodesThroughRegistry(t *testing.T) {
	reg := network.NewRegistry(nil)
	w := world.New(world.WithLogger(zaptest.NewLogger(t)), world.WithNetLookup(reg))
	root := engine.NewNode("Root")
	w.SetRootNode(root)

	n := engine.NewNode("Crate")
	id := reg.Assign(n, engine.ReplicationMedium)
	root.AddChild(n)

	assert.Equal(t, n, w.GetNetNode(id))
	require.Len(t, w.ReplicatedNodes(engine.ReplicationMedium), 1)

	root.RemoveChild(n)
	assert.Nil(t, w.GetNetNode(id), "known to the registry but no longer in the world")
	assert.Empty(t, w.ReplicatedNodes(engine.ReplicationMedium))
}

// crateLevel builds a root with three replicated crates every time it is
// instantiated, the way the asset loader does.
type crateLevel struct{ reg *network.Registry }

func (l crateLevel) Instantiate() (*engine.Node, error) {
	root := engine.NewNode("Level")
	for range 3 {
		crate := engine.NewNode("Crate")
		l.reg.Assign(crate, engine.ReplicationMedium)
		root.AddChild(crate)
	}
	return root, nil
}

func (l crateLevel) LoadScene(string) (world.Scene, error) { return l, nil }

func TestReloadingSceneReleasesNetIDs(t *testing.T) {
	reg := network.NewRegistry(nil)
	level := crateLevel{reg: reg}
	w := world.New(world.WithLogger(zaptest.NewLogger(t)), world.WithNetLookup(reg), world.WithSceneLoader(level))

	for range 5 {
		require.NoError(t, w.QueueRootScene("level"))
		w.Update(1.0 / 60.0)
		assert.Equal(t, 3, reg.Len())
		assert.Len(t, w.ReplicatedNodes(engine.ReplicationMedium), 3)
	}
}

func TestRemovedNodeRejoinsUnderItsID(t *testing.T) {
	reg := network.NewRegistry(nil)
	w := world.New(world.WithLogger(zaptest.NewLogger(t)), world.WithNetLookup(reg))
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	n := engine.NewNode("Crate")
	id := reg.Assign(n, engine.ReplicationLow)
	root.AddChild(n)

	root.RemoveChild(n)
	assert.Equal(t, 0, reg.Len())
	assert.Nil(t, reg.Lookup(id))

	root.AddChild(n)
	assert.Equal(t, id, n.NetID)
	assert.Equal(t, n, w.GetNetNode(id))
	assert.Equal(t, 1, reg.Len())
}

func buildBucket(t *testing.T, count int) (*world.World, []*engine.Node) {
	t.Helper()
	reg := network.NewRegistry(nil)
	w := world.New(world.WithLogger(zaptest.NewLogger(t)), world.WithNetLookup(reg))
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	nodes := make([]*engine.Node, count)
	for i := range nodes {
		nodes[i] = engine.NewNode("Rep")
		reg.Assign(nodes[i], engine.ReplicationHigh)
		root.AddChild(nodes[i])
	}
	return w, nodes
}

func TestCollectWrapsAroundTheBucket(t *testing.T) {
	w, nodes := buildBucket(t, 3)

	assert.Equal(t, nodes[:2], network.Collect(w, engine.ReplicationHigh, 2))
	assert.Equal(t, 2, w.ReplicationIndex(engine.ReplicationHigh))
	assert.Equal(t, []*engine.Node{nodes[2], nodes[0]}, network.Collect(w, engine.ReplicationHigh, 2))
	assert.Equal(t, 1, w.ReplicationIndex(engine.ReplicationHigh))

	assert.Len(t, network.Collect(w, engine.ReplicationHigh, 10), 3, "budget is capped at the bucket size")
	assert.Nil(t, network.Collect(w, engine.ReplicationLow, 4))
}

func TestCollectSkipsNothingWhenNodesLeave(t *testing.T) {
	w, nodes := buildBucket(t, 5)

	first := network.Collect(w, engine.ReplicationHigh, 2)
	assert.Equal(t, nodes[:2], first)

	// removing an already visited node shifts the cursor back with the bucket
	nodes[0].Destroy()
	assert.Equal(t, []*engine.Node{nodes[2], nodes[3]}, network.Collect(w, engine.ReplicationHigh, 2))

	// removing the node under the cursor wraps to the front
	nodes[4].Destroy()
	assert.Equal(t, []*engine.Node{nodes[1]}, network.Collect(w, engine.ReplicationHigh, 1))
}

func TestReplicatorVisitsHighRatesFirst(t *testing.T) {
	reg := network.NewRegistry(nil)
	w := world.New(world.WithLogger(zaptest.NewLogger(t)))
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	low := engine.NewNode("Low")
	high := engine.NewNode("High")
	reg.Assign(low, engine.ReplicationLow)
	reg.Assign(high, engine.ReplicationHigh)
	root.AddChild(low)
	root.AddChild(high)

	var order []string
	network.NewReplicator().Tick(w, func(n *engine.Node, rate engine.ReplicationRate) {
		order = append(order, n.Name+":"+rate.String())
	})
	require.Len(t, order, 2)
	assert.Equal(t, "High:"+engine.ReplicationHigh.String(), order[0])
	assert.Equal(t, "Low:"+engine.ReplicationLow.String(), order[1])
}
