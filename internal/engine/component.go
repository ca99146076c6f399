package engine

import rl "github.com/gen2brain/raylib-go/raylib"

type Component interface {
	Start()
	Update(deltaTime float32)
	SetNode(n *Node)
	GetNode() *Node
}

// CollisionHandler is implemented by components that want contact callbacks.
// point and normal are averaged over the manifold; normal points away from other.
type CollisionHandler interface {
	OnCollision(other *Node, point, normal rl.Vector3)
}

// OverlapHandler is implemented by components that want to know when another
// node starts or stops touching this one.
type OverlapHandler interface {
	OnBeginOverlap(other *Node)
	OnEndOverlap(other *Node)
}

// EditorUpdater components keep ticking while gameplay is paused.
type EditorUpdater interface {
	EditorUpdate(deltaTime float32)
}

// Destroyer components are told when their node is destroyed.
type Destroyer interface {
	OnDestroy()
}

// BaseComponent provides default implementation for Component interface
type BaseComponent struct {
	node *Node
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetNode(n *Node) {
	b.node = n
}

func (b *BaseComponent) GetNode() *Node {
	return b.node
}
