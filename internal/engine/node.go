package engine

import (
	"math"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

// NetID identifies a node across the network. Zero means not replicated.
type NetID uint32

const InvalidNetID NetID = 0

type ReplicationRate uint8

const (
	ReplicationLow ReplicationRate = iota
	ReplicationMedium
	ReplicationHigh

	NumReplicationRates
)

func (r ReplicationRate) String() string {
	switch r {
	case ReplicationLow:
		return "low"
	case ReplicationMedium:
		return "medium"
	case ReplicationHigh:
		return "high"
	}
	return "unknown"
}

// Host is the world a node tree lives in. The node calls RegisterNode when it
// joins and UnregisterNode when it leaves.
type Host interface {
	RegisterNode(n *Node)
	UnregisterNode(n *Node)
}

var uidCounter atomic.Uint64

type Node struct {
	UID       uint64 // stable handle, never reused
	Name      string
	Tags      []string
	Transform Transform
	Active    bool
	Parent    *Node
	Children  []*Node

	NetID           NetID
	ReplicationRate ReplicationRate

	components []Component
	typeID     TypeID
	typeName   string

	world          Host
	started        bool
	pendingDestroy bool
	destroyed      bool

	transformDirty bool
	worldMatrix    rl.Matrix
}

func NewNode(name string) *Node {
	return &Node{
		UID:    uidCounter.Add(1),
		Name:   name,
		Active: true,
		Transform: Transform{
			Scale: rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components:     make([]Component, 0),
		Children:       make([]*Node, 0),
		transformDirty: true,
		worldMatrix:    rl.MatrixIdentity(),
	}
}

func (n *Node) TypeID() TypeID    { return n.typeID }
func (n *Node) TypeName() string  { return n.typeName }
func (n *Node) World() Host       { return n.world }
func (n *Node) IsDestroyed() bool { return n.destroyed }

// AddComponent attaches c. If the node is already in a world it is registered
// again so the world sees the new component.
func (n *Node) AddComponent(c Component) {
	c.SetNode(n)
	if n.world == nil {
		n.components = append(n.components, c)
		return
	}
	w := n.world
	w.UnregisterNode(n)
	n.components = append(n.components, c)
	w.RegisterNode(n)
}

// GetComponent returns the first component of type T, or the zero value.
func GetComponent[T any](n *Node) T {
	var zero T
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (n *Node) Components() []Component {
	return n.components
}

func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddChild reparents child under n. The child joins n's world.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkTransformDirty()
	child.SetWorld(n.world)
}

// RemoveChild detaches child and removes it from the world.
func (n *Node) RemoveChild(child *Node) {
	if n.detach(child) {
		child.MarkTransformDirty()
		child.SetWorld(nil)
	}
}

func (n *Node) detach(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// FindChild returns the first child named name, searching depth-first when
// recurse is set.
func (n *Node) FindChild(name string, recurse bool) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	if recurse {
		for _, c := range n.Children {
			if found := c.FindChild(name, true); found != nil {
				return found
			}
		}
	}
	return nil
}

// ForEach visits n and its descendants depth-first. Returning false from fn
// skips that node's subtree.
func (n *Node) ForEach(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.ForEach(fn)
	}
}

// SetWorld moves the subtree rooted at n into h, unregistering from the
// previous world first. A nil h removes the subtree from any world.
func (n *Node) SetWorld(h Host) {
	if n.world != h {
		if n.world != nil {
			n.world.UnregisterNode(n)
		}
		n.world = h
		if h != nil {
			h.RegisterNode(n)
		}
	}
	for _, c := range n.Children {
		c.SetWorld(h)
	}
}

// Destroy tears down the subtree immediately: children first, then n leaves
// its parent and its world, then its components get OnDestroy.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}

	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		c.Destroy()
	}

	// Leaving the world ends overlaps, and those callbacks still reach live
	// components.
	if n.Parent != nil {
		n.Parent.detach(n)
	}
	n.SetWorld(nil)

	for _, c := range n.components {
		if d, ok := c.(Destroyer); ok {
			d.OnDestroy()
		}
	}
	n.destroyed = true
	n.pendingDestroy = false
}

// QueueDestroy marks n for destruction at the next FlushPendingDestroys.
func (n *Node) QueueDestroy() {
	n.pendingDestroy = true
}

func (n *Node) IsPendingDestroy() bool {
	return n.pendingDestroy
}

// FlushPendingDestroys destroys every descendant marked with QueueDestroy. n
// itself is left to its owner.
func (n *Node) FlushPendingDestroys() {
	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		if c.pendingDestroy {
			c.Destroy()
		} else {
			c.FlushPendingDestroys()
		}
	}
}

// Tick runs the node's own components. With gameTick unset only editor
// updates run.
func (n *Node) Tick(deltaTime float32, gameTick bool) {
	if !gameTick {
		for _, c := range n.components {
			if e, ok := c.(EditorUpdater); ok {
				e.EditorUpdate(deltaTime)
			}
		}
		return
	}

	if !n.started {
		n.started = true
		for _, c := range n.components {
			c.Start()
		}
	}
	for _, c := range n.components {
		c.Update(deltaTime)
	}
}

// RecursiveTick ticks n and then its children. Children added or removed
// during the tick are picked up next frame.
func (n *Node) RecursiveTick(deltaTime float32, gameTick bool) {
	if !n.Active || n.destroyed {
		return
	}
	n.Tick(deltaTime, gameTick)

	children := append([]*Node(nil), n.Children...)
	for _, c := range children {
		if c.Parent == n {
			c.RecursiveTick(deltaTime, gameTick)
		}
	}
}

func (n *Node) SetPosition(p rl.Vector3) {
	n.Transform.Position = p
	n.MarkTransformDirty()
}

func (n *Node) SetRotation(r rl.Vector3) {
	n.Transform.Rotation = r
	n.MarkTransformDirty()
}

func (n *Node) SetScale(s rl.Vector3) {
	n.Transform.Scale = s
	n.MarkTransformDirty()
}

// MarkTransformDirty flags n and its descendants for a world matrix rebuild.
func (n *Node) MarkTransformDirty() {
	n.transformDirty = true
	for _, c := range n.Children {
		c.MarkTransformDirty()
	}
}

func (n *Node) IsTransformDirty() bool {
	return n.transformDirty
}

// UpdateTransform rebuilds the cached world matrix from the parent's.
func (n *Node) UpdateTransform(updateChildren bool) {
	local := rl.MatrixMultiply(
		rl.MatrixMultiply(
			rl.MatrixScale(n.Transform.Scale.X, n.Transform.Scale.Y, n.Transform.Scale.Z),
			rotationMatrix(n.Transform.Rotation),
		),
		rl.MatrixTranslate(n.Transform.Position.X, n.Transform.Position.Y, n.Transform.Position.Z),
	)
	if n.Parent != nil {
		local = rl.MatrixMultiply(local, n.Parent.WorldMatrix())
	}
	n.worldMatrix = local
	n.transformDirty = false

	if updateChildren {
		for _, c := range n.Children {
			c.UpdateTransform(true)
		}
	}
}

// WorldMatrix returns the cached world matrix, rebuilding it if stale.
func (n *Node) WorldMatrix() rl.Matrix {
	if n.transformDirty {
		n.UpdateTransform(false)
	}
	return n.worldMatrix
}

func (n *Node) WorldPosition() rl.Vector3 {
	m := n.WorldMatrix()
	return rl.Vector3{X: m.M12, Y: m.M13, Z: m.M14}
}

// SetWorldPosition moves n so that its world position becomes p.
func (n *Node) SetWorldPosition(p rl.Vector3) {
	if n.Parent != nil {
		p = rl.Vector3Transform(p, rl.MatrixInvert(n.Parent.WorldMatrix()))
	}
	n.SetPosition(p)
}

// WorldRotation sums Euler angles up the tree. It is exact only while the
// ancestors rotate about a single axis; use WorldRotationQuat for orientation.
func (n *Node) WorldRotation() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Rotation
	}
	return rl.Vector3Add(n.Parent.WorldRotation(), n.Transform.Rotation)
}

// WorldRotationQuat is the orientation of the world matrix with scale
// divided out.
func (n *Node) WorldRotationQuat() rl.Quaternion {
	m := n.WorldMatrix()
	sx := axisLength(m.M0, m.M1, m.M2)
	sy := axisLength(m.M4, m.M5, m.M6)
	sz := axisLength(m.M8, m.M9, m.M10)
	r := rl.Matrix{
		M0: m.M0 / sx, M1: m.M1 / sx, M2: m.M2 / sx,
		M4: m.M4 / sy, M5: m.M5 / sy, M6: m.M6 / sy,
		M8: m.M8 / sz, M9: m.M9 / sz, M10: m.M10 / sz,
		M15: 1,
	}
	return rl.QuaternionNormalize(rl.QuaternionFromMatrix(r))
}

// axisLength is the scale along one matrix axis. Degenerate axes count as 1
// so the division above stays finite.
func axisLength(x, y, z float32) float32 {
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l < 1e-6 {
		return 1
	}
	return l
}

func (n *Node) WorldScale() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Scale
	}
	ps := n.Parent.WorldScale()
	return rl.Vector3{
		X: ps.X * n.Transform.Scale.X,
		Y: ps.Y * n.Transform.Scale.Y,
		Z: ps.Z * n.Transform.Scale.Z,
	}
}

// rotationMatrix applies X then Y then Z, matching the renderer.
func rotationMatrix(deg rl.Vector3) rl.Matrix {
	rotX := rl.MatrixRotateX(float32(float64(deg.X) * math.Pi / 180))
	rotY := rl.MatrixRotateY(float32(float64(deg.Y) * math.Pi / 180))
	rotZ := rl.MatrixRotateZ(float32(float64(deg.Z) * math.Pi / 180))
	return rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
}
