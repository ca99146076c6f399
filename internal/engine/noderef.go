package engine

// Resolver looks nodes up by UID. The world implements it.
type Resolver interface {
	FindByUID(uid uint64) *Node
}

// NodeRef is a weak reference to a Node by UID. It never keeps the node alive
// and resolves to nil once the node has left the world.
type NodeRef struct {
	UID uint64 // UID of the referenced Node (0 = none)
}

func RefTo(n *Node) NodeRef {
	var r NodeRef
	r.Set(n)
	return r
}

// Get resolves the reference. Returns nil if the reference is empty or the
// node is no longer known to r.
func (r NodeRef) Get(res Resolver) *Node {
	if r.UID == 0 || res == nil {
		return nil
	}
	return res.FindByUID(r.UID)
}

// IsValid returns true if the reference points to something (UID != 0).
// It does not check that the node still exists.
func (r NodeRef) IsValid() bool {
	return r.UID != 0
}

// Set points the reference at n. Pass nil to clear it.
func (r *NodeRef) Set(n *Node) {
	if n == nil {
		r.UID = 0
	} else {
		r.UID = n.UID
	}
}

func (r *NodeRef) Clear() {
	r.UID = 0
}
