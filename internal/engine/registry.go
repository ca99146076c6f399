package engine

import (
	"fmt"
	"sort"
)

// TypeID identifies a registered node type. Zero is never assigned.
type TypeID uint32

// NodeFactory builds a fresh node of a registered type. The registry fills in
// the type name and id afterwards.
type NodeFactory func() *Node

// ComponentFactory creates a Component from scene file props.
type ComponentFactory func(props map[string]any) (Component, error)

type nodeType struct {
	id      TypeID
	name    string
	factory NodeFactory
}

var (
	nodeTypesByName   = map[string]*nodeType{}
	nodeTypesByID     = map[TypeID]*nodeType{}
	componentRegistry = map[string]ComponentFactory{}
)

// RegisterNodeType registers a named node type and returns its id.
// Registering the same name twice panics.
func RegisterNodeType(name string, factory NodeFactory) TypeID {
	if _, exists := nodeTypesByName[name]; exists {
		panic(fmt.Sprintf("node type %q already registered", name))
	}
	t := &nodeType{id: TypeID(len(nodeTypesByID) + 1), name: name, factory: factory}
	nodeTypesByName[name] = t
	nodeTypesByID[t.id] = t
	return t.id
}

// CreateNode builds a node of the named type, or returns nil if the type is unknown.
func CreateNode(name string) *Node {
	t, ok := nodeTypesByName[name]
	if !ok {
		return nil
	}
	return t.create()
}

// CreateNodeByID builds a node of the given type, or returns nil if the id is unknown.
func CreateNodeByID(id TypeID) *Node {
	t, ok := nodeTypesByID[id]
	if !ok {
		return nil
	}
	return t.create()
}

func (t *nodeType) create() *Node {
	var n *Node
	if t.factory != nil {
		n = t.factory()
	}
	if n == nil {
		n = NewNode(t.name)
	}
	if n.Name == "" {
		n.Name = t.name
	}
	n.typeID = t.id
	n.typeName = t.name
	return n
}

// LookupNodeType returns the id registered for name.
func LookupNodeType(name string) (TypeID, bool) {
	t, ok := nodeTypesByName[name]
	if !ok {
		return 0, false
	}
	return t.id, true
}

// GetRegisteredNodeTypes returns a sorted list of all registered node type names.
func GetRegisteredNodeTypes() []string {
	names := make([]string, 0, len(nodeTypesByName))
	for name := range nodeTypesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterComponent registers a component kind that scene files can attach
// by name. Registering the same name twice panics.
func RegisterComponent(name string, factory ComponentFactory) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = factory
}

// CreateComponent looks up a registered component by name and creates it with the given props.
func CreateComponent(name string, props map[string]any) (Component, error) {
	factory, ok := componentRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	c, err := factory(props)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}
	return c, nil
}

// GetRegisteredComponents returns a sorted list of all registered component names.
func GetRegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
