package assets

import (
	"fmt"

	"mirgo/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// SceneFile is the on-disk form of a scene: one root node and its subtree.
type SceneFile struct {
	Root NodeDef `yaml:"root"`
}

type NodeDef struct {
	Name       string           `yaml:"name"`
	Type       string           `yaml:"type"`
	Tags       []string         `yaml:"tags,omitempty"`
	Position   [3]float32       `yaml:"position"`
	Rotation   [3]float32       `yaml:"rotation"`
	Scale      *[3]float32      `yaml:"scale,omitempty"`
	Replicate  string           `yaml:"replicate,omitempty"`
	Components []map[string]any `yaml:"components,omitempty"`
	Children   []NodeDef        `yaml:"children,omitempty"`
}

func (d *NodeDef) validate(path string) error {
	if d.Type != "" {
		if _, ok := engine.LookupNodeType(d.Type); !ok {
			return fmt.Errorf("%s: unknown node type %q", path, d.Type)
		}
	}
	if d.Replicate != "" {
		if _, err := parseRate(d.Replicate); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	for i, c := range d.Components {
		if _, ok := c["type"].(string); !ok {
			return fmt.Errorf("%s.components[%d]: missing type", path, i)
		}
	}
	for i := range d.Children {
		if err := d.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func parseRate(s string) (engine.ReplicationRate, error) {
	for r := engine.ReplicationRate(0); r < engine.NumReplicationRates; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown replication rate %q", s)
}

// Scene is a parsed scene file. It is shared through the manager's cache and
// never modified after loading.
type Scene struct {
	name string
	file SceneFile
	m    *Manager
}

func (s *Scene) Name() string { return s.name }

// Instantiate builds a fresh node tree from the scene.
func (s *Scene) Instantiate() (*engine.Node, error) {
	root, err := s.build(&s.file.Root)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", s.name, err)
	}
	return root, nil
}

func (s *Scene) build(d *NodeDef) (*engine.Node, error) {
	var n *engine.Node
	if d.Type != "" {
		n = engine.CreateNode(d.Type)
		if n == nil {
			return nil, fmt.Errorf("unknown node type %q", d.Type)
		}
	} else {
		n = engine.NewNode("")
	}
	if d.Name != "" {
		n.Name = d.Name
	}
	n.Tags = append(n.Tags, d.Tags...)

	n.SetPosition(vec3(d.Position))
	n.SetRotation(vec3(d.Rotation))
	if d.Scale != nil {
		n.SetScale(vec3(*d.Scale))
	}

	for i, props := range d.Components {
		kind, _ := props["type"].(string)
		c, err := s.m.createComponent(kind, props)
		if err != nil {
			return nil, fmt.Errorf("%s.components[%d]: %w", n.Name, i, err)
		}
		n.AddComponent(c)
	}

	if d.Replicate != "" {
		rate, err := parseRate(d.Replicate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Name, err)
		}
		if s.m.net != nil {
			s.m.net.Assign(n, rate)
		} else {
			s.m.log.Warn("replicated node without a net registry",
				zap.String("scene", s.name), zap.String("node", n.Name))
		}
	}

	for i := range d.Children {
		child, err := s.build(&d.Children[i])
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
