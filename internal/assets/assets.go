// Package assets loads scene files from disk for the world to instantiate.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"mirgo/internal/engine"
	"mirgo/internal/world"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrSceneNotFound = errors.New("scene not found")

// NetAssigner hands out network ids to nodes marked for replication.
type NetAssigner interface {
	Assign(n *engine.Node, rate engine.ReplicationRate) engine.NetID
}

type Option func(*Manager)

// WithNetAssigner gives replicated scene nodes their network ids. Without one,
// the replicate key is ignored with a warning.
func WithNetAssigner(a NetAssigner) Option {
	return func(m *Manager) { m.net = a }
}

// WithComponent overrides the component registry for one component type.
// Factories that need the scene directory or a logger are wired this way.
func WithComponent(name string, factory engine.ComponentFactory) Option {
	return func(m *Manager) { m.components[name] = factory }
}

// Manager reads scenes from a directory and caches the parsed files.
type Manager struct {
	dir        string
	log        *zap.Logger
	net        NetAssigner
	components map[string]engine.ComponentFactory

	mu     sync.Mutex
	scenes map[string]*Scene
}

func NewManager(dir string, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		dir:        dir,
		log:        log,
		components: make(map[string]engine.ComponentFactory),
		scenes:     make(map[string]*Scene),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string { return m.dir }

// LoadScene returns the scene stored in <dir>/<name>.yaml.
func (m *Manager) LoadScene(name string) (world.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.scenes[name]; ok {
		return s, nil
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("scene %q: %w", name, ErrSceneNotFound)
	}

	path := filepath.Join(m.dir, name+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("scene %q: %w", name, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}

	var file SceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if err := file.Root.validate("root"); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}

	s := &Scene{name: name, file: file, m: m}
	m.scenes[name] = s
	m.log.Debug("scene loaded", zap.String("scene", name), zap.String("path", path))
	return s, nil
}

// Reload drops every cached scene so the next LoadScene reads from disk.
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.scenes)
}

func (m *Manager) createComponent(name string, props map[string]any) (engine.Component, error) {
	if factory, ok := m.components[name]; ok {
		c, err := factory(props)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name, err)
		}
		return c, nil
	}
	return engine.CreateComponent(name, props)
}

var _ world.SceneLoader = (*Manager)(nil)
