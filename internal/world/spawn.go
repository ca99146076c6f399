package world

import (
	"fmt"

	"mirgo/internal/engine"

	"go.uber.org/zap"
)

// Scene is a loaded scene asset. Every Instantiate call builds a fresh tree.
type Scene interface {
	Instantiate() (*engine.Node, error)
}

// SceneLoader resolves a scene name to a loaded scene.
type SceneLoader interface {
	LoadScene(name string) (Scene, error)
}

// PlaceNewlySpawnedNode makes node the root if there is none, or a child of
// the root otherwise.
func (w *World) PlaceNewlySpawnedNode(node *engine.Node) {
	if node == nil {
		return
	}
	if w.root != nil {
		w.root.AddChild(node)
	} else {
		w.SetRootNode(node)
	}
}

// SpawnNode creates a node of the registered type and places it in the world.
func (w *World) SpawnNode(typeName string) (*engine.Node, error) {
	n := engine.CreateNode(typeName)
	if n == nil {
		w.log.Error("failed to spawn node", zap.String("type", typeName))
		return nil, fmt.Errorf("spawn %q: %w", typeName, ErrUnknownNodeType)
	}
	w.PlaceNewlySpawnedNode(n)
	return n, nil
}

func (w *World) SpawnNodeByID(id engine.TypeID) (*engine.Node, error) {
	n := engine.CreateNodeByID(id)
	if n == nil {
		w.log.Error("failed to spawn node", zap.Uint32("type_id", uint32(id)))
		return nil, fmt.Errorf("spawn type %d: %w", id, ErrUnknownNodeType)
	}
	w.PlaceNewlySpawnedNode(n)
	return n, nil
}

// SpawnScene instantiates the named scene and places its root in the world.
func (w *World) SpawnScene(name string) (*engine.Node, error) {
	scene, err := w.loadScene(name)
	if err != nil {
		w.log.Error("failed to spawn scene", zap.String("scene", name), zap.Error(err))
		return nil, err
	}
	n, err := scene.Instantiate()
	if err != nil {
		w.log.Error("failed to spawn scene", zap.String("scene", name), zap.Error(err))
		return nil, fmt.Errorf("instantiate scene %q: %w", name, err)
	}
	w.PlaceNewlySpawnedNode(n)
	return n, nil
}

// QueueRootScene loads the named scene now and swaps it in as the root at the
// start of the next Update, so the current tree is never torn down from
// inside one of its own callbacks.
func (w *World) QueueRootScene(name string) error {
	scene, err := w.loadScene(name)
	if err != nil {
		w.log.Error("failed to queue root scene", zap.String("scene", name), zap.Error(err))
		return err
	}
	w.queuedRootScene = scene
	return nil
}

func (w *World) HasQueuedRootScene() bool {
	return w.queuedRootScene != nil
}

func (w *World) loadScene(name string) (Scene, error) {
	if w.scenes == nil {
		return nil, fmt.Errorf("load scene %q: %w", name, ErrNoSceneLoader)
	}
	scene, err := w.scenes.LoadScene(name)
	if err != nil {
		return nil, fmt.Errorf("load scene %q: %w", name, err)
	}
	return scene, nil
}

// loadQueuedScene replaces the root with the queued scene, if any.
func (w *World) loadQueuedScene() {
	scene := w.queuedRootScene
	if scene == nil {
		return
	}
	w.queuedRootScene = nil

	w.DestroyRootNode()
	root, err := scene.Instantiate()
	if err != nil {
		w.log.Error("failed to instantiate queued root scene", zap.Error(err))
		return
	}
	if root == nil {
		return
	}
	w.SetRootNode(root)
	w.log.Info("root scene loaded", zap.String("root", root.Name), zap.Int("nodes", len(w.nodes)))
}
