// Package scripting attaches Lua behaviour to nodes.
//
// A script is a Lua chunk that may define any of these globals:
//
//	start()
//	tick(dt)
//	on_begin_overlap(other)
//	on_end_overlap(other)
//	on_collision(other, point, normal)
//
// Nodes are passed as tables of closures (name, uid, destroy, has_tag,
// position, set_position). The owning node is the global node, scene props
// are the global props, and log(msg) writes to the engine log.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"mirgo/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const (
	hookStart        = "start"
	hookTick         = "tick"
	hookBeginOverlap = "on_begin_overlap"
	hookEndOverlap   = "on_end_overlap"
	hookCollision    = "on_collision"
)

func init() {
	engine.RegisterComponent("script", Factory("", nil))
}

// Factory returns a component factory that reads a script from props:
//
//	file: path relative to dir
//	source: inline Lua
//
// Every other prop is exposed to the script through the props global.
func Factory(dir string, log *zap.Logger) engine.ComponentFactory {
	return func(props map[string]any) (engine.Component, error) {
		name := engine.PropString(props, "file", "")
		src := engine.PropString(props, "source", "")
		switch {
		case name != "" && src != "":
			return nil, fmt.Errorf("script: set file or source, not both")
		case name != "":
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("read script: %w", err)
			}
			src = string(data)
		case src == "":
			return nil, fmt.Errorf("script: file or source is required")
		default:
			name = "inline"
		}
		return NewScript(name, src, props, log)
	}
}

// Script runs one Lua state for one node. It is not safe for concurrent use;
// the world calls it from the frame loop only.
type Script struct {
	engine.BaseComponent
	Name string

	vm       *lua.LState
	log      *zap.Logger
	disabled map[string]bool
}

// NewScript compiles and runs src so its hooks are defined.
func NewScript(name, src string, props map[string]any, log *zap.Logger) (*Script, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	s := &Script{
		Name:     name,
		vm:       vm,
		log:      log.With(zap.String("script", name)),
		disabled: make(map[string]bool),
	}

	vm.SetGlobal("log", vm.NewFunction(s.luaLog))
	p := vm.NewTable()
	for k, v := range props {
		if k == "type" || k == "file" || k == "source" {
			continue
		}
		p.RawSetString(k, toLua(vm, v))
	}
	vm.SetGlobal("props", p)

	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return s, nil
}

func (s *Script) SetNode(n *engine.Node) {
	s.BaseComponent.SetNode(n)
	if n != nil {
		s.vm.SetGlobal("node", s.nodeTable(n))
	}
}

func (s *Script) Start() {
	s.call(hookStart)
}

func (s *Script) Update(deltaTime float32) {
	s.call(hookTick, lua.LNumber(deltaTime))
}

func (s *Script) OnBeginOverlap(other *engine.Node) {
	if s.vm == nil {
		return
	}
	s.call(hookBeginOverlap, s.nodeTable(other))
}

func (s *Script) OnEndOverlap(other *engine.Node) {
	if s.vm == nil {
		return
	}
	s.call(hookEndOverlap, s.nodeTable(other))
}

func (s *Script) OnCollision(other *engine.Node, point, normal rl.Vector3) {
	if s.vm == nil {
		return
	}
	s.call(hookCollision, s.nodeTable(other), s.vecTable(point), s.vecTable(normal))
}

func (s *Script) OnDestroy() {
	if s.vm != nil {
		s.vm.Close()
		s.vm = nil
	}
}

// HookDisabled reports whether hook was turned off after a runtime error.
func (s *Script) HookDisabled(hook string) bool {
	return s.disabled[hook]
}

// call runs a global Lua function if the script defines it. A failing hook
// is logged once and never called again.
func (s *Script) call(hook string, args ...lua.LValue) {
	if s.vm == nil || s.disabled[hook] {
		return
	}
	fn, ok := s.vm.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return
	}
	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		s.disabled[hook] = true
		fields := []zap.Field{zap.String("hook", hook), zap.Error(err)}
		if n := s.GetNode(); n != nil {
			fields = append(fields, zap.String("node", n.Name))
		}
		s.log.Error("lua hook failed, disabling it", fields...)
	}
}

func (s *Script) luaLog(L *lua.LState) int {
	fields := []zap.Field{}
	if n := s.GetNode(); n != nil {
		fields = append(fields, zap.String("node", n.Name))
	}
	s.log.Info(L.CheckString(1), fields...)
	return 0
}

func (s *Script) nodeTable(n *engine.Node) lua.LValue {
	if n == nil {
		return lua.LNil
	}
	L := s.vm
	t := L.NewTable()
	t.RawSetString("name", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(n.Name))
		return 1
	}))
	t.RawSetString("uid", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(n.UID))
		return 1
	}))
	t.RawSetString("destroy", L.NewFunction(func(L *lua.LState) int {
		n.QueueDestroy()
		return 0
	}))
	t.RawSetString("has_tag", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(n.HasTag(L.CheckString(1))))
		return 1
	}))
	t.RawSetString("position", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.vecTable(n.WorldPosition()))
		return 1
	}))
	t.RawSetString("set_position", L.NewFunction(func(L *lua.LState) int {
		n.SetPosition(rl.Vector3{
			X: float32(L.CheckNumber(1)),
			Y: float32(L.CheckNumber(2)),
			Z: float32(L.CheckNumber(3)),
		})
		return 0
	}))
	return t
}

func (s *Script) vecTable(v rl.Vector3) *lua.LTable {
	t := s.vm.NewTable()
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	t.RawSetString("z", lua.LNumber(v.Z))
	return t
}

// toLua converts a decoded scene file value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}
