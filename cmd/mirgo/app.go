package main

import (
	"fmt"

	"mirgo/internal/assets"
	"mirgo/internal/audio"
	"mirgo/internal/camera"
	"mirgo/internal/config"
	"mirgo/internal/engine"
	"mirgo/internal/network"
	"mirgo/internal/physics"
	"mirgo/internal/render"
	"mirgo/internal/world"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

const (
	panelWidth = 220
	rayLength  = 500
	probeLife  = 2 // seconds a click probe stays on screen
)

type app struct {
	cfg        *config.Config
	world      *world.World
	scenes     *assets.Manager
	net        *network.Registry
	replicator *network.Replicator
	renderer   *render.Renderer
	fly        *camera.Fly
	log        *zap.Logger

	freeCamera bool
	gravityY   float32
	replicated int
}

func newApp(cfg *config.Config, w *world.World, scenes *assets.Manager, net *network.Registry, log *zap.Logger) *app {
	return &app{
		cfg:        cfg,
		world:      w,
		scenes:     scenes,
		net:        net,
		replicator: network.NewReplicator(),
		renderer:   render.NewRenderer(),
		fly:        newFly(),
		log:        log,
		gravityY:   cfg.Physics.Gravity[1],
	}
}

func (a *app) loop() {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(int32(a.cfg.Window.Width), int32(a.cfg.Window.Height), a.cfg.Window.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(a.cfg.Window.TargetFPS))

	backend := audio.NewRaylibBackend()
	defer backend.Close()
	mixer := audio.NewMixer(backend, a.log.Named("audio"))
	defer mixer.Close()

	for !rl.WindowShouldClose() {
		dt := rl.GetFrameTime()

		a.world.Update(dt)
		a.world.FlushPendingDestroys()
		mixer.Update(a.world)

		a.replicated = 0
		a.replicator.Tick(a.world, func(*engine.Node, engine.ReplicationRate) { a.replicated++ })

		snap := render.Capture(a.world)
		if a.freeCamera || !snap.HasCamera {
			a.fly.Update(flyInput(), dt)
			snap.Camera, snap.HasCamera = a.fly.GetRaylibCamera(), true
		}
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && rl.GetMouseX() > panelWidth {
			a.probe(a.renderer.Camera(&snap))
		}

		rl.BeginDrawing()
		a.renderer.Draw(&snap)
		a.drawOverlay(&snap)
		rl.EndDrawing()
	}
}

// probe casts a ray under the mouse and leaves a short-lived line at the hit.
func (a *app) probe(cam rl.Camera3D) {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), cam)
	end := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, rayLength))
	res := a.world.RayTest(ray.Position, end, physics.ColGroupAll)
	if res.HitPrimitive == nil {
		a.world.AddLine(world.Line{Start: ray.Position, End: end, Color: rl.DarkGray, Lifetime: probeLife})
		return
	}
	a.world.AddLine(world.Line{Start: ray.Position, End: res.HitPosition, Color: rl.Red, Lifetime: probeLife})
	a.world.AddLine(world.Line{
		Start:    res.HitPosition,
		End:      rl.Vector3Add(res.HitPosition, res.HitNormal),
		Color:    rl.Green,
		Lifetime: probeLife,
	})
	a.log.Debug("probe hit",
		zap.String("node", res.HitPrimitive.Name()),
		zap.Float32("fraction", res.HitFraction),
	)
}

func (a *app) drawOverlay(s *render.Snapshot) {
	rl.DrawRectangle(0, 0, panelWidth, int32(rl.GetScreenHeight()), rl.Fade(rl.Black, 0.6))

	y := float32(10)
	row := func(h float32) rl.Rectangle {
		r := rl.Rectangle{X: 10, Y: y, Width: panelWidth - 20, Height: h}
		y += h + 6
		return r
	}

	gameTick := gui.CheckBox(row(20), "Simulate", a.world.IsGameTickEnabled())
	if gameTick != a.world.IsGameTickEnabled() {
		a.world.SetGameTickEnabled(gameTick)
	}

	smoothing := gui.CheckBox(row(20), "Edge smoothing", a.world.IsInternalEdgeSmoothingEnabled())
	if smoothing != a.world.IsInternalEdgeSmoothingEnabled() {
		a.world.EnableInternalEdgeSmoothing(smoothing)
	}

	gui.Label(row(16), "Gravity Y")
	g := gui.Slider(row(20), "", fmt.Sprintf("%.1f", a.gravityY), a.gravityY, -30, 0)
	if g != a.gravityY {
		a.gravityY = g
		grav := a.world.GetGravity()
		grav.Y = g
		a.world.SetGravity(grav)
	}

	a.freeCamera = gui.CheckBox(row(20), "Free camera", a.freeCamera)
	a.renderer.ShowShapes = gui.CheckBox(row(20), "Shapes", a.renderer.ShowShapes)
	a.renderer.ShowLights = gui.CheckBox(row(20), "Lights", a.renderer.ShowLights)

	if gui.Button(row(28), "Spawn box") {
		if n, err := a.world.SpawnNode("Box"); err == nil {
			n.SetPosition(rl.Vector3{Y: 8})
		}
	}
	if gui.Button(row(28), "Reload scene") {
		a.scenes.Reload()
		if err := a.world.QueueRootScene(a.cfg.World.RootScene); err != nil {
			a.log.Error("reload failed", zap.Error(err))
		}
	}
	if gui.Button(row(28), "Clear lines") {
		a.world.RemoveAllLines()
	}

	y += 10
	for _, line := range []string{
		fmt.Sprintf("FPS %d", rl.GetFPS()),
		fmt.Sprintf("nodes %d", a.world.NumNodes()),
		fmt.Sprintf("bodies %d", len(a.world.Primitives())),
		fmt.Sprintf("drawn %d  culled %d", a.renderer.Drawn, a.renderer.Culled),
		fmt.Sprintf("overlaps %d", s.Overlaps),
		fmt.Sprintf("lines %d", len(s.Lines)),
		fmt.Sprintf("net ids %d  sent %d", a.net.Len(), a.replicated),
	} {
		rl.DrawText(line, 10, int32(y), 16, rl.RayWhite)
		y += 20
	}
}

func newFly() *camera.Fly {
	c := camera.New(render.DefaultCamera.Position)
	c.LookAt(render.DefaultCamera.Target)
	return c
}

// flyInput reads WASD/QE movement while the right mouse button is held.
func flyInput() camera.Input {
	if !rl.IsMouseButtonDown(rl.MouseButtonRight) {
		return camera.Input{}
	}
	axis := func(pos, neg int32) float32 {
		var v float32
		if rl.IsKeyDown(pos) {
			v++
		}
		if rl.IsKeyDown(neg) {
			v--
		}
		return v
	}
	return camera.Input{
		Forward: axis(rl.KeyW, rl.KeyS),
		Right:   axis(rl.KeyD, rl.KeyA),
		Up:      axis(rl.KeyE, rl.KeyQ),
		Look:    rl.GetMouseDelta(),
		Boost:   rl.IsKeyDown(rl.KeyLeftShift),
	}
}
