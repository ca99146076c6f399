package render

import (
	"mirgo/internal/components"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultCamera is used when the world has no active camera.
var DefaultCamera = rl.Camera3D{
	Position:   rl.Vector3{X: 12, Y: 10, Z: 12},
	Target:     rl.Vector3{},
	Up:         rl.Vector3{Y: 1},
	Fovy:       45,
	Projection: rl.CameraPerspective,
}

// Renderer draws snapshots as wireframes. It must be used on the thread that
// owns the raylib window.
type Renderer struct {
	ShowShapes bool
	ShowLights bool
	ShowGrid   bool

	// Drawn and Culled count shapes in the last Draw call.
	Drawn, Culled int
}

func NewRenderer() *Renderer {
	return &Renderer{ShowShapes: true, ShowLights: true, ShowGrid: true}
}

// Camera returns the camera a snapshot will be drawn from.
func (r *Renderer) Camera(s *Snapshot) rl.Camera3D {
	if s.HasCamera {
		return s.Camera
	}
	return DefaultCamera
}

// Draw renders s between BeginDrawing and EndDrawing, which the caller owns.
func (r *Renderer) Draw(s *Snapshot) {
	rl.ClearBackground(BackgroundColor(s))

	cam := r.Camera(s)
	aspect := float32(rl.GetScreenWidth()) / float32(max(rl.GetScreenHeight(), 1))
	frustum := ExtractFrustum(cam, aspect, s.Near, s.Far)

	rl.BeginMode3D(cam)
	if r.ShowGrid {
		rl.DrawGrid(20, 1)
	}

	r.Drawn, r.Culled = 0, 0
	if r.ShowShapes {
		for i := range s.Shapes {
			sh := &s.Shapes[i]
			if !frustum.ContainsSphere(sh.Center, sh.Bound) {
				r.Culled++
				continue
			}
			drawShape(sh)
			r.Drawn++
		}
	}

	if r.ShowLights {
		for _, l := range s.Lights {
			drawLight(l)
		}
	}

	for _, l := range s.Lines {
		rl.DrawLine3D(l.Start, l.End, l.Color)
	}
	rl.EndMode3D()
}

func drawShape(sh *Shape) {
	switch {
	case sh.Radius > 0:
		rl.DrawSphereWires(sh.Center, sh.Radius, 8, 12, sh.Color)
	case sh.Triangles != nil:
		for _, t := range sh.Triangles {
			rl.DrawLine3D(t.A, t.B, sh.Color)
			rl.DrawLine3D(t.B, t.C, sh.Color)
			rl.DrawLine3D(t.C, t.A, sh.Color)
		}
	default:
		for _, e := range boxEdges(sh.Center, sh.Half, sh.Rotation) {
			rl.DrawLine3D(e[0], e[1], sh.Color)
		}
	}
}

func drawLight(l LightMark) {
	if l.Kind == components.LightDirectional {
		from := rl.Vector3Scale(l.Direction, -10)
		rl.DrawSphere(from, 0.3, rl.Yellow)
		rl.DrawLine3D(from, rl.Vector3Zero(), rl.Yellow)
		return
	}
	rl.DrawSphere(l.Position, 0.2, l.Color)
	rl.DrawSphereWires(l.Position, l.Radius, 6, 8, rl.Fade(l.Color, 0.2))
}
