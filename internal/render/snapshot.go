// Package render draws a debug view of a world with raylib.
package render

import (
	"cmp"
	"slices"

	"mirgo/internal/components"
	"mirgo/internal/engine"
	"mirgo/internal/physics"
	"mirgo/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Debug colors for primitives.
var (
	ColorStatic     = rl.SkyBlue
	ColorDynamic    = rl.Lime
	ColorKinematic  = rl.Orange
	ColorTrigger    = rl.Yellow
	ColorOverlapped = rl.Red
	ColorNoCollide  = rl.Gray
)

// Shape is one convex piece or mesh of a primitive, placed in world space.
type Shape struct {
	Node      string
	Kind      physics.ShapeType
	Center    rl.Vector3
	Rotation  rl.Quaternion
	Radius    float32    // sphere
	Half      rl.Vector3 // box
	Triangles []physics.Triangle
	Bound     float32 // bounding sphere radius around Center
	Color     rl.Color
}

type LightMark struct {
	Position  rl.Vector3
	Direction rl.Vector3
	Kind      components.LightKind
	Color     rl.Color
	Radius    float32
}

// Snapshot is everything the renderer reads from a world for one frame.
type Snapshot struct {
	Camera    rl.Camera3D
	HasCamera bool
	Near, Far float32
	Lines     []world.Line
	Lights    []LightMark
	Shapes    []Shape
	Ambient   rl.Vector4
	Fog       world.FogSettings
	Overlaps  int
}

// Capture copies the drawable state of w. Nothing in the snapshot aliases
// world memory, so the world may keep changing while it is drawn.
func Capture(w *world.World) Snapshot {
	s := Snapshot{
		Near:    0.1,
		Far:     1000,
		Lines:   slices.Clone(w.GetLines()),
		Ambient: w.GetAmbientLightColor(),
		Fog:     w.GetFogSettings(),
	}

	if camNode := w.GetActiveCamera(); camNode != nil {
		if cam := engine.GetComponent[*components.Camera](camNode); cam != nil {
			s.Camera = cam.GetRaylibCamera()
			s.Near, s.Far = cam.Near, cam.Far
			s.HasCamera = true
		}
	}

	for _, l := range w.GetLights() {
		s.Lights = append(s.Lights, LightMark{
			Position:  l.GetPosition(),
			Direction: l.Direction,
			Kind:      l.Kind,
			Color:     l.Color,
			Radius:    l.Radius,
		})
	}

	overlapped := map[*components.Primitive]bool{}
	for _, pair := range w.GetOverlaps() {
		overlapped[pair.Observer] = true
	}
	s.Overlaps = len(w.GetOverlaps()) / 2

	for _, p := range w.Primitives() {
		n := p.GetNode()
		if n == nil {
			continue
		}
		color := primitiveColor(p, overlapped[p])
		pos := n.WorldPosition()
		rot := n.WorldRotationQuat()
		s.Shapes = appendShape(s.Shapes, n.Name, p.Shape, pos, rot, color)
	}
	slices.SortStableFunc(s.Shapes, func(a, b Shape) int { return cmp.Compare(a.Node, b.Node) })
	return s
}

func primitiveColor(p *components.Primitive, overlapped bool) rl.Color {
	switch {
	case overlapped:
		return ColorOverlapped
	case p.AreOverlapsEnabled() && !p.IsCollisionEnabled():
		return ColorTrigger
	case !p.IsCollisionEnabled():
		return ColorNoCollide
	}
	switch p.BodyType {
	case physics.BodyDynamic:
		return ColorDynamic
	case physics.BodyKinematic:
		return ColorKinematic
	}
	return ColorStatic
}

func appendShape(out []Shape, node string, shape physics.Shape, pos rl.Vector3, rot rl.Quaternion, color rl.Color) []Shape {
	base := Shape{Node: node, Kind: shape.Type(), Center: pos, Rotation: rot, Color: color}
	switch sh := shape.(type) {
	case *physics.Sphere:
		base.Radius = sh.Radius
		base.Bound = sh.Radius
	case *physics.Box:
		base.Half = sh.HalfExtents
		base.Bound = rl.Vector3Length(sh.HalfExtents)
	case *physics.TriangleMesh:
		base.Triangles = make([]physics.Triangle, len(sh.Triangles))
		for i, t := range sh.Triangles {
			base.Triangles[i] = physics.Triangle{
				A: rl.Vector3Add(t.A, pos),
				B: rl.Vector3Add(t.B, pos),
				C: rl.Vector3Add(t.C, pos),
			}
		}
		bounds := sh.Bounds(pos, rot)
		base.Center = bounds.Center()
		base.Bound = rl.Vector3Length(bounds.HalfExtents())
	case *physics.Compound:
		for _, child := range sh.Children {
			at := rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(child.Offset, rot))
			out = appendShape(out, node, child.Shape, at, rot, color)
		}
		return out
	default:
		return out
	}
	return append(out, base)
}

// boxEdges returns the 12 edges of an oriented box.
func boxEdges(center, half rl.Vector3, rot rl.Quaternion) [12][2]rl.Vector3 {
	var corners [8]rl.Vector3
	for i := range corners {
		local := rl.Vector3{X: -half.X, Y: -half.Y, Z: -half.Z}
		if i&1 != 0 {
			local.X = half.X
		}
		if i&2 != 0 {
			local.Y = half.Y
		}
		if i&4 != 0 {
			local.Z = half.Z
		}
		corners[i] = rl.Vector3Add(center, rl.Vector3RotateByQuaternion(local, rot))
	}
	var edges [12][2]rl.Vector3
	k := 0
	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				edges[k] = [2]rl.Vector3{corners[i], corners[i|bit]}
				k++
			}
		}
	}
	return edges
}

// BackgroundColor is the fog color when fog is on, otherwise the ambient
// color darkened.
func BackgroundColor(s *Snapshot) rl.Color {
	c := s.Ambient
	if s.Fog.Enabled {
		c = s.Fog.Color
	} else {
		c = rl.Vector4{X: c.X * 0.5, Y: c.Y * 0.5, Z: c.Z * 0.5, W: 1}
	}
	return rl.Color{R: unit(c.X), G: unit(c.Y), B: unit(c.Z), A: unit(c.W)}
}

func unit(f float32) uint8 {
	return uint8(max(0, min(1, f)) * 255)
}
