package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum extracts the planes of camera's view volume using the
// Gribb/Hartmann method.
func ExtractFrustum(camera rl.Camera3D, aspect, near, far float32) Frustum {
	view := rl.MatrixLookAt(camera.Position, camera.Target, camera.Up)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, near, far)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, near, far)
	}

	// VP = P * V
	vp := rl.MatrixMultiply(view, proj)

	row := func(i int) [4]float32 {
		m := [16]float32{
			vp.M0, vp.M1, vp.M2, vp.M3,
			vp.M4, vp.M5, vp.M6, vp.M7,
			vp.M8, vp.M9, vp.M10, vp.M11,
			vp.M12, vp.M13, vp.M14, vp.M15,
		}
		return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.planes[0] = planeFrom(r3, r0, 1)  // left
	f.planes[1] = planeFrom(r3, r0, -1) // right
	f.planes[2] = planeFrom(r3, r1, 1)  // bottom
	f.planes[3] = planeFrom(r3, r1, -1) // top
	f.planes[4] = planeFrom(r3, r2, 1)  // near
	f.planes[5] = planeFrom(r3, r2, -1) // far
	return f
}

func planeFrom(w, r [4]float32, sign float32) Plane {
	return normalizePlane(Plane{
		normal: rl.Vector3{
			X: w[0] + sign*r[0],
			Y: w[1] + sign*r[1],
			Z: w[2] + sign*r[2],
		},
		distance: w[3] + sign*r[3],
	})
}

func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := range f.planes {
		dist := rl.Vector3DotProduct(f.planes[i].normal, center) + f.planes[i].distance
		if dist < -radius {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	return f.ContainsSphere(point, 0)
}
