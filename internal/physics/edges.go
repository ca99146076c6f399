package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// SmoothInternalEdges is a ContactAddedFunc that replaces contact normals
// against triangle meshes with the face normal of the touched triangle. Bodies
// sliding across a flat mesh otherwise catch on the shared edges between
// triangles.
func SmoothInternalEdges(cp *ContactPoint, a, b *Body) {
	switch {
	case cp.TriangleB >= 0:
		if mesh, ok := b.Shape.(*TriangleMesh); ok && cp.TriangleB < len(mesh.Triangles) {
			cp.NormalWorldOnB = snapNormal(mesh.Triangles[cp.TriangleB].Normal(), cp.NormalWorldOnB)
		}
	case cp.TriangleA >= 0:
		if mesh, ok := a.Shape.(*TriangleMesh); ok && cp.TriangleA < len(mesh.Triangles) {
			// The normal points toward A, so it faces into the mesh here.
			face := rl.Vector3Negate(mesh.Triangles[cp.TriangleA].Normal())
			cp.NormalWorldOnB = snapNormal(face, cp.NormalWorldOnB)
		}
	}
}

// snapNormal returns face, flipped if needed so it stays on the same side as n.
func snapNormal(face, n rl.Vector3) rl.Vector3 {
	if rl.Vector3DotProduct(face, n) < 0 {
		return rl.Vector3Negate(face)
	}
	return face
}
