package world

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Line is a debug segment drawn by the renderer. A negative Lifetime keeps it
// until it is removed; otherwise it expires after Lifetime seconds.
type Line struct {
	Start    rl.Vector3
	End      rl.Vector3
	Color    rl.Color
	Lifetime float32
}

// Equal compares geometry and color. Lifetime is ignored.
func (l Line) Equal(o Line) bool {
	return l.Start == o.Start && l.End == o.End && l.Color == o.Color
}

// AddLine adds line unless an equal one exists, in which case the existing
// line keeps the longer of the two lifetimes.
func (w *World) AddLine(line Line) {
	for i := range w.lines {
		existing := &w.lines[i]
		if !existing.Equal(line) {
			continue
		}
		if existing.Lifetime < 0 || line.Lifetime < 0 {
			existing.Lifetime = -1
		} else {
			existing.Lifetime = max(existing.Lifetime, line.Lifetime)
		}
		return
	}
	w.lines = append(w.lines, line)
}

func (w *World) RemoveLine(line Line) {
	if i := slices.IndexFunc(w.lines, line.Equal); i >= 0 {
		w.lines = slices.Delete(w.lines, i, i+1)
	}
}

func (w *World) RemoveAllLines() {
	w.lines = w.lines[:0]
}

func (w *World) GetLines() []Line {
	return w.lines
}

// UpdateLines ages every non-persistent line and drops the expired ones.
func (w *World) UpdateLines(deltaTime float32) {
	kept := w.lines[:0]
	for _, l := range w.lines {
		if l.Lifetime >= 0 {
			l.Lifetime -= deltaTime
			if l.Lifetime <= 0 {
				continue
			}
		}
		kept = append(kept, l)
	}
	w.lines = kept
}
