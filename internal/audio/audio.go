// Package audio plays the world's audio emitters relative to its audio
// receiver.
package audio

import (
	"math"

	"mirgo/internal/components"
	"mirgo/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Listener represents the audio listener position and orientation
type Listener struct {
	Position rl.Vector3
	Forward  rl.Vector3
	Right    rl.Vector3
}

// ListenerFor builds a listener from a node's world transform. A nil node
// listens from the origin facing -Z.
func ListenerFor(n *engine.Node) Listener {
	if n == nil {
		return Listener{Forward: rl.Vector3{Z: -1}, Right: rl.Vector3{X: 1}}
	}
	q := n.WorldRotationQuat()
	return Listener{
		Position: n.WorldPosition(),
		Forward:  rl.Vector3RotateByQuaternion(rl.Vector3{Z: -1}, q),
		Right:    rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, q),
	}
}

// Spatialize returns the volume and pan (0 left, 0.5 center, 1 right) of a
// source at pos heard by l.
func Spatialize(l Listener, pos rl.Vector3, volume, maxDistance float32) (float32, float32) {
	toSource := rl.Vector3Subtract(pos, l.Position)
	distance := rl.Vector3Length(toSource)

	// Linear falloff
	var out float32
	if distance < maxDistance {
		out = volume * (1.0 - distance/maxDistance)
	}

	pan := float32(0.5)
	if distance > 0.001 {
		direction := rl.Vector3Scale(toSource, 1.0/distance)
		pan = max(0, min(1, 0.5+rl.Vector3DotProduct(direction, l.Right)*0.5))

		// sounds behind are slightly quieter
		if frontDot := rl.Vector3DotProduct(direction, l.Forward); frontDot < 0 {
			out *= 0.7 + 0.3*float32(math.Abs(float64(frontDot)))
		}
	}
	return out, pan
}

// Backend plays sounds. Handles are opaque to the mixer.
type Backend interface {
	Load(path string) (Handle, bool)
	Unload(h Handle)
	Play(h Handle)
	Stop(h Handle)
	IsPlaying(h Handle) bool
	Set(h Handle, volume, pan float32)
}

type Handle uint64

// Emitters is what the mixer reads from a world each frame.
type Emitters interface {
	GetAudios() []*components.Audio
	GetAudioReceiver() *engine.Node
}

type voice struct {
	handle  Handle
	playing bool
	seen    bool
}

// Mixer keeps one voice per audio component and updates volume and pan from
// the receiver every frame.
type Mixer struct {
	backend Backend
	log     *zap.Logger
	voices  map[*components.Audio]*voice
	failed  map[string]bool
}

func NewMixer(backend Backend, log *zap.Logger) *Mixer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mixer{
		backend: backend,
		log:     log,
		voices:  make(map[*components.Audio]*voice),
		failed:  make(map[string]bool),
	}
}

// Update syncs voices with the world's emitters. Components that left the
// world since the last call have their voices stopped and unloaded.
func (m *Mixer) Update(w Emitters) {
	l := ListenerFor(w.GetAudioReceiver())

	for _, v := range m.voices {
		v.seen = false
	}

	for _, a := range w.GetAudios() {
		v := m.voices[a]
		if v == nil {
			v = m.load(a)
			if v == nil {
				continue
			}
		}
		v.seen = true

		switch {
		case a.IsPlaying() && !v.playing:
			m.backend.Play(v.handle)
			v.playing = true
		case !a.IsPlaying() && v.playing:
			m.backend.Stop(v.handle)
			v.playing = false
		case v.playing && !m.backend.IsPlaying(v.handle):
			if a.Loop {
				m.backend.Play(v.handle)
			} else {
				v.playing = false
				a.Stop()
			}
		}
		if !v.playing {
			continue
		}

		pos := rl.Vector3Zero()
		if n := a.GetNode(); n != nil {
			pos = n.WorldPosition()
		}
		volume, pan := Spatialize(l, pos, a.Volume, a.MaxDistance)
		m.backend.Set(v.handle, volume, pan)
	}

	for a, v := range m.voices {
		if !v.seen {
			m.backend.Stop(v.handle)
			m.backend.Unload(v.handle)
			delete(m.voices, a)
		}
	}
}

func (m *Mixer) load(a *components.Audio) *voice {
	if a.Sound == "" || m.failed[a.Sound] {
		return nil
	}
	h, ok := m.backend.Load(a.Sound)
	if !ok {
		m.failed[a.Sound] = true
		m.log.Warn("failed to load sound", zap.String("sound", a.Sound))
		return nil
	}
	v := &voice{handle: h}
	m.voices[a] = v
	return v
}

// Close stops and unloads every voice.
func (m *Mixer) Close() {
	for a, v := range m.voices {
		m.backend.Stop(v.handle)
		m.backend.Unload(v.handle)
		delete(m.voices, a)
	}
}

func (m *Mixer) NumVoices() int { return len(m.voices) }
