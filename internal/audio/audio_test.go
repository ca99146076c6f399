package audio

import (
	"testing"

	"mirgo/internal/components"
	"mirgo/internal/engine"
	"mirgo/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSound struct {
	path        string
	playing     bool
	volume, pan float32
}

type fakeBackend struct {
	sounds   map[Handle]*fakeSound
	next     Handle
	unloaded int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sounds: map[Handle]*fakeSound{}}
}

func (b *fakeBackend) Load(path string) (Handle, bool) {
	if path == "missing.wav" {
		return 0, false
	}
	b.next++
	b.sounds[b.next] = &fakeSound{path: path}
	return b.next, true
}

func (b *fakeBackend) Unload(h Handle)         { delete(b.sounds, h); b.unloaded++ }
func (b *fakeBackend) Play(h Handle)           { b.sounds[h].playing = true }
func (b *fakeBackend) Stop(h Handle)           { b.sounds[h].playing = false }
func (b *fakeBackend) IsPlaying(h Handle) bool { return b.sounds[h].playing }
func (b *fakeBackend) Set(h Handle, volume, pan float32) {
	b.sounds[h].volume, b.sounds[h].pan = volume, pan
}

func (b *fakeBackend) only(t *testing.T) *fakeSound {
	t.Helper()
	require.Len(t, b.sounds, 1)
	for _, s := range b.sounds {
		return s
	}
	return nil
}

func TestSpatialize(t *testing.T) {
	l := ListenerFor(nil)

	vol, pan := Spatialize(l, rl.Vector3{}, 1, 10)
	assert.Equal(t, float32(1), vol)
	assert.Equal(t, float32(0.5), pan)

	vol, pan = Spatialize(l, rl.Vector3{X: 5}, 1, 10)
	assert.InDelta(t, 0.5, vol, 1e-5)
	assert.InDelta(t, 1, pan, 1e-5, "sources to the right pan right")

	vol, _ = Spatialize(l, rl.Vector3{Z: 5}, 1, 10)
	assert.InDelta(t, 0.5, vol, 1e-5, "directly behind keeps full falloff volume")

	vol, pan = Spatialize(l, rl.Vector3{X: -20}, 1, 10)
	assert.Zero(t, vol)
	assert.InDelta(t, 0, pan, 1e-5)
}

func emitter(name, sound string, pos rl.Vector3) (*engine.Node, *components.Audio) {
	n := engine.NewNode(name)
	n.SetPosition(pos)
	a := components.NewAudio()
	a.Sound = sound
	a.MaxDistance = 10
	n.AddComponent(a)
	return n, a
}

func TestMixerFollowsWorldEmitters(t *testing.T) {
	w := world.New(world.WithLogger(zaptest.NewLogger(t)))
	root := engine.NewNode("Root")
	w.SetRootNode(root)
	ears := engine.NewNode("Ears")
	root.AddChild(ears)
	w.SetAudioReceiver(ears)

	n, a := emitter("Radio", "radio.wav", rl.Vector3{X: 5})
	root.AddChild(n)
	broken, _ := emitter("Broken", "missing.wav", rl.Vector3{})
	root.AddChild(broken)

	b := newFakeBackend()
	m := NewMixer(b, zaptest.NewLogger(t))
	m.Update(w)
	assert.Equal(t, 1, m.NumVoices(), "unloadable sounds get no voice")
	assert.False(t, b.only(t).playing)

	a.Play()
	m.Update(w)
	s := b.only(t)
	assert.True(t, s.playing)
	assert.InDelta(t, 0.5, s.volume, 1e-5)
	assert.InDelta(t, 1, s.pan, 1e-5)

	ears.SetPosition(rl.Vector3{X: 5})
	ears.UpdateTransform(false)
	m.Update(w)
	assert.Equal(t, float32(1), s.volume, "receiver moved onto the source")

	s.playing = false // finished
	m.Update(w)
	assert.False(t, a.IsPlaying(), "one-shot sounds stop their component")

	n.Destroy()
	m.Update(w)
	assert.Equal(t, 0, m.NumVoices())
	assert.Equal(t, 1, b.unloaded)
}

func TestMixerRestartsLoops(t *testing.T) {
	w := world.New(world.WithLogger(zaptest.NewLogger(t)))
	n, a := emitter("Hum", "hum.wav", rl.Vector3{})
	a.Loop = true
	w.SetRootNode(n)

	b := newFakeBackend()
	m := NewMixer(b, nil)
	a.Play()
	m.Update(w)
	s := b.only(t)
	s.playing = false
	m.Update(w)
	assert.True(t, s.playing)
	assert.True(t, a.IsPlaying())

	m.Close()
	assert.Equal(t, 0, m.NumVoices())
}
