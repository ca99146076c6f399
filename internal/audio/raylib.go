package audio

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibBackend plays sounds through raylib's audio device.
type RaylibBackend struct {
	sounds map[Handle]rl.Sound
	nextID Handle
}

// NewRaylibBackend opens the audio device. Close it with Close.
func NewRaylibBackend() *RaylibBackend {
	rl.InitAudioDevice()
	return &RaylibBackend{sounds: make(map[Handle]rl.Sound)}
}

func (b *RaylibBackend) Close() {
	for h, s := range b.sounds {
		rl.UnloadSound(s)
		delete(b.sounds, h)
	}
	rl.CloseAudioDevice()
}

func (b *RaylibBackend) Load(path string) (Handle, bool) {
	sound := rl.LoadSound(path)
	if !rl.IsSoundValid(sound) {
		return 0, false
	}
	b.nextID++
	b.sounds[b.nextID] = sound
	return b.nextID, true
}

func (b *RaylibBackend) Unload(h Handle) {
	if s, ok := b.sounds[h]; ok {
		rl.UnloadSound(s)
		delete(b.sounds, h)
	}
}

func (b *RaylibBackend) Play(h Handle) {
	if s, ok := b.sounds[h]; ok {
		rl.PlaySound(s)
	}
}

func (b *RaylibBackend) Stop(h Handle) {
	if s, ok := b.sounds[h]; ok {
		rl.StopSound(s)
	}
}

func (b *RaylibBackend) IsPlaying(h Handle) bool {
	s, ok := b.sounds[h]
	return ok && rl.IsSoundPlaying(s)
}

func (b *RaylibBackend) Set(h Handle, volume, pan float32) {
	if s, ok := b.sounds[h]; ok {
		rl.SetSoundVolume(s, volume)
		rl.SetSoundPan(s, pan)
	}
}
