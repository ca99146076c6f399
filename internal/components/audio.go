package components

import "mirgo/internal/engine"

func init() {
	engine.RegisterComponent("audio", func(props map[string]any) (engine.Component, error) {
		a := NewAudio()
		a.Sound = engine.PropString(props, "sound", a.Sound)
		a.Volume = engine.PropFloat(props, "volume", a.Volume)
		a.MaxDistance = engine.PropFloat(props, "max_distance", a.MaxDistance)
		a.Loop = engine.PropBool(props, "loop", a.Loop)
		a.PlayOnStart = engine.PropBool(props, "play_on_start", a.PlayOnStart)
		return a, nil
	})
}

// Audio is a positional sound emitter. Playback belongs to the audio backend;
// the World only tracks emitters.
type Audio struct {
	engine.BaseComponent
	Sound       string
	Volume      float32
	MaxDistance float32
	Loop        bool
	PlayOnStart bool

	playing bool
}

func NewAudio() *Audio {
	return &Audio{
		Volume:      1.0,
		MaxDistance: 50.0,
	}
}

func (a *Audio) Start() {
	if a.PlayOnStart {
		a.Play()
	}
}

func (a *Audio) Play()           { a.playing = true }
func (a *Audio) Stop()           { a.playing = false }
func (a *Audio) IsPlaying() bool { return a.playing }

// OnDestroy implements engine.Destroyer
func (a *Audio) OnDestroy() {
	a.Stop()
}
