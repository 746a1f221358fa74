package mobject

import "fmt"

const KindTone = "tone"

// Wave names an oscillator shape
type Wave string

const (
	WaveSine   Wave = "sine"
	WaveSquare Wave = "square"
	WaveSaw    Wave = "saw"
)

// Tone is an audible mobject: a steady oscillator
type Tone struct {
	Frequency float64 `json:"frequency" msgpack:"frequency"`
	Amplitude float64 `json:"amplitude" msgpack:"amplitude"`
	Wave      Wave    `json:"wave" msgpack:"wave"`
}

func (*Tone) Kind() string { return KindTone }

// Interpolate blends frequency and amplitude; the wave must match
func (tn *Tone) Interpolate(target Mobject, t float64) (Mobject, error) {
	o, ok := target.(*Tone)
	if !ok {
		return nil, fmt.Errorf("%w: tone -> %s", ErrIncompatible, target.Kind())
	}
	if o.Wave != tn.Wave {
		return nil, fmt.Errorf("%w: wave %s -> %s", ErrIncompatible, tn.Wave, o.Wave)
	}
	return &Tone{
		Frequency: lerp(tn.Frequency, o.Frequency, t),
		Amplitude: lerp(tn.Amplitude, o.Amplitude, t),
		Wave:      tn.Wave,
	}, nil
}
