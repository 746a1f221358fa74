package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/YishiMichael/morphing-sub001/mobject"
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     mobject.Wave
	rate     beep.SampleRate
}

// NewOscillator creates an oscillator producing n samples starting at phase
func NewOscillator(freq float64, n int, wave mobject.Wave, rate beep.SampleRate, phase float64) beep.Streamer {
	return &oscillator{
		freq:     freq,
		phase:    phase - math.Floor(phase),
		duration: n,
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case mobject.WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case mobject.WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		default:
			val = math.Sin(2 * math.Pi * o.phase)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// math.Log2(0) is -Inf, so zero amplitude maps to a silent volume
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// advance returns the phase after n samples of freq at rate
func advance(phase, freq float64, n int, rate beep.SampleRate) float64 {
	p := phase + freq*float64(n)/float64(rate)
	return p - math.Floor(p)
}
