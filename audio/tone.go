// Package audio turns tone mobjects into sample blocks
package audio

import (
	"fmt"

	"github.com/gopxl/beep"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/mobject"
)

const bytesPerFrame = 16

// ToneResource is one frame's block of stereo samples
// Phase carries oscillator continuity across incremental updates
type ToneResource struct {
	Format  beep.Format
	Samples [][2]float64
	Phase   float64
}

// ByteSize returns the resident size of the sample block
func (r *ToneResource) ByteSize() int {
	return len(r.Samples) * bytesPerFrame
}

// Streamer replays the block through a beep buffer
func (r *ToneResource) Streamer() beep.StreamSeeker {
	buf := beep.NewBuffer(r.Format)
	buf.Append(&blockStreamer{samples: r.Samples})
	return buf.Streamer(0, buf.Len())
}

// Peak returns the largest absolute sample value
func (r *ToneResource) Peak() float64 {
	var peak float64
	for _, s := range r.Samples {
		if v := max(s[0], -s[0]); v > peak {
			peak = v
		}
	}
	return peak
}

// Synth fixes the output format and block length for prepared tones
type Synth struct {
	Format beep.Format
	Block  int
}

// NewSynth returns a stereo synth at rate producing block samples per frame
func NewSynth(rate, block int) *Synth {
	return &Synth{
		Format: beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 3},
		Block:  block,
	}
}

// PrepareTone renders a fresh block for tn
func (s *Synth) PrepareTone(tn *mobject.Tone) (*ToneResource, error) {
	if s.Block <= 0 {
		return nil, fmt.Errorf("audio block must be positive, got %d", s.Block)
	}
	res := &ToneResource{Format: s.Format, Samples: make([][2]float64, s.Block)}
	s.render(tn, res)
	return res, nil
}

// UpdateTone renders into the existing block, continuing its phase
// A block of a different length is a ReuseFailure and the block is left intact
func (s *Synth) UpdateTone(tn *mobject.Tone, res *ToneResource) error {
	if len(res.Samples) != s.Block {
		return core.NewReuseFailure("tone block holds %d samples, synth produces %d", len(res.Samples), s.Block)
	}
	if res.Format.SampleRate != s.Format.SampleRate {
		return core.NewReuseFailure("tone block rate %d, synth rate %d", res.Format.SampleRate, s.Format.SampleRate)
	}
	s.render(tn, res)
	return nil
}

func (s *Synth) render(tn *mobject.Tone, res *ToneResource) {
	rate := s.Format.SampleRate
	osc := NewOscillator(tn.Frequency, s.Block, tn.Wave, rate, res.Phase)
	stream := newVolume(beep.Take(s.Block, osc), tn.Amplitude)

	clear(res.Samples)
	filled := 0
	for filled < len(res.Samples) {
		n, ok := stream.Stream(res.Samples[filled:])
		filled += n
		if !ok || n == 0 {
			break
		}
	}
	res.Phase = advance(res.Phase, tn.Frequency, s.Block, rate)
}

// blockStreamer streams a fixed sample slice once
type blockStreamer struct {
	samples [][2]float64
	pos     int
}

func (b *blockStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if b.pos >= len(b.samples) {
		return 0, false
	}
	n = copy(samples, b.samples[b.pos:])
	b.pos += n
	return n, true
}

func (b *blockStreamer) Err() error { return nil }
