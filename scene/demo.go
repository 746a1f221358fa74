package scene

import (
	"math"

	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/rate"
)

var (
	teal  = mobject.Color{R: 0.2, G: 0.8, B: 0.7, A: 1}
	amber = mobject.Color{R: 1, G: 0.7, B: 0.1, A: 1}
	rose  = mobject.Color{R: 0.9, G: 0.3, B: 0.4, A: 1}
)

// Demo returns the built-in scenes
func Demo() []Scene {
	return []Scene{
		{Name: "moving_square", Func: movingSquare},
		{Name: "pulsing_tone", Func: pulsingTone},
		{Name: "composite", Func: composite},
	}
}

func movingSquare(sc *Context) error {
	sq := mobject.Rect(-20, 0, 6, 6, teal)
	sc.Hold(sq, 1)

	moved := sc.Play(sq, mobject.Rect(20, 0, 6, 6, teal), 2, rate.Smooth{})
	spun, err := sc.Animate(moved, mobject.Rotate{Radians: math.Pi / 2}, 1.5)
	if err != nil {
		return err
	}
	sc.Hold(spun, 0.5)
	return nil
}

func pulsingTone(sc *Context) error {
	tone := &mobject.Tone{Frequency: 220, Amplitude: 0.4, Wave: mobject.WaveSine}
	dot := mobject.Circle(0, 0, 4, 24, amber)

	marker := sc.Show(dot)
	defer marker.Close()

	swept, err := sc.Animate(tone, mobject.ToneSweep{Hertz: 110}, 2)
	if err != nil {
		return err
	}
	sc.Play(swept, &mobject.Tone{Frequency: 330, Amplitude: 0, Wave: mobject.WaveSine}, 1, rate.EaseInOutSine{})
	return nil
}

func composite(sc *Context) error {
	left := mobject.RegularPolygon(-10, 0, 5, 3, rose)
	right := mobject.RegularPolygon(10, 0, 5, 5, teal)

	err := sc.Group(func(g *Context) error {
		a := g.Show(left)
		g.Wait(1)
		b := g.Show(right)
		g.Wait(1)
		a.End()
		g.Play(right, right.Translated(0, 8), 1, rate.ThereAndBack{})
		b.End()
		return nil
	})
	if err != nil {
		return err
	}
	sc.Hold(mobject.Rect(0, 0, 30, 2, amber), 1)
	return nil
}
