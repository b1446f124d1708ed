package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType selects an oscillator shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveTriangle
)

func wave(w WaveType, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 4*math.Abs(phase-0.5) - 1
	}
	return math.Sin(2 * math.Pi * phase)
}

// oscillator plays one frequency for a fixed duration.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

func NewOscillator(freq float64, duration time.Duration, w WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     w,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		v := wave(o.wave, o.phase)
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over the final release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; e.release > 0 && left < e.release {
			vol = math.Min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; zero or less is silence.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

type note struct {
	freq  float64
	beats float64
}

func notes(rate beep.SampleRate, w WaveType, beat time.Duration, seq ...note) beep.Streamer {
	parts := make([]beep.Streamer, len(seq))
	for i, n := range seq {
		d := time.Duration(float64(beat) * n.beats)
		parts[i] = NewEnvelope(NewOscillator(n.freq, d, w, rate), d, 5*time.Millisecond, d/3, rate)
	}
	return beep.Seq(parts...)
}

// --- Sound effects ---

// Sound names one effect.
type Sound int

const (
	SoundPause Sound = iota
	SoundRowClear
	SoundGameOver
	SoundLevelUp
)

func (s Sound) String() string {
	switch s {
	case SoundPause:
		return "pause"
	case SoundRowClear:
		return "row_clear"
	case SoundGameOver:
		return "game_over"
	case SoundLevelUp:
		return "level_up"
	}
	return "unknown"
}

// Effect synthesizes s. Each call returns a fresh one-shot streamer.
func Effect(s Sound, rate beep.SampleRate) beep.Streamer {
	switch s {
	case SoundPause:
		return notes(rate, WaveSquare, 80*time.Millisecond,
			note{988, 1}, note{659, 1}, note{988, 1}, note{659, 2})
	case SoundRowClear:
		return notes(rate, WaveTriangle, 50*time.Millisecond,
			note{523, 1}, note{659, 1}, note{784, 1}, note{1047, 3})
	case SoundGameOver:
		return notes(rate, WaveSquare, 180*time.Millisecond,
			note{392, 1}, note{370, 1}, note{349, 1}, note{330, 4})
	case SoundLevelUp:
		return notes(rate, WaveSquare, 70*time.Millisecond,
			note{523, 1}, note{784, 1}, note{1047, 1}, note{1568, 3})
	}
	return nil
}

// --- Theme ---

// korobeiniki is the theme's opening phrase; beats are quarter notes.
var korobeiniki = []note{
	{659, 1}, {494, 0.5}, {523, 0.5}, {587, 1}, {523, 0.5}, {494, 0.5},
	{440, 1}, {440, 0.5}, {523, 0.5}, {659, 1}, {587, 0.5}, {523, 0.5},
	{494, 1.5}, {523, 0.5}, {587, 1}, {659, 1},
	{523, 1}, {440, 1}, {440, 2},
	{0, 0.5}, {587, 1}, {698, 0.5}, {880, 1}, {784, 0.5}, {698, 0.5},
	{659, 1.5}, {523, 0.5}, {659, 1}, {587, 0.5}, {523, 0.5},
	{494, 1}, {494, 0.5}, {523, 0.5}, {587, 1}, {659, 1},
	{523, 1}, {440, 1}, {440, 2},
}

// themeGenerator loops the melody forever.
type themeGenerator struct {
	rate   beep.SampleRate
	starts []int
	freqs  []float64
	cycle  int
	pos    int
	phase  float64
}

func newThemeGenerator(rate beep.SampleRate, beat time.Duration) *themeGenerator {
	g := &themeGenerator{rate: rate}
	for _, n := range korobeiniki {
		g.starts = append(g.starts, g.cycle)
		g.freqs = append(g.freqs, n.freq)
		g.cycle += rate.N(time.Duration(float64(beat) * n.beats))
	}
	return g
}

func (g *themeGenerator) noteAt(p int) (idx, offset, length int) {
	for i := len(g.starts) - 1; i >= 0; i-- {
		if p >= g.starts[i] {
			end := g.cycle
			if i+1 < len(g.starts) {
				end = g.starts[i+1]
			}
			return i, p - g.starts[i], end - g.starts[i]
		}
	}
	return 0, p, g.cycle
}

func (g *themeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		idx, off, length := g.noteAt(g.pos % g.cycle)
		freq := g.freqs[idx]
		v := 0.0
		if freq > 0 {
			// Each note decays linearly to silence.
			env := 1 - float64(off)/float64(length)
			v = 0.25 * env * (wave(WaveSquare, g.phase)*0.6 + wave(WaveTriangle, g.phase)*0.4)
			g.phase += freq / float64(g.rate)
			g.phase -= math.Floor(g.phase)
		}
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *themeGenerator) Err() error { return nil }

// ThemeRate is the theme's playback speed at level: 10% faster per level,
// never more than double.
func ThemeRate(level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Min(2, 1+0.1*float64(level-1))
}
