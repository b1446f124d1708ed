package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/game"
)

const (
	defaultSampleRate = beep.SampleRate(44100)
	themeBeat         = 150 * time.Millisecond
	resampleQuality   = 4
)

// Config holds the player's audio settings.
type Config struct {
	SampleRate int
	Volume     float64 // 0..1
	Muted      bool
}

func DefaultConfig() Config {
	return Config{SampleRate: int(defaultSampleRate), Volume: 0.5}
}

// output is where the mixed signal goes.
type output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate) error {
	return speaker.Init(rate, rate.N(100*time.Millisecond))
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }

// Manager plays the theme and the sound effects. Until Init succeeds it
// is silent and every call is a no-op apart from settings bookkeeping.
type Manager struct {
	mu  sync.Mutex
	cfg Config
	out output
	log *zap.Logger

	rate   beep.SampleRate
	mixer  *beep.Mixer
	master *effects.Volume

	theme      *beep.Ctrl
	themeSpeed *beep.Resampler

	ready   bool
	started bool
	phase   game.Phase
	level   int
}

func NewManager(cfg Config, log *zap.Logger) *Manager {
	return newManager(cfg, speakerOutput{}, log)
}

func newManager(cfg Config, out output, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = int(defaultSampleRate)
	}
	cfg.Volume = clamp(cfg.Volume)
	m := &Manager{
		cfg:   cfg,
		out:   out,
		log:   log,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
		level: 1,
	}
	m.master = newVolume(m.mixer, cfg.Volume)
	m.applyVolume()
	return m
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Init opens the audio device. On failure the manager stays silent and
// the error is returned for logging.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}
	if err := m.out.Init(m.rate); err != nil {
		m.log.Warn("audio unavailable, continuing silently", zap.Error(err))
		return err
	}

	m.themeSpeed = beep.ResampleRatio(resampleQuality, ThemeRate(m.level), newThemeGenerator(m.rate, themeBeat))
	m.theme = &beep.Ctrl{Streamer: m.themeSpeed, Paused: true}
	m.mixer.Add(m.theme)
	m.out.Play(m.master)
	m.ready = true
	return nil
}

// Ready reports whether a device is open.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Close silences everything. The device itself stays open.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return
	}
	m.out.Lock()
	m.mixer.Clear()
	m.out.Unlock()
	m.ready = false
}

// OnEvent implements game.Listener.
func (m *Manager) OnEvent(e game.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch e {
	case game.EventPause:
		m.play(SoundPause)
	case game.EventLinesCleared:
		if m.started {
			m.play(SoundRowClear)
		}
	case game.EventGameOver:
		if m.started {
			m.play(SoundGameOver)
		}
	case game.EventLevelUp:
		m.play(SoundLevelUp)
	}
}

// play must be called with m.mu held.
func (m *Manager) play(s Sound) {
	if !m.ready {
		return
	}
	st := Effect(s, m.rate)
	if st == nil {
		return
	}
	m.out.Lock()
	m.mixer.Add(st)
	m.out.Unlock()
}

// Sync follows the game: the theme plays only while a game is running and
// speeds up with the level.
func (m *Manager) Sync(phase game.Phase, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = phase == game.PhasePlaying || phase == game.PhasePaused
	if phase == m.phase && level == m.level {
		return
	}
	m.phase = phase
	m.level = level
	m.updateTheme()
}

// updateTheme must be called with m.mu held.
func (m *Manager) updateTheme() {
	if !m.ready {
		return
	}
	m.out.Lock()
	defer m.out.Unlock()
	m.theme.Paused = m.phase != game.PhasePlaying || m.cfg.Muted
	m.themeSpeed.SetRatio(ThemeRate(m.level))
}

// --- Settings ---

func (m *Manager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Muted
}

// ToggleMute flips mute and returns the new state.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Muted = !m.cfg.Muted
	m.applyVolume()
	m.updateTheme()
	return m.cfg.Muted
}

func (m *Manager) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Volume
}

// SetVolume sets the master volume, clamped to 0..1.
func (m *Manager) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Volume = clamp(v)
	m.applyVolume()
}

// applyVolume must be called with m.mu held.
func (m *Manager) applyVolume() {
	silent := m.cfg.Muted || m.cfg.Volume <= 0
	vol := 0.0
	if !silent {
		vol = math.Log2(m.cfg.Volume)
	}
	if m.ready {
		m.out.Lock()
		defer m.out.Unlock()
	}
	m.master.Silent = silent
	m.master.Volume = vol
}
