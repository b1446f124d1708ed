package audio

import (
	"errors"
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hersh/blitztris/internal/game"
)

type fakeOutput struct {
	initErr error
	played  []beep.Streamer
	locks   int
}

func (f *fakeOutput) Init(beep.SampleRate) error { return f.initErr }
func (f *fakeOutput) Play(s beep.Streamer)       { f.played = append(f.played, s) }
func (f *fakeOutput) Lock()                      { f.locks++ }
func (f *fakeOutput) Unlock()                    {}

func newReadyManager(t *testing.T) (*Manager, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	m := newManager(DefaultConfig(), out, nil)
	require.NoError(t, m.Init())
	return m, out
}

func TestInitStartsPausedTheme(t *testing.T) {
	m, out := newReadyManager(t)
	assert.True(t, m.Ready())
	require.Len(t, out.played, 1)
	assert.Equal(t, 1, m.mixer.Len())
	assert.True(t, m.theme.Paused)
}

func TestInitFailureIsSilent(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	m := newManager(DefaultConfig(), out, nil)

	assert.Error(t, m.Init())
	assert.False(t, m.Ready())

	m.Sync(game.PhasePlaying, 1)
	m.OnEvent(game.EventLevelUp)
	assert.Equal(t, 0, m.mixer.Len())
	assert.Empty(t, out.played)
}

func TestEventsNeedStartedGame(t *testing.T) {
	m, _ := newReadyManager(t)

	m.OnEvent(game.EventLinesCleared)
	m.OnEvent(game.EventGameOver)
	assert.Equal(t, 1, m.mixer.Len(), "row clear and game over are muted outside a game")

	m.OnEvent(game.EventPause)
	m.OnEvent(game.EventLevelUp)
	assert.Equal(t, 3, m.mixer.Len())

	m.Sync(game.PhasePlaying, 1)
	m.OnEvent(game.EventLinesCleared)
	m.OnEvent(game.EventGameOver)
	assert.Equal(t, 5, m.mixer.Len())
}

func TestSyncDrivesTheme(t *testing.T) {
	m, _ := newReadyManager(t)

	m.Sync(game.PhasePlaying, 3)
	assert.False(t, m.theme.Paused)
	assert.InDelta(t, 1.2, m.themeSpeed.Ratio(), 1e-9)

	m.Sync(game.PhasePaused, 3)
	assert.True(t, m.theme.Paused)

	m.Sync(game.PhasePlaying, 30)
	assert.InDelta(t, 2.0, m.themeSpeed.Ratio(), 1e-9)

	m.Sync(game.PhaseGameOver, 30)
	assert.True(t, m.theme.Paused)
}

func TestMuteAndVolume(t *testing.T) {
	m, _ := newReadyManager(t)
	m.Sync(game.PhasePlaying, 1)

	assert.True(t, m.ToggleMute())
	assert.True(t, m.Muted())
	assert.True(t, m.master.Silent)
	assert.True(t, m.theme.Paused)

	assert.False(t, m.ToggleMute())
	assert.False(t, m.master.Silent)
	assert.False(t, m.theme.Paused)

	m.SetVolume(1.5)
	assert.Equal(t, 1.0, m.Volume())
	assert.InDelta(t, 0.0, m.master.Volume, 1e-9)

	m.SetVolume(0.25)
	assert.InDelta(t, -2.0, m.master.Volume, 1e-9)

	m.SetVolume(-1)
	assert.Equal(t, 0.0, m.Volume())
	assert.True(t, m.master.Silent)
}

func TestCloseClearsMixer(t *testing.T) {
	m, _ := newReadyManager(t)
	m.OnEvent(game.EventPause)
	m.Close()
	assert.Equal(t, 0, m.mixer.Len())
	assert.False(t, m.Ready())
}

func TestManagerIsListener(t *testing.T) {
	var _ game.Listener = NewManager(DefaultConfig(), nil)
}
