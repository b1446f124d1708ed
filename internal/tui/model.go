package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/game"
	"github.com/hersh/blitztris/internal/player"
	"github.com/hersh/blitztris/internal/protocol"
	"github.com/hersh/blitztris/internal/scoreboard"
	"github.com/hersh/blitztris/internal/scoreclient"
)

const (
	frameInterval = 16 * time.Millisecond
	pollInterval  = 5 * time.Second
	rankUpFlash   = 1500 * time.Millisecond
	statusTTL     = 5 * time.Second
	flashPeriod   = 100 * time.Millisecond
	maxNameLength = 24
	volumeStep    = 0.1
)

// --- Custom tea.Msg types ---

type FrameMsg time.Time

// PollMsg asks for a leaderboard refresh while the live feed is down.
type PollMsg time.Time

// --- Collaborators ---

// ScoreService is the part of the score client the UI drives.
type ScoreService interface {
	Rename(id, name string)
	FetchCmd() tea.Cmd
}

// Sound is the part of the audio manager the UI drives.
type Sound interface {
	Sync(phase game.Phase, level int)
	ToggleMute() bool
	Muted() bool
	Volume() float64
	SetVolume(v float64)
}

// Deps wires a Model. Scores and Audio may be nil.
type Deps struct {
	Session *game.Session
	Profile *player.Profile
	Scores  ScoreService
	Audio   Sound
	Log     *zap.Logger
	Now     func() time.Time
	// LiveFeed is set when leaderboard pushes are subscribed; polling
	// only runs while it is not.
	LiveFeed bool
}

// --- Model ---

type Model struct {
	session *game.Session
	profile *player.Profile
	scores  ScoreService
	audio   Sound
	log     *zap.Logger
	now     func() time.Time

	width  int
	height int

	records     []protocol.ScoreRecord
	table       scoreboard.Table
	rankUpUntil time.Time
	feedLive    bool

	editing   bool
	nameInput string

	status      string
	statusUntil time.Time
}

func NewModel(d Deps) Model {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	d.Session.SetPlayerName(d.Profile.Name())
	m := Model{
		session: d.Session,
		profile: d.Profile,
		scores:  d.Scores,
		audio:   d.Audio,
		log:     d.Log,
		now:     d.Now,
		table:   scoreboard.Table{Rank: -1},

		feedLive: d.LiveFeed,
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd()}
	if m.scores != nil {
		cmds = append(cmds, m.scores.FetchCmd(), pollCmd())
	}
	return tea.Batch(cmds...)
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return PollMsg(t)
	})
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case FrameMsg:
		m.handleFrame()
		return m, frameCmd()
	case PollMsg:
		if m.scores == nil {
			return m, nil
		}
		if m.feedLive {
			return m, pollCmd()
		}
		return m, tea.Batch(m.scores.FetchCmd(), pollCmd())

	// Score service messages
	case scoreclient.LeaderboardMsg:
		m.records = msg.Scores
		m.refreshTable()
		return m, nil
	case scoreclient.DisconnectedMsg:
		m.feedLive = false
		return m, nil
	case scoreclient.SubmittedMsg:
		if msg.Result.Generation != m.session.Generation() {
			// A newer game started while the save was in flight.
			m.log.Debug("stale submit result", zap.String("id", msg.ID))
			if !m.feedLive && m.scores != nil {
				return m, m.scores.FetchCmd()
			}
			return m, nil
		}
		m.profile.MarkSaved(msg.ID)
		m.setStatus("Score saved! Press E to change your name.")
		m.refreshTable()
		if !m.feedLive && m.scores != nil {
			return m, m.scores.FetchCmd()
		}
		return m, nil
	case scoreclient.SubmitFailedMsg:
		m.setStatus("Could not save your score.")
		return m, nil
	case scoreclient.RenamedMsg:
		m.profile.SetName(msg.Name)
		m.session.SetPlayerName(msg.Name)
		m.setStatus("Name updated.")
		if !m.feedLive && m.scores != nil {
			return m, m.scores.FetchCmd()
		}
		return m, nil
	case scoreclient.RenameFailedMsg:
		m.setStatus("Could not update your name.")
		return m, nil
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusUntil = m.now().Add(statusTTL)
}

// --- Frame ---

func (m *Model) handleFrame() {
	m.session.Tick()
	if m.audio != nil {
		m.audio.Sync(m.session.Phase(), m.session.Level())
	}
	m.refreshTable()
}

func (m *Model) refreshTable() {
	phase := m.session.Phase()
	prev := m.table.Rank
	m.table = scoreboard.Standings(m.records, scoreboard.Live{
		Playing: phase == game.PhasePlaying || phase == game.PhasePaused,
		Name:    m.profile.Name(),
		Score:   m.session.Score(),
		Level:   m.session.Level(),
		SavedID: m.profile.SavedID(),
	})
	if scoreboard.RankedUp(prev, m.table.Rank) {
		m.rankUpUntil = m.now().Add(rankUpFlash)
	}
}

// --- Key handlers ---

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.editing {
		return m.handleEditKeys(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n", "enter":
		m.newGame()
	case "p":
		m.session.TogglePause()
	case "left", "h":
		m.session.MoveLeft()
	case "right", "l":
		m.session.MoveRight()
	case "down", "j":
		m.session.SoftDrop()
	case "up", "k", "x":
		m.session.Rotate()
	case "m":
		if m.audio != nil {
			m.audio.ToggleMute()
		}
	case "+", "=":
		if m.audio != nil {
			m.audio.SetVolume(m.audio.Volume() + volumeStep)
		}
	case "-", "_":
		if m.audio != nil {
			m.audio.SetVolume(m.audio.Volume() - volumeStep)
		}
	case "e":
		if m.session.Phase() == game.PhaseGameOver && m.profile.CanRename() && m.scores != nil {
			m.editing = true
			m.nameInput = m.profile.Name()
		}
	}
	m.refreshTable()
	return m, nil
}

func (m *Model) newGame() {
	m.profile.BeginGame()
	m.session.SetPlayerName(m.profile.Name())
	m.session.StartNewGame()
	m.editing = false
	m.status = ""
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput)
		if name != "" && m.profile.CanRename() {
			m.scores.Rename(m.profile.SavedID(), name)
		}
		m.editing = false
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if _, size := utf8.DecodeLastRuneInString(m.nameInput); size > 0 {
			m.nameInput = m.nameInput[:len(m.nameInput)-size]
		}
	case tea.KeySpace:
		m.appendName(" ")
	case tea.KeyRunes:
		m.appendName(string(msg.Runes))
	}
	return m, nil
}

func (m *Model) appendName(s string) {
	if utf8.RuneCountInString(m.nameInput)+utf8.RuneCountInString(s) <= maxNameLength {
		m.nameInput += s
	}
}

// --- View ---

func (m Model) View() string {
	snap := m.session.Snapshot()
	now := m.now()

	flash := now.UnixMilli()/flashPeriod.Milliseconds()%2 == 0
	board := RenderBoard(snap, flash)

	var overlay string
	switch {
	case m.editing:
		overlay = RenderNameEditor(m.nameInput)
	case snap.Phase == game.PhaseIdle:
		overlay = RenderWelcome()
	case snap.Phase == game.PhasePaused:
		overlay = RenderPaused()
	case snap.Phase == game.PhaseGameOver:
		overlay = RenderGameOver(snap.Score, m.profile.CanRename() && m.scores != nil)
	}

	info := InfoView{
		Player: m.profile.Name(),
		Online: m.scores != nil,
	}
	if m.audio != nil {
		info.Muted = m.audio.Muted()
		info.Volume = m.audio.Volume()
	}

	leftPanel := lipgloss.NewStyle().
		Width(26).
		Render(RenderInfo(snap, info))

	centerPanel := lipgloss.NewStyle().
		Padding(0, 2).
		Render(board)

	panels := []string{leftPanel, centerPanel}
	if m.scores != nil {
		panels = append(panels, lipgloss.NewStyle().
			Padding(0, 1).
			Render(RenderLeaderboard(m.table, now.Before(m.rankUpUntil))))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panels...)

	var footer []string
	if overlay != "" {
		footer = append(footer, overlay)
	}
	if m.status != "" && now.Before(m.statusUntil) {
		footer = append(footer, statusStyle.Render(m.status))
	}
	footer = append(footer, RenderControls())

	content := lipgloss.JoinVertical(lipgloss.Center, body, "", strings.Join(footer, "\n\n"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
