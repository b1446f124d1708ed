package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hersh/blitztris/internal/game"
	"github.com/hersh/blitztris/internal/scoreboard"
)

var (
	// Indexed by game.Color: I, J, L, O, S, T, Z.
	colors = []string{
		"0",
		"51",
		"21",
		"208",
		"226",
		"46",
		"201",
		"196",
	}

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("15"))

	pulseBoardStyle = boardStyle.
			BorderForeground(lipgloss.Color("51"))

	infoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	gameOverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	rankUpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46"))

	statusStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("219"))
)

func colorOf(c game.Color) string {
	if int(c) < len(colors) {
		return colors[c]
	}
	return "248"
}

func block(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

// RenderBoard draws the stack, the active piece and its ghost. Rows waiting
// to be cleared alternate with white while flash is set.
func RenderBoard(s game.Snapshot, flash bool) string {
	clearing := make(map[int]bool, len(s.ClearingRows))
	for _, y := range s.ClearingRows {
		clearing[y] = true
	}

	active := make(map[game.Position]bool)
	ghost := make(map[game.Position]bool)
	if s.Started {
		s.Active.Cells(func(x, y int) { active[game.Position{X: x, Y: y}] = true })
		gp := s.Active
		gp.Position = s.Ghost
		gp.Cells(func(x, y int) {
			if !game.OverlapsActive(s.Active, s.Ghost, x, y) {
				ghost[game.Position{X: x, Y: y}] = true
			}
		})
	}

	var sb strings.Builder
	for y := 0; y < game.BoardHeight; y++ {
		for x := 0; x < game.BoardWidth; x++ {
			cell := s.Board.Cell(x, y)
			at := game.Position{X: x, Y: y}
			switch {
			case active[at]:
				sb.WriteString(block(colorOf(s.Active.Color)))
			case cell.Filled && clearing[y] && flash:
				sb.WriteString(block("15"))
			case cell.Filled:
				sb.WriteString(block(colorOf(cell.Color)))
			case ghost[at]:
				sb.WriteString(dimStyle.Render("[]"))
			default:
				sb.WriteString("  ")
			}
		}
		if y < game.BoardHeight-1 {
			sb.WriteString("\n")
		}
	}

	if s.RotationPulse {
		return pulseBoardStyle.Render(sb.String())
	}
	return boardStyle.Render(sb.String())
}

func RenderPiece(p game.Piece) string {
	var sb strings.Builder
	for y, row := range p.Shape {
		for _, filled := range row {
			if filled {
				sb.WriteString(block(colorOf(p.Color)))
			} else {
				sb.WriteString("  ")
			}
		}
		if y < len(p.Shape)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderTimer draws the level clock as a bar of TimerSeconds cells.
func RenderTimer(left int) string {
	if left < 0 {
		left = 0
	}
	if left > game.TimerSeconds {
		left = game.TimerSeconds
	}
	bar := strings.Repeat("▮", left) + strings.Repeat("▯", game.TimerSeconds-left)
	color := "46"
	if left <= 5 {
		color = "196"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(bar) + fmt.Sprintf(" %2ds", left)
}

// InfoView is everything the side panel shows besides the snapshot.
type InfoView struct {
	Player string
	Muted  bool
	Volume float64
	Online bool
}

func RenderInfo(s game.Snapshot, v InfoView) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("BLITZTRIS") + "\n\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Player: %s", v.Player)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Score:  %d", s.Score)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Level:  %d", s.Level)) + "\n")
	sb.WriteString(infoStyle.Render(RenderTimer(s.TimeLeft)) + "\n\n")

	sb.WriteString(titleStyle.Render("NEXT") + "\n")
	for i, p := range s.Lookahead {
		sb.WriteString(RenderPiece(p) + "\n")
		if i < len(s.Lookahead)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	sound := fmt.Sprintf("Sound: %d%%", int(v.Volume*100+0.5))
	if v.Muted {
		sound = "Sound: muted"
	}
	sb.WriteString(dimStyle.Render(sound) + "\n")
	if !v.Online {
		sb.WriteString(dimStyle.Render("Scores: offline") + "\n")
	}
	return sb.String()
}

// RenderLeaderboard draws the top rows, marking the player's entry. When the
// player ranks below the cut their row is appended on its own.
func RenderLeaderboard(t scoreboard.Table, rankingUp bool) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("TOP %d", scoreboard.TopN)) + "\n\n")
	if len(t.Top) == 0 {
		sb.WriteString(dimStyle.Render("No scores yet") + "\n")
		return sb.String()
	}

	row := func(rank int, e scoreboard.Entry) string {
		name := e.Name
		if e.ID == scoreboard.LiveID {
			name += " (current)"
		}
		return fmt.Sprintf("%2d. %-22s %7d  L%d", rank, truncate(name, 22), e.Score, e.Level)
	}

	for i, e := range t.Top {
		line := row(i+1, e)
		switch {
		case e.Current && rankingUp:
			line = rankUpStyle.Render(line + " ▲")
		case e.Current:
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	if t.Rank >= 0 && t.OffBoard() {
		sb.WriteString(dimStyle.Render("   ...") + "\n")
		sb.WriteString(highlightStyle.Render(row(t.Rank+1, t.Player)) + "\n")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func RenderWelcome() string {
	return titleStyle.
		Align(lipgloss.Center).
		Render(`
╔══════════════════════════════╗
║      B L I T Z T R I S       ║
║   beat the clock, stack up   ║
╚══════════════════════════════╝

Press N or ENTER to start`)
}

func RenderGameOver(score int, canRename bool) string {
	var sb strings.Builder
	sb.WriteString(gameOverStyle.Render("GAME OVER") + "\n")
	sb.WriteString(fmt.Sprintf("Score: %d\n\n", score))
	sb.WriteString("N / ENTER  new game\n")
	if canRename {
		sb.WriteString("E          change your name\n")
	}
	return sb.String()
}

func RenderPaused() string {
	return highlightStyle.Render("PAUSED") + "\nP to resume"
}

func RenderNameEditor(input string) string {
	return titleStyle.Render("YOUR NAME") + "\n" +
		infoStyle.Render(input+"▏") + "\n" +
		dimStyle.Render("ENTER save · ESC cancel")
}

func RenderControls() string {
	return dimStyle.Render(`← →  move     ↓  soft drop   ↑  rotate
P  pause     N  new game    M  mute   + -  volume
Q  quit`)
}
