package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hersh/blitztris/internal/audio"
	"github.com/hersh/blitztris/internal/game"
	"github.com/hersh/blitztris/internal/player"
	"github.com/hersh/blitztris/internal/tui"
)

// This is the offline entry point: no score service, no leaderboard.
// With scores:
//   Server: go run ./cmd/server
//   Client: go run ./cmd/client --scores http://localhost:5000 --name YourName

func main() {
	name := ""
	if len(os.Args) > 1 {
		name = os.Args[1]
	}
	if err := run(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name string) error {
	sound := audio.NewManager(audio.DefaultConfig(), nil)
	sound.Init()
	defer sound.Close()

	model := tui.NewModel(tui.Deps{
		Session: game.NewSession(game.WithListener(sound)),
		Profile: player.NewProfile(name, nil),
		Audio:   sound,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
