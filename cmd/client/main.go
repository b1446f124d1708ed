package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/audio"
	"github.com/hersh/blitztris/internal/game"
	"github.com/hersh/blitztris/internal/logging"
	"github.com/hersh/blitztris/internal/player"
	"github.com/hersh/blitztris/internal/scoreclient"
	"github.com/hersh/blitztris/internal/tui"
)

func main() {
	defaultScores := os.Getenv("BLITZTRIS_SCORES_URL")
	if defaultScores == "" {
		defaultScores = "http://localhost:5000"
	}

	scoresURL := flag.String("scores", defaultScores, "Score service URL (empty to play offline)")
	playerName := flag.String("name", "", "Player name (random when empty)")
	mute := flag.Bool("mute", false, "Start muted")
	volume := flag.Float64("volume", 0.5, "Volume between 0 and 1")
	logPath := flag.String("log", "", "Write a debug log to this file")
	flag.Parse()

	err := run(options{
		scoresURL: *scoresURL,
		name:      *playerName,
		mute:      *mute,
		volume:    *volume,
		logPath:   *logPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	scoresURL string
	name      string
	mute      bool
	volume    float64
	logPath   string
}

// run owns every resource the client opens, so deferred cleanup happens
// before main exits.
func run(o options) error {
	// The terminal belongs to the TUI, so logs only go to a file.
	log := zap.NewNop()
	if o.logPath != "" {
		l, err := logging.New(logging.Config{Level: "debug", Format: "json", Output: o.logPath})
		if err != nil {
			return err
		}
		log = l
	}
	defer log.Sync()

	profile := player.NewProfile(o.name, nil)

	sound := audio.NewManager(audio.Config{Volume: o.volume, Muted: o.mute}, log.Named("audio"))
	sound.Init()
	defer sound.Close()

	opts := []game.Option{
		game.WithListener(sound),
		game.WithLogger(log.Named("game")),
	}

	var (
		client   *scoreclient.Client
		scores   tui.ScoreService
		liveFeed bool
	)
	if o.scoresURL != "" {
		client = scoreclient.New(o.scoresURL, log.Named("scores"))
		defer client.Close()
		opts = append(opts, game.WithReporter(client))
		scores = client

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Subscribe(ctx); err != nil {
			log.Warn("leaderboard feed unavailable, polling instead", zap.Error(err))
		} else {
			liveFeed = true
		}
		cancel()
	}

	model := tui.NewModel(tui.Deps{
		Session:  game.NewSession(opts...),
		Profile:  profile,
		Scores:   scores,
		Audio:    sound,
		Log:      log.Named("tui"),
		LiveFeed: liveFeed,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Wire the program into the client so results reach the model
	if client != nil {
		client.SetProgram(p)
	}

	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}
