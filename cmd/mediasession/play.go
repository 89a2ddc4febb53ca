package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sokolawesome/mediasession/internal/integration/session"
	"github.com/sokolawesome/mediasession/internal/logging"
	"github.com/sokolawesome/mediasession/internal/logview"
	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/mpris"
	"github.com/sokolawesome/mediasession/internal/player"
	"github.com/sokolawesome/mediasession/internal/scanner"
	"github.com/sokolawesome/mediasession/internal/ui"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [dir...]",
	Short: "Play music with mpv and publish it as a media session",
	Long: "Scans the given directories (or player.music_dirs) for audio files, plays them with mpv\n" +
		"and publishes the current track so desktop media keys and widgets can control it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd.Context(), args)
	},
}

func runPlay(ctx context.Context, dirs []string) error {
	cfg := *appConfig
	if len(dirs) > 0 {
		cfg.Player.MusicDirs = dirs
	}
	fs := afero.NewOsFs()

	logChan := make(chan string, 100)
	logWriter := logview.NewLogWriter(logChan)
	log, closeLog, err := logging.Setup(fs, cfg.Log, logWriter)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	songs, err := scanner.ScanDirectories(fs, cfg.Player.MusicDirs)
	if err != nil {
		return fmt.Errorf("error scanning music directories: %w", err)
	}

	log.Info("Starting media player...")
	p, err := player.New(cfg.Player.SocketPath, cfg.Player.Volume, log)
	if err != nil {
		return fmt.Errorf("error starting player: %w", err)
	}
	defer func() {
		if err := p.Shutdown(); err != nil {
			log.WithError(err).Warn("error during player shutdown")
		}
	}()

	controls := mpris.New(sessionConfig(cfg.Session), mpris.WithLogger(log))
	bridge := session.NewBridge(controls, p, fs, log)

	model, err := ui.NewModel(songs, p, controls, cfg.Hotkeys, p.Subscribe(), logChan, log)
	if err != nil {
		return err
	}
	model.ShowDroppedLogs(logWriter.Dropped)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.OnUnhandled(func(e media.Event) {
		program.Send(ui.EventMsg(e))
	})

	if err := controls.Attach(bridge.HandleEvent); err != nil {
		log.WithError(err).Warn("media session unavailable, continuing without it")
	} else {
		defer func() {
			if err := controls.Detach(); err != nil {
				log.WithError(err).Warn("media session ended with an error")
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup
	wg.Go(func() {
		if err := bridge.Run(ctx); err != nil {
			log.WithError(err).Warn("player bridge stopped")
		}
	})
	defer wg.Wait()
	defer cancel()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}
