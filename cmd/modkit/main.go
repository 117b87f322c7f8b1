// cmd/modkit/main.go
//
// This is the entry point for the modkit host. It discovers mods under the
// configured mods directory, drives each through the staged lifecycle, and
// shows load progress either in a terminal view or as plain log lines.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelgames/modkit/internal/host"
	"github.com/kestrelgames/modkit/internal/hostcfg"
	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/tui"
)

func main() {
	cfg, err := hostcfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "modkit: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.RootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "modkit: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if cfg.NoUI {
		if err := runHeadless(cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "modkit: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := runWithUI(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "modkit: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless mirrors every progress event into the log and to stderr.
func runHeadless(cfg hostcfg.Config, logger *logging.Logger) error {
	h, err := host.New(cfg, logger, host.WithEventFunc(func(e host.Event) {
		switch e.Kind {
		case host.EventStep:
			// Per-item steps are too chatty outside the UI.
		case host.EventModFailed:
			fmt.Fprintf(os.Stderr, "modkit: %s failed: %s\n", e.Mod, e.Detail)
		default:
			logger.Infof("%s %s %s", e.Kind, e.Mod, e.Detail)
		}
	}))
	if err != nil {
		return err
	}
	return h.Load()
}

// runWithUI feeds host events into the bubbletea loader view. The load
// pass runs on its own goroutine; the UI owns the terminal.
func runWithUI(cfg hostcfg.Config, logger *logging.Logger) error {
	events := make(chan host.Event, 64)
	h, err := host.New(cfg, logger, host.WithEventFunc(func(e host.Event) {
		events <- e
	}))
	if err != nil {
		return err
	}
	loadErr := make(chan error, 1)
	go func() {
		loadErr <- h.Load()
		close(events)
	}()
	p := tea.NewProgram(tui.New(events))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run progress view: %w", err)
	}
	drainEvents(events)
	return <-loadErr
}

// drainEvents discards whatever the load goroutine still emits once the
// progress view has exited. Without a receiver the emitter would block as
// soon as the channel buffer fills and the load pass would never finish.
func drainEvents(events <-chan host.Event) {
	go func() {
		for range events {
		}
	}()
}
