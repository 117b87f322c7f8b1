package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelgames/modkit/internal/host"
)

func feed(t *testing.T, m Model, events ...host.Event) Model {
	t.Helper()
	for _, e := range events {
		next, _ := m.Update(eventMsg(e))
		m = next.(Model)
	}
	return m
}

func TestViewTracksPhasesAndMods(t *testing.T) {
	m := New(nil)
	m = feed(t, m,
		host.Event{Kind: host.EventPhase, Detail: "early initialize"},
		host.Event{Kind: host.EventModReady, Mod: "Rocket Pack"},
		host.Event{Kind: host.EventModFailed, Mod: "Broken", Detail: "corrupt state"},
	)
	view := m.View()
	if !strings.Contains(view, "early initialize") {
		t.Fatalf("phase missing: %s", view)
	}
	if !strings.Contains(view, "Rocket Pack") {
		t.Fatalf("ready mod missing: %s", view)
	}
	if !strings.Contains(view, "corrupt state") {
		t.Fatalf("failure detail missing: %s", view)
	}
}

func TestDoneEventFinishesView(t *testing.T) {
	m := New(nil)
	m = feed(t, m,
		host.Event{Kind: host.EventStep, Detail: "Registering content for Rocket Pack"},
		host.Event{Kind: host.EventStep, Detail: "Registering content for Rocket Pack"},
		host.Event{Kind: host.EventDone, Detail: "1 mods loaded, 0 load errors"},
	)
	if !m.Done() {
		t.Fatal("model should be done")
	}
	view := m.View()
	if !strings.Contains(view, "load complete") {
		t.Fatalf("completion line missing: %s", view)
	}
	if !strings.Contains(view, "2 content items processed") {
		t.Fatalf("step tally missing: %s", view)
	}
}

func TestClosedStreamQuits(t *testing.T) {
	m := New(nil)
	next, cmd := m.Update(closedMsg{})
	if !next.(Model).Done() {
		t.Fatal("closed stream should mark done")
	}
	if cmd == nil {
		t.Fatal("closed stream should quit")
	}
}

func TestQuitKey(t *testing.T) {
	m := New(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
}

func TestFailedModUpgradesExistingLine(t *testing.T) {
	m := New(nil)
	m = feed(t, m,
		host.Event{Kind: host.EventModReady, Mod: "Rocket Pack"},
		host.Event{Kind: host.EventModFailed, Mod: "Rocket Pack", Detail: "late failure"},
	)
	if strings.Count(m.View(), "Rocket Pack") != 1 {
		t.Fatalf("duplicate mod line: %s", m.View())
	}
}

func TestWaitForEventDeliversAndCloses(t *testing.T) {
	events := make(chan host.Event, 1)
	events <- host.Event{Kind: host.EventPhase, Detail: "x"}
	msg := waitForEvent(events)()
	if _, ok := msg.(eventMsg); !ok {
		t.Fatalf("want eventMsg, got %T", msg)
	}
	close(events)
	if _, ok := waitForEvent(events)().(closedMsg); !ok {
		t.Fatal("want closedMsg after close")
	}
}
