package logger

import (
	"strings"
	"testing"
)

type captureWriter struct {
	events []*Event
}

func (c *captureWriter) Write(e *Event) { c.events = append(c.events, e) }
func (c *captureWriter) Close()         {}

func TestChildInheritsLevelAndBuildsPath(t *testing.T) {
	root := newRoot("ROOT")
	root.SetLevel(Warn)

	child := New("PHYSICS", root)
	if child.Path() != "ROOT/PHYSICS" {
		t.Errorf("Path() = %q, want ROOT/PHYSICS", child.Path())
	}

	w := &captureWriter{}
	child.AddWriter(w)

	child.Info("dropped")
	child.Warn("kept")

	if len(w.events) != 1 || w.events[0].Level != Warn {
		t.Fatalf("got %d events, want exactly the Warn message", len(w.events))
	}
}

func TestAncestorWriterSeesChildEvents(t *testing.T) {
	root := newRoot("ROOT")
	root.SetLevel(Debug)
	w := &captureWriter{}
	root.AddWriter(w)

	child := New("SOLVER", root)
	child.SetLevel(Debug)
	child.Error("boom %d", 7)

	found := false
	for _, e := range w.events {
		if e.Name == "ROOT/SOLVER" && strings.Contains(e.Message, "boom 7") {
			found = true
		}
	}
	if !found {
		t.Error("an ancestor's writer should receive events emitted by a descendant")
	}
}

func TestDisabledLoggerEmitsNothing(t *testing.T) {
	root := newRoot("ROOT")
	w := &captureWriter{}
	root.AddWriter(w)
	root.SetEnabled(false)

	root.Error("silent")
	if len(w.events) != 0 {
		t.Errorf("a disabled logger must not emit, got %d events", len(w.events))
	}
}

func TestRemoveWriter(t *testing.T) {
	root := newRoot("ROOT")
	w := &captureWriter{}
	root.AddWriter(w)

	if !root.RemoveWriter(w) {
		t.Fatal("RemoveWriter should report true for an attached writer")
	}
	root.Error("gone")
	if len(w.events) != 0 {
		t.Errorf("a removed writer must not receive events, got %d", len(w.events))
	}
}

func TestParseLevel(t *testing.T) {
	if lv, err := ParseLevel(" warn "); err != nil || lv != Warn {
		t.Errorf("ParseLevel(warn) = %v, %v", lv, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level name")
	}
}
