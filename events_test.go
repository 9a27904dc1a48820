package intakekit

import (
	"testing"
)

func TestRemovalTopic(t *testing.T) {
	if got := RemovalTopic("files"); got != "selectedFileRemoved_files" {
		t.Errorf("RemovalTopic = %q", got)
	}
}

func TestEventsTopicRouting(t *testing.T) {
	e := NewEvents()

	var docs, images, generic []string
	e.OnSessionRemoval("docs", func(evt RemovalEvent) {
		docs = append(docs, evt.FileName)
	})
	e.OnSessionRemoval("images", func(evt RemovalEvent) {
		images = append(images, evt.FileName)
	})
	e.OnRemoval(func(evt RemovalEvent) {
		generic = append(generic, evt.FileName)
	})

	e.Publish(RemovalEvent{Session: "docs", TrackingID: "1", FileName: "a.txt"})
	e.Publish(RemovalEvent{Session: "images", TrackingID: "2", FileName: "b.png"})
	e.Publish(RemovalEvent{Session: "other", TrackingID: "3", FileName: "c.bin"})

	if len(docs) != 1 || docs[0] != "a.txt" {
		t.Errorf("docs subscriber got %v", docs)
	}
	if len(images) != 1 || images[0] != "b.png" {
		t.Errorf("images subscriber got %v", images)
	}
	if len(generic) != 3 {
		t.Errorf("generic subscriber got %d events, want 3", len(generic))
	}
}

func TestEventsUnregister(t *testing.T) {
	e := NewEvents()

	var first, second int
	unregister := e.OnSessionRemoval("docs", func(RemovalEvent) { first++ })
	e.OnSessionRemoval("docs", func(RemovalEvent) { second++ })

	e.Publish(RemovalEvent{Session: "docs"})
	unregister()
	unregister() // safe to call twice
	e.Publish(RemovalEvent{Session: "docs"})

	if first != 1 {
		t.Errorf("unregistered callback fired %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining callback fired %d times, want 2", second)
	}
}

func TestEventsGenericUnregister(t *testing.T) {
	e := NewEvents()

	var calls int
	unregister := e.OnRemoval(func(RemovalEvent) { calls++ })

	e.Publish(RemovalEvent{Session: "any"})
	unregister()
	e.Publish(RemovalEvent{Session: "any"})

	if calls != 1 {
		t.Errorf("callback fired %d times, want 1", calls)
	}
}

func TestEventsZeroValue(t *testing.T) {
	var e Events

	var calls int
	e.OnSessionRemoval("docs", func(RemovalEvent) { calls++ })
	e.Publish(RemovalEvent{Session: "docs"})

	if calls != 1 {
		t.Errorf("callback fired %d times, want 1", calls)
	}
}
