package sim

import (
	"testing"

	"github.com/Faultbox/marble-maze/internal/spectator"
)

func TestPublisherInterval(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())
	hub := spectator.NewHub()
	p := NewPublisher(hub, 3)

	for i := 1; i <= 2; i++ {
		p.Observe(s, s.Tick())
		if _, ok := hub.Last(); ok {
			t.Fatalf("published after tick %d, want every 3rd tick", i)
		}
	}
	p.Observe(s, s.Tick())
	snap, ok := hub.Last()
	if !ok {
		t.Fatal("expected a snapshot on tick 3")
	}
	if snap.Tick != 3 {
		t.Errorf("snapshot tick = %d, want 3", snap.Tick)
	}
}

func TestPublisherFlushesDropsImmediately(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())
	hub := spectator.NewHub()
	p := NewPublisher(hub, 100)

	s.Tick()
	p.Observe(s, []DropEvent{{Tick: 1, Hole: "goal", Distance: 0.2}})

	snap, ok := hub.Last()
	if !ok {
		t.Fatal("expected a snapshot for the drop")
	}
	if len(snap.Events) != 1 || snap.Events[0].Hole != "goal" || snap.Events[0].Type != "drop" {
		t.Errorf("unexpected events %+v", snap.Events)
	}

	// Events are not repeated in later snapshots.
	for i := 0; i < 99; i++ {
		p.Observe(s, s.Tick())
	}
	snap, _ = hub.Last()
	if snap.Tick != 100 || len(snap.Events) != 0 {
		t.Errorf("snapshot tick %d with %d events, want tick 100 and none", snap.Tick, len(snap.Events))
	}
}

func TestPublisherClampsInterval(t *testing.T) {
	s := newSim(t, nil, DefaultOptions())
	hub := spectator.NewHub()
	p := NewPublisher(hub, 0)

	p.Observe(s, s.Tick())
	if _, ok := hub.Last(); !ok {
		t.Error("interval 0 should publish every tick")
	}
}
