package sim

import "github.com/Faultbox/marble-maze/internal/spectator"

// Publisher batches drop events and pushes a snapshot to the hub every
// interval ticks, or immediately when a drop happened.
type Publisher struct {
	hub      *spectator.Hub
	interval uint64
	events   []DropEvent
}

// NewPublisher clamps interval to at least one tick.
func NewPublisher(hub *spectator.Hub, interval int) *Publisher {
	if interval < 1 {
		interval = 1
	}
	return &Publisher{hub: hub, interval: uint64(interval)}
}

// Observe is called after every tick with that tick's drops.
func (p *Publisher) Observe(s *Simulation, events []DropEvent) {
	p.events = append(p.events, events...)
	if len(events) == 0 && s.CurrentTick()%p.interval != 0 {
		return
	}
	p.hub.Publish(s.Snapshot(p.events))
	p.events = nil
}
