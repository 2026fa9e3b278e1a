// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	// EventFocusLost means held keys will not see their key-up events.
	EventFocusLost
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  sdl.Scancode
	// KeyName is the SDL name of Key, e.g. "I" or "Space".
	KeyName string
	// Repeat is set for key-down events generated by auto-repeat.
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	// Relative motion for mouse moves, scroll amount for wheel events.
	DeltaX int
	DeltaY int
	Button uint8
}

// Input handles all input processing.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool
	drag   bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and converts them to game events.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			case sdl.WINDOWEVENT_FOCUS_LOST:
				i.releaseAll()
				i.events = append(i.events, Event{Type: EventFocusLost})
			}

		case *sdl.KeyboardEvent:
			sc := e.Keysym.Scancode
			ev := Event{Key: sc, KeyName: sdl.GetScancodeName(sc), Repeat: e.Repeat != 0}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
				i.held[sc] = true
			} else {
				ev.Type = EventKeyUp
				delete(i.held, sc)
			}
			i.events = append(i.events, ev)

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				DeltaX: int(e.XRel),
				DeltaY: int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
				if e.Button == sdl.BUTTON_LEFT {
					i.drag = true
				}
			} else {
				ev.Type = EventMouseUp
				if e.Button == sdl.BUTTON_LEFT {
					i.drag = false
				}
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				DeltaX: int(e.X),
				DeltaY: int(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// Dragging reports whether the left mouse button is held.
func (i *Input) Dragging() bool {
	return i.drag
}

func (i *Input) releaseAll() {
	clear(i.held)
	i.drag = false
}
