// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/anypose/internal/engine/interaction"
)

// Event types for viewer use
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
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
	Shift  bool

	// Wheel is positive when scrolling towards the user, like a browser
	// wheel deltaY.
	Wheel float32
}

// Pointer converts a mouse event to a viewport pointer.
func (e Event) Pointer() interaction.Pointer {
	p := interaction.Pointer{
		X:     float32(e.MouseX),
		Y:     float32(e.MouseY),
		Shift: e.Shift,
	}
	switch e.Button {
	case sdl.BUTTON_LEFT:
		p.Button = interaction.ButtonLeft
	case sdl.BUTTON_MIDDLE:
		p.Button = interaction.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		p.Button = interaction.ButtonRight
	}
	return p
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		shift := sdl.GetModState()&sdl.KMOD_SHIFT != 0

		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{
				Key:    e.Keysym.Scancode,
				Repeat: e.Repeat != 0,
				Shift:  shift,
			}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
				i.events = append(i.events, ev)
			} else if e.Type == sdl.KEYUP {
				ev.Type = EventKeyUp
				i.events = append(i.events, ev)
			}

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Shift:  shift,
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
				Shift:  shift,
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
				i.events = append(i.events, ev)
			} else if e.Type == sdl.MOUSEBUTTONUP {
				ev.Type = EventMouseUp
				i.events = append(i.events, ev)
			}

		case *sdl.MouseWheelEvent:
			y := -float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			if y == 0 {
				continue
			}
			i.events = append(i.events, Event{
				Type:  EventMouseWheel,
				Wheel: y,
				Shift: shift,
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

