package media

import (
	"fmt"
	"time"
)

type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventToggle
	EventNext
	EventPrevious
	EventStop
	EventSeekBy
	EventSetPosition
	EventOpenURI
	EventRaise
	EventQuit
	EventSetVolume
	EventSetRate
	EventSetShuffle
	EventSetRepeat
	EventSetFullscreen
)

var eventNames = map[EventKind]string{
	EventPlay:          "Play",
	EventPause:         "Pause",
	EventToggle:        "Toggle",
	EventNext:          "Next",
	EventPrevious:      "Previous",
	EventStop:          "Stop",
	EventSeekBy:        "SeekBy",
	EventSetPosition:   "SetPosition",
	EventOpenURI:       "OpenURI",
	EventRaise:         "Raise",
	EventQuit:          "Quit",
	EventSetVolume:     "SetVolume",
	EventSetRate:       "SetRate",
	EventSetShuffle:    "SetShuffle",
	EventSetRepeat:     "SetRepeat",
	EventSetFullscreen: "SetFullscreen",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

type SeekDirection int

const (
	SeekForward SeekDirection = iota
	SeekBackward
)

func (d SeekDirection) String() string {
	if d == SeekBackward {
		return "Backward"
	}
	return "Forward"
}

// Event is a request coming from a remote peer. Only the fields relevant to
// Kind are set.
//
// Requests that change a published value (volume, rate, shuffle, repeat,
// fullscreen, position) are not applied by the session. An application that
// honours one must call the matching setter so the new value is published.
type Event struct {
	Kind EventKind

	// SeekBy
	Direction SeekDirection
	Offset    time.Duration

	// SetPosition
	Position time.Duration

	URI        string
	Volume     float64
	Rate       float64
	Shuffle    bool
	Repeat     RepeatMode
	Fullscreen bool
}

func (e Event) String() string {
	switch e.Kind {
	case EventSeekBy:
		return fmt.Sprintf("SeekBy(%s, %s)", e.Direction, e.Offset)
	case EventSetPosition:
		return fmt.Sprintf("SetPosition(%s)", e.Position)
	case EventOpenURI:
		return fmt.Sprintf("OpenURI(%q)", e.URI)
	case EventSetVolume:
		return fmt.Sprintf("SetVolume(%g)", e.Volume)
	case EventSetRate:
		return fmt.Sprintf("SetRate(%g)", e.Rate)
	case EventSetShuffle:
		return fmt.Sprintf("SetShuffle(%t)", e.Shuffle)
	case EventSetRepeat:
		return fmt.Sprintf("SetRepeat(%s)", e.Repeat)
	case EventSetFullscreen:
		return fmt.Sprintf("SetFullscreen(%t)", e.Fullscreen)
	}
	return e.Kind.String()
}

// Handler receives remote requests. It runs on the session worker goroutine
// and must return quickly. It may call setters but must never call Detach.
type Handler func(Event)
