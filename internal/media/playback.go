// Package media holds the data model shared by the session service and the
// applications that embed it.
package media

import (
	"time"

	"github.com/samber/mo"
)

type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPaused
	StatusPlaying
)

// String returns the MPRIS wire value.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Playback is the current playback status. Progress is only meaningful while
// paused or playing and is ignored for a stopped player.
type Playback struct {
	Status   PlaybackStatus
	Progress mo.Option[time.Duration]
}

func Stopped() Playback {
	return Playback{Status: StatusStopped}
}

func Paused(progress mo.Option[time.Duration]) Playback {
	return Playback{Status: StatusPaused, Progress: progress}
}

func Playing(progress mo.Option[time.Duration]) Playback {
	return Playback{Status: StatusPlaying, Progress: progress}
}

func PausedAt(progress time.Duration) Playback {
	return Paused(mo.Some(progress))
}

func PlayingAt(progress time.Duration) Playback {
	return Playing(mo.Some(progress))
}

// Position returns the progress of a paused or playing item, or zero.
func (p Playback) Position() time.Duration {
	if p.Status == StatusStopped {
		return 0
	}
	return p.Progress.OrEmpty()
}

// HasPosition reports whether the playback carries a known progress.
func (p Playback) HasPosition() bool {
	return p.Status != StatusStopped && p.Progress.IsPresent()
}

type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatTrack
	RepeatPlaylist
)

// String returns the MPRIS LoopStatus wire value.
func (r RepeatMode) String() string {
	switch r {
	case RepeatTrack:
		return "Track"
	case RepeatPlaylist:
		return "Playlist"
	default:
		return "None"
	}
}

// ParseRepeatMode decodes a LoopStatus wire value. Unknown values report false.
func ParseRepeatMode(s string) (RepeatMode, bool) {
	switch s {
	case "None":
		return RepeatNone, true
	case "Track":
		return RepeatTrack, true
	case "Playlist":
		return RepeatPlaylist, true
	}
	return RepeatNone, false
}
