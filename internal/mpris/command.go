package mpris

import (
	"github.com/sokolawesome/mediasession/internal/media"
)

// command is a state change requested by the application. Commands are
// applied by the worker strictly in the order they were queued.
type command interface {
	apply(s *sessionState)
}

type (
	setMetadata    struct{ metadata media.Metadata }
	setCover       struct{ cover media.Cover }
	setPlayback    struct{ playback media.Playback }
	setRepeat      struct{ repeat media.RepeatMode }
	setRate        struct{ rate float64 }
	setShuffle     struct{ shuffle bool }
	setVolume      struct{ volume float64 }
	setFullscreen  struct{ fullscreen bool }
	setPermissions struct{ permissions media.Permissions }

	// shutdownCommand stops the worker. Commands queued after it are dropped.
	shutdownCommand struct{}
)

func (c setMetadata) apply(s *sessionState)    { s.setMetadata(c.metadata) }
func (c setCover) apply(s *sessionState)       { s.setCover(c.cover) }
func (c setPlayback) apply(s *sessionState)    { s.playback = c.playback }
func (c setRepeat) apply(s *sessionState)      { s.repeat = c.repeat }
func (c setRate) apply(s *sessionState)        { s.rate = c.rate }
func (c setShuffle) apply(s *sessionState)     { s.shuffle = c.shuffle }
func (c setVolume) apply(s *sessionState)      { s.volume = c.volume }
func (c setFullscreen) apply(s *sessionState)  { s.fullscreen = c.fullscreen }
func (c setPermissions) apply(s *sessionState) { s.permissions = c.permissions }
func (shutdownCommand) apply(*sessionState)    {}
