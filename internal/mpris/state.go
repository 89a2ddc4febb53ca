package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/metadata"
)

// sessionState is the published snapshot. It belongs to the worker goroutine
// and is never touched from anywhere else.
type sessionState struct {
	identity     string
	desktopEntry string

	playback    media.Playback
	repeat      media.RepeatMode
	rate        float64
	shuffle     bool
	volume      float64
	fullscreen  bool
	permissions media.Permissions

	metadata media.Metadata
	cover    media.Cover
	// metadataDict caches the encoded metadata and is replaced, never
	// modified, when metadata or cover change.
	metadataDict map[string]dbus.Variant
}

func newSessionState(cfg Config) *sessionState {
	s := &sessionState{
		identity:     cfg.Identity,
		desktopEntry: cfg.DesktopEntry,
		playback:     media.Stopped(),
		repeat:       media.RepeatNone,
		rate:         1.0,
		volume:       1.0,
		permissions:  cfg.Permissions.OrElse(media.DefaultPermissions()).Clone(),
	}
	s.metadataDict = metadata.BuildPropertyDict(s.metadata, s.cover)
	return s
}

func (s *sessionState) setMetadata(m media.Metadata) {
	s.metadata = m
	s.metadataDict = metadata.BuildPropertyDict(s.metadata, s.cover)
}

func (s *sessionState) setCover(c media.Cover) {
	s.cover = c
	s.metadataDict = metadata.BuildPropertyDict(s.metadata, s.cover)
}

// positionMicros is the Position property value.
func (s *sessionState) positionMicros() int64 {
	return s.playback.Position().Microseconds()
}
