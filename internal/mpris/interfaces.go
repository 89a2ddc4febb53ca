package mpris

import (
	"math"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/sokolawesome/mediasession/internal/media"
)

// root implements org.mpris.MediaPlayer2.
type root struct {
	w *worker
}

func (r *root) Raise() *dbus.Error {
	return r.w.request(media.Event{Kind: media.EventRaise})
}

func (r *root) Quit() *dbus.Error {
	return r.w.request(media.Event{Kind: media.EventQuit})
}

// player implements org.mpris.MediaPlayer2.Player.
type player struct {
	w *worker
}

func (p *player) Next() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventNext})
}

func (p *player) Previous() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventPrevious})
}

func (p *player) Pause() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventPause})
}

func (p *player) PlayPause() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventToggle})
}

func (p *player) Stop() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventStop})
}

func (p *player) Play() *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventPlay})
}

// playerMethods maps Go method names to the bus names they are exported as.
var playerMethods = map[string]string{
	"SeekBy":  "Seek",
	"OpenURI": "OpenUri",
}

// SeekBy serves Seek: it moves the position by offset microseconds relative
// to the current one.
func (p *player) SeekBy(offset int64) *dbus.Error {
	direction := media.SeekForward
	magnitude := offset
	if offset <= 0 {
		direction = media.SeekBackward
		magnitude = -offset
		if offset == math.MinInt64 {
			magnitude = math.MaxInt64
		}
	}
	return p.w.request(media.Event{
		Kind:      media.EventSeekBy,
		Direction: direction,
		Offset:    micros(magnitude),
	})
}

// SetPosition requests an absolute position in microseconds. The track id is
// not checked since the session only ever exposes the current track.
// Negative positions and positions past the known track length are ignored.
func (p *player) SetPosition(_ dbus.ObjectPath, position int64) *dbus.Error {
	if position < 0 {
		return nil
	}
	return p.w.call(func() {
		if length, ok := p.w.state.metadata.Duration.Get(); ok && position > length.Microseconds() {
			return
		}
		p.w.deliver(media.Event{
			Kind:     media.EventSetPosition,
			Position: micros(position),
		})
	})
}

// OpenURI serves OpenUri.
func (p *player) OpenURI(uri string) *dbus.Error {
	return p.w.request(media.Event{Kind: media.EventOpenURI, URI: uri})
}

// micros converts a non-negative count of microseconds, saturating at the
// largest Duration.
func micros(us int64) time.Duration {
	if us > math.MaxInt64/int64(time.Microsecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(us) * time.Microsecond
}
