// Package session connects the mpv player to the published media session:
// player state flows into the session setters and remote requests flow back
// into player commands.
package session

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/player"
	"github.com/sokolawesome/mediasession/internal/scanner"
)

// seekThreshold is how far the reported position may drift from the
// expected one before it counts as a jump worth publishing.
const seekThreshold = time.Second

// Session is the subset of *mpris.Controls the bridge drives.
type Session interface {
	SetPlayback(media.Playback) error
	SetMetadata(media.Metadata) error
	SetCover(media.Cover) error
	SetVolume(float64) error
	SetRate(float64) error
	SetRepeat(media.RepeatMode) error
}

// Player is the subset of *player.Player the bridge drives.
type Player interface {
	Subscribe() <-chan player.State
	Play(path string) error
	TogglePause() error
	SetPause(paused bool) error
	Stop() error
	Seek(seconds float64) error
	SeekTo(seconds float64) error
	SetVolume(volume int) error
	SetSpeed(speed float64) error
	SetLoopFile(loop bool) error
}

type Bridge struct {
	session Session
	player  Player
	fs      afero.Fs
	log     logrus.FieldLogger
	now     func() time.Time

	// unhandled receives requests the player cannot serve on its own, such
	// as Next or Quit, which need the track list or the UI.
	unhandled func(media.Event)

	last   mo.Option[player.State]
	sentAt time.Time
}

func NewBridge(session Session, p Player, fs afero.Fs, log logrus.FieldLogger) *Bridge {
	return &Bridge{
		session:   session,
		player:    p,
		fs:        fs,
		log:       log,
		now:       time.Now,
		unhandled: func(media.Event) {},
	}
}

// OnUnhandled sets the callback for requests the player cannot serve. It is
// called from the session worker and must not block.
func (b *Bridge) OnUnhandled(f func(media.Event)) {
	b.unhandled = f
}

// Run publishes player state changes until ctx is done or the player stops
// sending updates.
func (b *Bridge) Run(ctx context.Context) error {
	states := b.player.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-states:
			if !ok {
				return nil
			}
			if err := b.Publish(state); err != nil {
				b.log.WithError(err).Warn("could not publish player state")
			}
		}
	}
}

// Publish forwards what changed between the previously published state and
// state to the session.
func (b *Bridge) Publish(state player.State) error {
	last, seen := b.last.Get()
	b.last = mo.Some(state)

	var errs []error
	if !seen || trackChanged(last, state) {
		errs = append(errs, b.session.SetMetadata(trackMetadata(state)))
	}
	if !seen || last.Path != state.Path {
		errs = append(errs, b.session.SetCover(b.cover(state.Path)))
	}
	if !seen || playbackStatus(last) != playbackStatus(state) || b.jumped(last, state) {
		errs = append(errs, b.session.SetPlayback(playback(state)))
		b.sentAt = b.now()
	}
	if !seen || last.Volume != state.Volume {
		errs = append(errs, b.session.SetVolume(float64(state.Volume)/100))
	}
	if !seen || last.Speed != state.Speed {
		errs = append(errs, b.session.SetRate(state.Speed))
	}
	if !seen || last.LoopFile != state.LoopFile {
		errs = append(errs, b.session.SetRepeat(repeatMode(state)))
	}
	return errors.Join(errs...)
}

// jumped reports whether the position moved other than by playing.
func (b *Bridge) jumped(last, state player.State) bool {
	expected := last.Position
	if last.IsPlaying {
		expected += b.now().Sub(b.sentAt).Seconds() * last.Speed
	}
	drift := time.Duration(math.Abs(state.Position-expected) * float64(time.Second))
	return drift > seekThreshold
}

// HandleEvent turns a remote request into a player command. Requests that
// the player cannot serve are passed to the unhandled callback.
func (b *Bridge) HandleEvent(e media.Event) {
	var err error
	switch e.Kind {
	case media.EventPlay:
		err = b.player.SetPause(false)
	case media.EventPause:
		err = b.player.SetPause(true)
	case media.EventToggle:
		err = b.player.TogglePause()
	case media.EventStop:
		err = b.player.Stop()
	case media.EventSeekBy:
		seconds := e.Offset.Seconds()
		if e.Direction == media.SeekBackward {
			seconds = -seconds
		}
		err = b.player.Seek(seconds)
	case media.EventSetPosition:
		err = b.player.SeekTo(e.Position.Seconds())
	case media.EventOpenURI:
		err = b.player.Play(e.URI)
	case media.EventSetVolume:
		err = b.player.SetVolume(int(math.Round(clamp(e.Volume, 0, 1) * 100)))
	case media.EventSetRate:
		if e.Rate > 0 {
			err = b.player.SetSpeed(e.Rate)
		}
	case media.EventSetRepeat:
		err = b.player.SetLoopFile(e.Repeat == media.RepeatTrack)
		if e.Repeat == media.RepeatPlaylist {
			b.unhandled(e)
		}
	default:
		b.unhandled(e)
	}

	if err != nil {
		b.log.WithField("event", e.String()).WithError(err).Warn("player rejected remote request")
	}
}

func (b *Bridge) cover(path string) media.Cover {
	if path == "" || strings.Contains(path, "://") {
		return nil
	}
	if file, ok := scanner.FindCover(b.fs, path); ok {
		return media.CoverFile(file)
	}
	return nil
}

func trackChanged(a, b player.State) bool {
	return a.Path != b.Path || a.Title != b.Title || a.Artist != b.Artist ||
		a.Album != b.Album || a.Duration != b.Duration
}

func trackMetadata(s player.State) media.Metadata {
	var m media.Metadata
	if s.Path == "" && s.Title == "" {
		return m
	}
	if s.Title != "" {
		m.Title = mo.Some(s.Title)
	}
	if s.Artist != "" {
		m.Artist = mo.Some(s.Artist)
		m.Artists = mo.Some([]string{s.Artist})
	}
	if s.Album != "" {
		m.AlbumTitle = mo.Some(s.Album)
	}
	if s.Duration > 0 {
		m.Duration = mo.Some(seconds(s.Duration))
	}
	if s.Path != "" {
		m.MediaURL = mo.Some(mediaURL(s.Path))
	}
	return m
}

func mediaURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}

func playbackStatus(s player.State) media.PlaybackStatus {
	switch {
	case s.Idle || (s.Path == "" && s.Title == ""):
		return media.StatusStopped
	case s.IsPlaying:
		return media.StatusPlaying
	default:
		return media.StatusPaused
	}
}

func playback(s player.State) media.Playback {
	switch playbackStatus(s) {
	case media.StatusPlaying:
		return media.PlayingAt(seconds(s.Position))
	case media.StatusPaused:
		return media.PausedAt(seconds(s.Position))
	}
	return media.Stopped()
}

func repeatMode(s player.State) media.RepeatMode {
	if s.LoopFile {
		return media.RepeatTrack
	}
	return media.RepeatNone
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
