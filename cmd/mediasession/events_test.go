package main

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/sokolawesome/mediasession/internal/config"
	"github.com/sokolawesome/mediasession/internal/media"
)

type publishedValues struct {
	calls []string
}

func (p *publishedValues) record(format string, args ...any) error {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	return nil
}

func (p *publishedValues) SetPlayback(pb media.Playback) error {
	return p.record("playback %s %s", pb.Status, pb.Position())
}

func (p *publishedValues) SetVolume(v float64) error          { return p.record("volume %g", v) }
func (p *publishedValues) SetRate(r float64) error            { return p.record("rate %g", r) }
func (p *publishedValues) SetShuffle(s bool) error            { return p.record("shuffle %t", s) }
func (p *publishedValues) SetRepeat(r media.RepeatMode) error { return p.record("repeat %s", r) }
func (p *publishedValues) SetFullscreen(f bool) error         { return p.record("fullscreen %t", f) }

func TestEcho(t *testing.T) {
	Convey("Given an echo handler", t, func() {
		log := logrus.New()
		log.SetOutput(io.Discard)
		published := &publishedValues{}
		e := &echo{session: published, log: log, enabled: true}

		Convey("Transport requests are published back", func() {
			e.handle(media.Event{Kind: media.EventPlay})
			e.handle(media.Event{Kind: media.EventSeekBy, Direction: media.SeekForward, Offset: 10 * time.Second})
			e.handle(media.Event{Kind: media.EventSeekBy, Direction: media.SeekBackward, Offset: time.Minute})
			e.handle(media.Event{Kind: media.EventSetPosition, Position: 30 * time.Second})
			e.handle(media.Event{Kind: media.EventToggle})
			e.handle(media.Event{Kind: media.EventStop})

			So(published.calls, ShouldResemble, []string{
				"playback Playing 0s",
				"playback Playing 10s",
				"playback Playing 0s",
				"playback Playing 30s",
				"playback Paused 30s",
				"playback Stopped 0s",
			})
		})

		Convey("Value requests are bounded before publishing", func() {
			e.handle(media.Event{Kind: media.EventSetVolume, Volume: 2})
			e.handle(media.Event{Kind: media.EventSetRate, Rate: 10})
			e.handle(media.Event{Kind: media.EventSetRate, Rate: 2})
			e.handle(media.Event{Kind: media.EventSetShuffle, Shuffle: true})
			e.handle(media.Event{Kind: media.EventSetRepeat, Repeat: media.RepeatPlaylist})
			e.handle(media.Event{Kind: media.EventSetFullscreen, Fullscreen: true})

			So(published.calls, ShouldResemble, []string{
				"volume 1",
				"rate 2",
				"shuffle true",
				"repeat Playlist",
				"fullscreen true",
			})
		})

		Convey("Nothing is published when echo is off", func() {
			e.enabled = false
			e.handle(media.Event{Kind: media.EventPlay})
			e.handle(media.Event{Kind: media.EventNext})
			So(published.calls, ShouldBeEmpty)
		})
	})
}

func TestSessionConfig(t *testing.T) {
	Convey("Session settings become the advertised session", t, func() {
		settings := config.Default().Session
		settings.CanRaise = true

		cfg := sessionConfig(settings)
		So(cfg.BusName(), ShouldEqual, "org.mpris.MediaPlayer2.mediasession")
		So(cfg.Identity, ShouldEqual, "Media Session")

		perms, ok := cfg.Permissions.Get()
		So(ok, ShouldBeTrue)
		So(perms.CanQuit, ShouldBeTrue)
		So(perms.CanRaise, ShouldBeTrue)
		So(perms.CanSetFullscreen, ShouldBeFalse)
		So(perms.CanSeek, ShouldBeTrue)
		So(perms.MinRate, ShouldEqual, minRate)
		So(perms.MaxRate, ShouldEqual, maxRate)
		So(perms.SupportedURISchemes, ShouldResemble, []string{"file"})
	})
}
