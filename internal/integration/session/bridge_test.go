package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/player"
)

type fakeSession struct {
	mu       sync.Mutex
	calls    []string
	metadata media.Metadata
	cover    media.Cover
}

func (s *fakeSession) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return nil
}

func (s *fakeSession) SetPlayback(p media.Playback) error {
	return s.record(fmt.Sprintf("playback %s %s", p.Status, p.Position()))
}

func (s *fakeSession) SetMetadata(m media.Metadata) error {
	s.metadata = m
	return s.record("metadata " + m.Title.OrEmpty())
}

func (s *fakeSession) SetCover(c media.Cover) error {
	s.cover = c
	return s.record(fmt.Sprintf("cover %v", c))
}

func (s *fakeSession) SetVolume(v float64) error {
	return s.record(fmt.Sprintf("volume %g", v))
}

func (s *fakeSession) SetRate(r float64) error {
	return s.record(fmt.Sprintf("rate %g", r))
}

func (s *fakeSession) SetRepeat(r media.RepeatMode) error {
	return s.record("repeat " + r.String())
}

func (s *fakeSession) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *fakeSession) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fakePlayer struct {
	states   chan player.State
	commands []string
}

func (p *fakePlayer) Subscribe() <-chan player.State { return p.states }

func (p *fakePlayer) do(format string, args ...any) error {
	p.commands = append(p.commands, fmt.Sprintf(format, args...))
	return nil
}

func (p *fakePlayer) Play(path string) error       { return p.do("play %s", path) }
func (p *fakePlayer) TogglePause() error           { return p.do("toggle") }
func (p *fakePlayer) SetPause(paused bool) error   { return p.do("pause %t", paused) }
func (p *fakePlayer) Stop() error                  { return p.do("stop") }
func (p *fakePlayer) Seek(seconds float64) error   { return p.do("seek %g", seconds) }
func (p *fakePlayer) SeekTo(seconds float64) error { return p.do("seek-to %g", seconds) }
func (p *fakePlayer) SetVolume(volume int) error   { return p.do("volume %d", volume) }
func (p *fakePlayer) SetSpeed(speed float64) error { return p.do("speed %g", speed) }
func (p *fakePlayer) SetLoopFile(loop bool) error  { return p.do("loop %t", loop) }

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestPublish(t *testing.T) {
	Convey("Given a bridge with a fixed clock", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, "/music/album/cover.jpg", []byte("jpeg"), 0o644), ShouldBeNil)

		sess := &fakeSession{}
		b := NewBridge(sess, &fakePlayer{}, fs, quietLogger())
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		b.now = func() time.Time { return now }

		playing := player.State{
			Path:      "/music/album/track one.flac",
			Title:     "Track One",
			Artist:    "Someone",
			Album:     "Album",
			IsPlaying: true,
			Volume:    50,
			Position:  10,
			Duration:  200,
			Speed:     1,
		}

		Convey("The first state publishes everything", func() {
			So(b.Publish(playing), ShouldBeNil)
			So(sess.recorded(), ShouldResemble, []string{
				"metadata Track One",
				"cover /music/album/cover.jpg",
				"playback Playing 10s",
				"volume 0.5",
				"rate 1",
				"repeat None",
			})
			So(sess.metadata.Artists.OrEmpty(), ShouldResemble, []string{"Someone"})
			So(sess.metadata.Duration.OrEmpty(), ShouldEqual, 200*time.Second)
			So(sess.metadata.MediaURL.OrEmpty(), ShouldEqual, "file:///music/album/track%20one.flac")
			So(sess.cover, ShouldEqual, media.CoverFile("/music/album/cover.jpg"))
		})

		Convey("Given the first state was published", func() {
			So(b.Publish(playing), ShouldBeNil)
			sess.reset()

			Convey("Regular progress is not republished", func() {
				now = now.Add(5 * time.Second)
				next := playing
				next.Position = 15
				So(b.Publish(next), ShouldBeNil)
				So(sess.recorded(), ShouldBeEmpty)
			})

			Convey("A jump in position is republished", func() {
				now = now.Add(5 * time.Second)
				next := playing
				next.Position = 120
				So(b.Publish(next), ShouldBeNil)
				So(sess.recorded(), ShouldResemble, []string{"playback Playing 2m0s"})
			})

			Convey("Pausing publishes the status with the position", func() {
				next := playing
				next.IsPlaying = false
				next.LoopFile = true
				So(b.Publish(next), ShouldBeNil)
				So(sess.recorded(), ShouldResemble, []string{"playback Paused 10s", "repeat Track"})
			})

			Convey("Going idle publishes a stopped session", func() {
				So(b.Publish(player.State{Idle: true, Volume: 50, Speed: 1}), ShouldBeNil)
				So(sess.recorded(), ShouldResemble, []string{"metadata ", "cover <nil>", "playback Stopped 0s"})
				So(sess.metadata, ShouldResemble, media.Metadata{})
			})
		})
	})
}

func TestHandleEvent(t *testing.T) {
	Convey("Given a bridge", t, func() {
		p := &fakePlayer{}
		b := NewBridge(&fakeSession{}, p, afero.NewMemMapFs(), quietLogger())
		var forwarded []media.Event
		b.OnUnhandled(func(e media.Event) { forwarded = append(forwarded, e) })

		Convey("Transport requests become player commands", func() {
			b.HandleEvent(media.Event{Kind: media.EventPlay})
			b.HandleEvent(media.Event{Kind: media.EventPause})
			b.HandleEvent(media.Event{Kind: media.EventToggle})
			b.HandleEvent(media.Event{Kind: media.EventStop})
			b.HandleEvent(media.Event{Kind: media.EventSeekBy, Direction: media.SeekBackward, Offset: 5 * time.Second})
			b.HandleEvent(media.Event{Kind: media.EventSetPosition, Position: 90 * time.Second})
			b.HandleEvent(media.Event{Kind: media.EventOpenURI, URI: "https://radio.example/stream"})

			So(p.commands, ShouldResemble, []string{
				"pause false",
				"pause true",
				"toggle",
				"stop",
				"seek -5",
				"seek-to 90",
				"play https://radio.example/stream",
			})
			So(forwarded, ShouldBeEmpty)
		})

		Convey("Value requests are clamped to what mpv accepts", func() {
			b.HandleEvent(media.Event{Kind: media.EventSetVolume, Volume: 1.7})
			b.HandleEvent(media.Event{Kind: media.EventSetVolume, Volume: 0.333})
			b.HandleEvent(media.Event{Kind: media.EventSetRate, Rate: 0})
			b.HandleEvent(media.Event{Kind: media.EventSetRate, Rate: 1.25})
			b.HandleEvent(media.Event{Kind: media.EventSetRepeat, Repeat: media.RepeatTrack})

			So(p.commands, ShouldResemble, []string{"volume 100", "volume 33", "speed 1.25", "loop true"})
		})

		Convey("Requests the player cannot serve are forwarded", func() {
			b.HandleEvent(media.Event{Kind: media.EventNext})
			b.HandleEvent(media.Event{Kind: media.EventQuit})
			b.HandleEvent(media.Event{Kind: media.EventSetShuffle, Shuffle: true})
			b.HandleEvent(media.Event{Kind: media.EventSetRepeat, Repeat: media.RepeatPlaylist})

			So(forwarded, ShouldHaveLength, 4)
			So(forwarded[0].Kind, ShouldEqual, media.EventNext)
			So(forwarded[3].Repeat, ShouldEqual, media.RepeatPlaylist)
			So(p.commands, ShouldResemble, []string{"loop false"})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running bridge", t, func() {
		p := &fakePlayer{states: make(chan player.State, 1)}
		sess := &fakeSession{}
		b := NewBridge(sess, p, afero.NewMemMapFs(), quietLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- b.Run(ctx) }()

		Convey("State updates reach the session until cancelled", func() {
			p.states <- player.State{Path: "/a.mp3", Title: "A", IsPlaying: true, Speed: 1}

			deadline := time.Now().Add(2 * time.Second)
			for len(sess.recorded()) == 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			So(sess.recorded(), ShouldContain, "metadata A")

			cancel()
			So(<-done, ShouldBeNil)
		})

		Reset(func() { cancel() })
	})
}
