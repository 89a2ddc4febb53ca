package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sokolawesome/mediasession/internal/logging"
	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/mpris"
)

var sample struct {
	title    string
	artist   string
	album    string
	duration time.Duration
	cover    string
	echo     bool
}

func init() {
	eventsCmd.Flags().StringVar(&sample.title, "title", "Sample Track", "Published track title")
	eventsCmd.Flags().StringVar(&sample.artist, "artist", "Sample Artist", "Published track artist")
	eventsCmd.Flags().StringVar(&sample.album, "album", "", "Published album title")
	eventsCmd.Flags().DurationVar(&sample.duration, "duration", 3*time.Minute, "Published track length")
	eventsCmd.Flags().StringVar(&sample.cover, "cover", "", "Artwork URL or absolute file path")
	eventsCmd.Flags().BoolVar(&sample.echo, "echo", true, "Publish honoured requests back so widgets update")

	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Publish a sample track and log every remote request until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log, closeLog, err := logging.Setup(afero.NewOsFs(), appConfig.Log, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()

		cfg := sessionConfig(appConfig.Session)
		controls := mpris.New(cfg, mpris.WithLogger(log))
		e := &echo{session: controls, log: log, enabled: sample.echo}

		if err := controls.Attach(e.handle); err != nil {
			return fmt.Errorf("could not attach media session: %w", err)
		}
		log.WithField("bus_name", cfg.BusName()).Info("media session published, waiting for requests")

		if err := publishSample(controls); err != nil {
			log.WithError(err).Warn("could not publish sample track")
		}

		<-ctx.Done()
		log.Info("detaching media session")
		return controls.Detach()
	},
}

func publishSample(s *mpris.Controls) error {
	m := media.Metadata{Title: mo.Some(sample.title)}
	if sample.artist != "" {
		m.Artist = mo.Some(sample.artist)
		m.Artists = mo.Some([]string{sample.artist})
	}
	if sample.album != "" {
		m.AlbumTitle = mo.Some(sample.album)
	}
	if sample.duration > 0 {
		m.Duration = mo.Some(sample.duration)
	}
	if err := s.SetMetadata(m); err != nil {
		return err
	}
	if sample.cover != "" {
		var cover media.Cover = media.CoverURL(sample.cover)
		if filepath.IsAbs(sample.cover) {
			cover = media.CoverFile(sample.cover)
		}
		if err := s.SetCover(cover); err != nil {
			return err
		}
	}
	return s.SetPlayback(media.PausedAt(0))
}

// echoSession is the part of *mpris.Controls the echo handler publishes to.
type echoSession interface {
	SetPlayback(media.Playback) error
	SetVolume(float64) error
	SetRate(float64) error
	SetShuffle(bool) error
	SetRepeat(media.RepeatMode) error
	SetFullscreen(bool) error
}

// echo logs every request and, when enabled, acts as a player that honours
// them by publishing the requested value. It tracks position only through
// seek requests.
type echo struct {
	session echoSession
	log     logrus.FieldLogger
	enabled bool

	playing  bool
	position time.Duration
}

func (e *echo) handle(ev media.Event) {
	e.log.WithField("event", ev.String()).Info("remote request")
	if !e.enabled {
		return
	}

	var err error
	switch ev.Kind {
	case media.EventPlay:
		e.playing = true
		err = e.session.SetPlayback(e.playback())
	case media.EventPause:
		e.playing = false
		err = e.session.SetPlayback(e.playback())
	case media.EventToggle:
		e.playing = !e.playing
		err = e.session.SetPlayback(e.playback())
	case media.EventStop:
		e.playing = false
		e.position = 0
		err = e.session.SetPlayback(media.Stopped())
	case media.EventSeekBy:
		if ev.Direction == media.SeekForward {
			e.position += ev.Offset
		} else {
			e.position = max(e.position-ev.Offset, 0)
		}
		err = e.session.SetPlayback(e.playback())
	case media.EventSetPosition:
		e.position = ev.Position
		err = e.session.SetPlayback(e.playback())
	case media.EventSetVolume:
		err = e.session.SetVolume(min(max(ev.Volume, 0), 1))
	case media.EventSetRate:
		if ev.Rate >= minRate && ev.Rate <= maxRate {
			err = e.session.SetRate(ev.Rate)
		}
	case media.EventSetShuffle:
		err = e.session.SetShuffle(ev.Shuffle)
	case media.EventSetRepeat:
		err = e.session.SetRepeat(ev.Repeat)
	case media.EventSetFullscreen:
		err = e.session.SetFullscreen(ev.Fullscreen)
	}
	if err != nil {
		e.log.WithError(err).Warn("could not publish honoured request")
	}
}

func (e *echo) playback() media.Playback {
	if e.playing {
		return media.PlayingAt(e.position)
	}
	return media.PausedAt(e.position)
}
