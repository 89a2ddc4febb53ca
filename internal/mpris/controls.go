package mpris

import (
	"fmt"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/sokolawesome/mediasession/internal/media"
)

// Config identifies the published session.
type Config struct {
	// Name is appended to org.mpris.MediaPlayer2 to form the bus name. It
	// must be a valid bus name element.
	Name string
	// Identity is the human readable player name shown by desktop shells.
	Identity string
	// DesktopEntry is the basename of the player's .desktop file.
	DesktopEntry string
	// Permissions published until the first SetPermissions call. Defaults to
	// media.DefaultPermissions.
	Permissions mo.Option[media.Permissions]
}

// BusName returns the well-known name the session claims.
func (c Config) BusName() string {
	return busNamePrefix + c.Name
}

type Option func(*Controls)

// WithDialer replaces the session bus connection, mostly for tests.
func WithDialer(d Dialer) Option {
	return func(c *Controls) {
		c.dial = d
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controls) {
		c.log = log
	}
}

// Controls is the handle an application holds on its media session. Setters
// are safe for concurrent use; Attach and Detach are meant to be called by a
// single owner.
type Controls struct {
	cfg  Config
	dial Dialer
	log  logrus.FieldLogger

	mu     sync.RWMutex
	active *session
}

type session struct {
	w  *worker
	wg conc.WaitGroup
	// err is written by the worker goroutine and read after the wait group
	// has been waited on.
	err error
}

func New(cfg Config, opts ...Option) *Controls {
	c := &Controls{
		cfg:  cfg,
		dial: SessionBus,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach publishes the session and starts serving remote requests, which are
// passed to handler. A session that is already attached is detached first.
// When the connection or the name claim fails no worker is left running.
func (c *Controls) Attach(handler media.Handler) error {
	if err := c.Detach(); err != nil {
		c.log.WithError(err).Warn("previous media session ended with an error")
	}

	busName := c.cfg.BusName()
	conn, err := c.dial()
	if err != nil {
		return fmt.Errorf("could not connect to D-Bus session bus: %w", err)
	}

	w := newWorker(conn, c.cfg, handler, c.log.WithField("bus_name", busName))
	if err := w.export(); err != nil {
		w.abort()
		return fmt.Errorf("could not export media session: %w", err)
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		w.abort()
		return fmt.Errorf("could not request bus name %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		w.abort()
		return fmt.Errorf("%w: %s", ErrNameTaken, busName)
	}

	s := &session{w: w}
	s.wg.Go(func() {
		s.err = w.run()
	})

	c.mu.Lock()
	c.active = s
	c.mu.Unlock()
	return nil
}

// Detach stops the worker and waits for it. Commands queued before the call
// are applied first. Detaching a detached session does nothing. Detach must
// not be called from the event handler.
func (c *Controls) Detach() error {
	c.mu.Lock()
	s := c.active
	c.active = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}

	// The worker may already be gone; its error is reported below.
	_ = s.w.queue.push(shutdownCommand{})

	if r := s.wg.WaitAndRecover(); r != nil {
		return fmt.Errorf("%w: %v", ErrWorkerPanicked, r.Value)
	}
	if s.err != nil {
		return fmt.Errorf("%w: %w", ErrWorkerFailed, s.err)
	}
	return nil
}

// Attached reports whether a session is attached. The worker may still have
// stopped on its own since.
func (c *Controls) Attached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active != nil
}

func (c *Controls) send(cmd command) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.active == nil {
		return ErrNotAttached
	}
	return c.active.w.queue.push(cmd)
}

func (c *Controls) SetPlayback(p media.Playback) error {
	return c.send(setPlayback{playback: p})
}

// SetMetadata replaces the published metadata. Fields left empty are not
// advertised.
func (c *Controls) SetMetadata(m media.Metadata) error {
	return c.send(setMetadata{metadata: m.Clone()})
}

// SetCover replaces the artwork without touching the other metadata. A nil
// cover removes it.
func (c *Controls) SetCover(cover media.Cover) error {
	if b, ok := cover.(media.CoverBytes); ok {
		cover = media.CoverBytes(slices.Clone(b))
	}
	return c.send(setCover{cover: cover})
}

func (c *Controls) SetRepeat(r media.RepeatMode) error {
	return c.send(setRepeat{repeat: r})
}

func (c *Controls) SetRate(rate float64) error {
	return c.send(setRate{rate: rate})
}

func (c *Controls) SetShuffle(shuffle bool) error {
	return c.send(setShuffle{shuffle: shuffle})
}

func (c *Controls) SetVolume(volume float64) error {
	return c.send(setVolume{volume: volume})
}

func (c *Controls) SetPermissions(p media.Permissions) error {
	return c.send(setPermissions{permissions: p.Clone()})
}

func (c *Controls) SetFullscreen(fullscreen bool) error {
	return c.send(setFullscreen{fullscreen: fullscreen})
}
