package mpris

import (
	"reflect"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"github.com/sokolawesome/mediasession/internal/media"
)

// worker owns the session state of one attached session. run is the only
// goroutine that reads or writes state; bus handlers hand their work to it
// through calls.
type worker struct {
	conn    Conn
	busName string
	handler media.Handler
	log     logrus.FieldLogger

	queue *commandQueue
	calls chan func()
	done  chan struct{}

	state *sessionState
	// published holds the last value announced for every EmitTrue
	// property, keyed by interface and property name.
	published  map[string]map[string]dbus.Variant
	lastSeeked mo.Option[int64]
}

func newWorker(conn Conn, cfg Config, handler media.Handler, log logrus.FieldLogger) *worker {
	w := &worker{
		conn:      conn,
		busName:   cfg.BusName(),
		handler:   handler,
		log:       log,
		queue:     newCommandQueue(),
		calls:     make(chan func()),
		done:      make(chan struct{}),
		state:     newSessionState(cfg),
		published: make(map[string]map[string]dbus.Variant, len(propertySets)),
	}
	for _, ps := range propertySets {
		w.published[ps.iface] = ps.snapshot(w.state)
	}
	return w
}

func (w *worker) export() error {
	objects := []struct {
		v       interface{}
		methods map[string]string
		iface   string
	}{
		{&root{w: w}, nil, rootInterface},
		{&player{w: w}, playerMethods, playerInterface},
		{&properties{w: w}, nil, propertiesInterface},
		{introspect.NewIntrospectable(introspection()), nil, introspectableInterface},
	}
	for _, o := range objects {
		if err := w.conn.ExportWithMap(o.v, o.methods, objectPath, o.iface); err != nil {
			return err
		}
	}
	return nil
}

// run serves the session until a shutdown command is drained or the bus
// connection goes away.
func (w *worker) run() error {
	defer w.stop()

	w.log.Info("media session attached")
	for {
		if w.drain() {
			w.log.Info("media session detached")
			return nil
		}

		select {
		case <-w.queue.ready():
		case f := <-w.calls:
			f()
		case <-w.conn.Context().Done():
			w.log.Warn("bus connection lost")
			return ErrConnectionLost
		}
	}
}

// drain applies every pending command in order. It reports true once the
// shutdown command is reached; anything queued behind it is dropped.
func (w *worker) drain() bool {
	for _, cmd := range w.queue.drain() {
		if _, ok := cmd.(shutdownCommand); ok {
			return true
		}
		cmd.apply(w.state)
		w.publish(cmd)
	}
	return false
}

// publish announces the properties whose encoded value differs from the
// last announcement.
func (w *worker) publish(cmd command) {
	for _, ps := range propertySets {
		current := ps.snapshot(w.state)
		previous := w.published[ps.iface]

		changed := make(map[string]dbus.Variant)
		for name, value := range current {
			if old, ok := previous[name]; ok && reflect.DeepEqual(old.Value(), value.Value()) {
				continue
			}
			changed[name] = value
		}
		if len(changed) == 0 {
			continue
		}
		w.published[ps.iface] = current

		if err := w.conn.Emit(objectPath, propertiesChangedSignal, ps.iface, changed, []string{}); err != nil {
			w.log.WithFields(logrus.Fields{
				"interface":  ps.iface,
				"properties": lo.Keys(changed),
			}).WithError(err).Warn("failed to emit PropertiesChanged")
		}
	}

	sp, ok := cmd.(setPlayback)
	if !ok || !sp.playback.HasPosition() {
		return
	}
	position := w.state.positionMicros()
	if last, ok := w.lastSeeked.Get(); ok && last == position {
		return
	}
	w.lastSeeked = mo.Some(position)
	if err := w.conn.Emit(objectPath, seekedSignal, position); err != nil {
		w.log.WithField("position", position).WithError(err).Warn("failed to emit Seeked")
	}
}

// call runs f on the worker goroutine and waits for it to return.
func (w *worker) call(f func()) *dbus.Error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		f()
	}

	select {
	case w.calls <- wrapped:
	case <-w.done:
		return errServiceStopped
	}
	select {
	case <-finished:
		return nil
	case <-w.done:
		return errServiceStopped
	}
}

// request delivers e to the handler from the worker goroutine.
func (w *worker) request(e media.Event) *dbus.Error {
	return w.call(func() { w.deliver(e) })
}

// deliver must only be called on the worker goroutine.
func (w *worker) deliver(e media.Event) {
	w.log.WithField("event", e.String()).Debug("remote request")
	if w.handler != nil {
		w.handler(e)
	}
}

// stop releases the bus name and the connection. It runs when run returns,
// including when the handler panics.
func (w *worker) stop() {
	w.queue.close()
	w.release()
	close(w.done)
}

// abort tears down a worker that never ran, for a failed Attach.
func (w *worker) abort() {
	w.queue.close()
	if err := w.conn.Close(); err != nil {
		w.log.WithError(err).Debug("failed to close bus connection")
	}
	close(w.done)
}

// release gives up the bus name and closes the private connection.
func (w *worker) release() {
	if _, err := w.conn.ReleaseName(w.busName); err != nil {
		w.log.WithError(err).Debug("failed to release bus name")
	}
	if err := w.conn.Close(); err != nil {
		w.log.WithError(err).Debug("failed to close bus connection")
	}
}
