package mpris

import (
	"context"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/sokolawesome/mediasession/internal/media"
)

type signal struct {
	path   dbus.ObjectPath
	name   string
	values []interface{}
}

// iface returns the interface of a PropertiesChanged signal.
func (s signal) iface() string {
	if len(s.values) == 0 {
		return ""
	}
	iface, _ := s.values[0].(string)
	return iface
}

func (s signal) changed() map[string]dbus.Variant {
	if len(s.values) < 2 {
		return nil
	}
	changed, _ := s.values[1].(map[string]dbus.Variant)
	return changed
}

// fakeConn stands in for a session bus connection.
type fakeConn struct {
	mu        sync.Mutex
	exported  map[string]interface{}
	methods   map[string]map[string]string
	emitted   []signal
	requested []string
	released  []string
	closed    bool

	reply      dbus.RequestNameReply
	requestErr error
	exportErr  error

	signals chan signal
	ctx     context.Context
	cancel  context.CancelFunc
}

func newFakeConn() *fakeConn {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeConn{
		exported: make(map[string]interface{}),
		methods:  make(map[string]map[string]string),
		reply:    dbus.RequestNameReplyPrimaryOwner,
		signals:  make(chan signal, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *fakeConn) dialer() Dialer {
	return func() (Conn, error) {
		return c, nil
	}
}

func (c *fakeConn) ExportWithMap(v interface{}, mapping map[string]string, _ dbus.ObjectPath, iface string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exportErr != nil {
		return c.exportErr
	}
	c.exported[iface] = v
	c.methods[iface] = mapping
	return nil
}

// busMethod returns the bus name goMethod is exported under.
func (c *fakeConn) busMethod(iface, goMethod string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.methods[iface][goMethod]; ok {
		return name
	}
	return goMethod
}

func (c *fakeConn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	s := signal{path: path, name: name, values: values}
	c.mu.Lock()
	c.emitted = append(c.emitted, s)
	c.mu.Unlock()
	c.signals <- s
	return nil
}

func (c *fakeConn) RequestName(name string, _ dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requested = append(c.requested, name)
	return c.reply, c.requestErr
}

func (c *fakeConn) ReleaseName(name string) (dbus.ReleaseNameReply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = append(c.released, name)
	return dbus.ReleaseNameReplyReleased, nil
}

func (c *fakeConn) Context() context.Context {
	return c.ctx
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) object(iface string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exported[iface]
}

func (c *fakeConn) player() *player {
	p, _ := c.object(playerInterface).(*player)
	return p
}

func (c *fakeConn) root() *root {
	r, _ := c.object(rootInterface).(*root)
	return r
}

func (c *fakeConn) properties() *properties {
	p, _ := c.object(propertiesInterface).(*properties)
	return p
}

// signalsNamed returns the emitted signals with the given member name, in
// emission order.
func (c *fakeConn) signalsNamed(name string) []signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []signal
	for _, s := range c.emitted {
		if s.name == name {
			out = append(out, s)
		}
	}
	return out
}

// next waits for the next emitted signal. ok is false on timeout.
func (c *fakeConn) next() (s signal, ok bool) {
	select {
	case s = <-c.signals:
		return s, true
	case <-time.After(2 * time.Second):
		return signal{}, false
	}
}

// recorder collects delivered events.
type recorder struct {
	mu     sync.Mutex
	events []media.Event
}

func (r *recorder) handle(e media.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []media.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]media.Event(nil), r.events...)
}
