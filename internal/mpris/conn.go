// Package mpris publishes a media session on the D-Bus session bus following
// the MPRIS interfaces and forwards remote requests to the application.
package mpris

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	busNamePrefix   = "org.mpris.MediaPlayer2."
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	propertiesInterface     = "org.freedesktop.DBus.Properties"
	introspectableInterface = "org.freedesktop.DBus.Introspectable"
	propertiesChangedSignal = propertiesInterface + ".PropertiesChanged"
	seekedSignal            = playerInterface + ".Seeked"
)

// Conn is the part of a bus connection the session needs. *dbus.Conn
// satisfies it.
type Conn interface {
	// ExportWithMap exports the methods of v, renamed on the bus as mapping
	// says.
	ExportWithMap(v interface{}, mapping map[string]string, path dbus.ObjectPath, iface string) error
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
	// Context is cancelled when the connection is closed or lost.
	Context() context.Context
	Close() error
}

// Dialer opens a new bus connection for one attached session.
type Dialer func() (Conn, error)

// SessionBus opens a private connection to the session bus. A private
// connection is closed on Detach without affecting other users of the
// shared one.
func SessionBus() (Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return conn, nil
}
