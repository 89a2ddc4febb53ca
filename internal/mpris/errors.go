package mpris

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

var (
	// ErrNotAttached is returned by setters called while no session is attached.
	ErrNotAttached = errors.New("mpris: session not attached, call Attach first")
	// ErrWorkerGone is returned by setters once the session worker has exited.
	ErrWorkerGone = errors.New("mpris: session worker is not running")
	// ErrNameTaken is returned by Attach when another process owns the bus name.
	ErrNameTaken = errors.New("mpris: bus name already taken")
	// ErrWorkerFailed is returned by Detach when the worker stopped with an error.
	ErrWorkerFailed = errors.New("mpris: session worker failed")
	// ErrWorkerPanicked is returned by Detach when the worker or the event
	// handler panicked.
	ErrWorkerPanicked = errors.New("mpris: session worker panicked")
	// ErrConnectionLost is the worker error for a bus connection that closed
	// underneath it.
	ErrConnectionLost = errors.New("mpris: bus connection lost")
)

var errServiceStopped = dbus.NewError("org.mpris.MediaPlayer2.Error.Stopped",
	[]interface{}{"media session is shutting down"})
