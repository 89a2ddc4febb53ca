package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const emitsChangedAnnotation = "org.freedesktop.DBus.Property.EmitsChangedSignal"

func noArgs(names ...string) []introspect.Method {
	methods := make([]introspect.Method, 0, len(names))
	for _, name := range names {
		methods = append(methods, introspect.Method{Name: name})
	}
	return methods
}

func propertyIntrospection(ps *propertySet) []introspect.Property {
	sample := newSessionState(Config{})
	out := make([]introspect.Property, 0, len(ps.props))
	for i := range ps.props {
		p := &ps.props[i]
		access := "read"
		if p.writable() {
			access = "readwrite"
		}
		ip := introspect.Property{
			Name:   p.name,
			Type:   dbus.SignatureOf(p.value(sample)).String(),
			Access: access,
		}
		if p.emit != prop.EmitTrue {
			ip.Annotations = []introspect.Annotation{{Name: emitsChangedAnnotation, Value: p.emit.String()}}
		}
		out = append(out, ip)
	}
	return out
}

// introspection describes everything exported on the session object path.
func introspection() *introspect.Node {
	playerMethods := append(noArgs("Next", "Previous", "Pause", "PlayPause", "Stop", "Play"),
		introspect.Method{
			Name: "Seek",
			Args: []introspect.Arg{{Name: "Offset", Type: "x", Direction: "in"}},
		},
		introspect.Method{
			Name: "SetPosition",
			Args: []introspect.Arg{
				{Name: "TrackId", Type: "o", Direction: "in"},
				{Name: "Position", Type: "x", Direction: "in"},
			},
		},
		introspect.Method{
			Name: "OpenUri",
			Args: []introspect.Arg{{Name: "Uri", Type: "s", Direction: "in"}},
		},
	)

	return &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       rootInterface,
				Methods:    noArgs("Raise", "Quit"),
				Properties: propertyIntrospection(&rootProperties),
			},
			{
				Name:       playerInterface,
				Methods:    playerMethods,
				Properties: propertyIntrospection(&playerProperties),
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
			},
		},
	}
}
