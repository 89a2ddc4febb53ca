package mpris

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"github.com/sokolawesome/mediasession/internal/media"
)

// property describes one published MPRIS property. Writable properties turn
// a remote write into an event; the state itself only changes when the
// application calls the matching setter.
type property struct {
	name  string
	emit  prop.EmitType
	value func(s *sessionState) interface{}
	// write is nil for read-only properties. It reports false when the
	// request should be ignored.
	write func(v dbus.Variant) (media.Event, bool, *dbus.Error)
}

func (p *property) writable() bool {
	return p.write != nil
}

type propertySet struct {
	iface string
	props []property
}

func (ps *propertySet) lookup(name string) *property {
	for i := range ps.props {
		if ps.props[i].name == name {
			return &ps.props[i]
		}
	}
	return nil
}

var rootProperties = propertySet{
	iface: rootInterface,
	props: []property{
		{name: "CanQuit", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanQuit }},
		{name: "CanRaise", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanRaise }},
		{name: "CanSetFullscreen", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanSetFullscreen }},
		{
			name:  "Fullscreen",
			emit:  prop.EmitTrue,
			value: func(s *sessionState) interface{} { return s.fullscreen },
			write: func(v dbus.Variant) (media.Event, bool, *dbus.Error) {
				fullscreen, ok := v.Value().(bool)
				if !ok {
					return media.Event{}, false, prop.ErrInvalidArg
				}
				return media.Event{Kind: media.EventSetFullscreen, Fullscreen: fullscreen}, true, nil
			},
		},
		{name: "HasTrackList", emit: prop.EmitConst, value: func(*sessionState) interface{} { return false }},
		{name: "Identity", emit: prop.EmitConst, value: func(s *sessionState) interface{} { return s.identity }},
		{name: "DesktopEntry", emit: prop.EmitConst, value: func(s *sessionState) interface{} { return s.desktopEntry }},
		{name: "SupportedUriSchemes", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return stringList(s.permissions.SupportedURISchemes) }},
		{name: "SupportedMimeTypes", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return stringList(s.permissions.SupportedMIMETypes) }},
	},
}

var playerProperties = propertySet{
	iface: playerInterface,
	props: []property{
		{name: "PlaybackStatus", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.playback.Status.String() }},
		{
			name:  "LoopStatus",
			emit:  prop.EmitTrue,
			value: func(s *sessionState) interface{} { return s.repeat.String() },
			write: func(v dbus.Variant) (media.Event, bool, *dbus.Error) {
				wire, ok := v.Value().(string)
				if !ok {
					return media.Event{}, false, prop.ErrInvalidArg
				}
				repeat, ok := media.ParseRepeatMode(wire)
				if !ok {
					return media.Event{}, false, nil
				}
				return media.Event{Kind: media.EventSetRepeat, Repeat: repeat}, true, nil
			},
		},
		{
			name:  "Rate",
			emit:  prop.EmitTrue,
			value: func(s *sessionState) interface{} { return s.rate },
			write: func(v dbus.Variant) (media.Event, bool, *dbus.Error) {
				rate, ok := v.Value().(float64)
				if !ok {
					return media.Event{}, false, prop.ErrInvalidArg
				}
				return media.Event{Kind: media.EventSetRate, Rate: rate}, true, nil
			},
		},
		{
			name:  "Shuffle",
			emit:  prop.EmitTrue,
			value: func(s *sessionState) interface{} { return s.shuffle },
			write: func(v dbus.Variant) (media.Event, bool, *dbus.Error) {
				shuffle, ok := v.Value().(bool)
				if !ok {
					return media.Event{}, false, prop.ErrInvalidArg
				}
				return media.Event{Kind: media.EventSetShuffle, Shuffle: shuffle}, true, nil
			},
		},
		{name: "Metadata", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.metadataDict }},
		{
			name:  "Volume",
			emit:  prop.EmitTrue,
			value: func(s *sessionState) interface{} { return s.volume },
			write: func(v dbus.Variant) (media.Event, bool, *dbus.Error) {
				volume, ok := v.Value().(float64)
				if !ok {
					return media.Event{}, false, prop.ErrInvalidArg
				}
				return media.Event{Kind: media.EventSetVolume, Volume: volume}, true, nil
			},
		},
		// Position changes continuously; peers learn about jumps from Seeked.
		{name: "Position", emit: prop.EmitFalse, value: func(s *sessionState) interface{} { return s.positionMicros() }},
		{name: "MinimumRate", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.MinRate }},
		{name: "MaximumRate", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.MaxRate }},
		{name: "CanGoNext", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanGoNext }},
		{name: "CanGoPrevious", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanGoPrevious }},
		{name: "CanPlay", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanPlay }},
		{name: "CanPause", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanPause }},
		{name: "CanSeek", emit: prop.EmitTrue, value: func(s *sessionState) interface{} { return s.permissions.CanSeek }},
		// MPRIS marks CanControl as constant.
		{name: "CanControl", emit: prop.EmitConst, value: func(s *sessionState) interface{} { return s.permissions.CanControl }},
	},
}

var propertySets = []*propertySet{&rootProperties, &playerProperties}

func lookupSet(iface string) *propertySet {
	for _, ps := range propertySets {
		if ps.iface == iface {
			return ps
		}
	}
	return nil
}

// snapshot encodes every property of ps that is announced through
// PropertiesChanged.
func (ps *propertySet) snapshot(s *sessionState) map[string]dbus.Variant {
	values := make(map[string]dbus.Variant, len(ps.props))
	for i := range ps.props {
		p := &ps.props[i]
		if p.emit != prop.EmitTrue {
			continue
		}
		values[p.name] = dbus.MakeVariant(p.value(s))
	}
	return values
}

func stringList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// properties serves org.freedesktop.DBus.Properties for the session object.
// Every call is executed on the worker goroutine.
type properties struct {
	w *worker
}

func (p *properties) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	var (
		value  dbus.Variant
		result *dbus.Error
	)
	if err := p.w.call(func() {
		ps := lookupSet(iface)
		if ps == nil {
			result = prop.ErrIfaceNotFound
			return
		}
		pr := ps.lookup(name)
		if pr == nil {
			result = prop.ErrPropNotFound
			return
		}
		value = dbus.MakeVariant(pr.value(p.w.state))
	}); err != nil {
		return dbus.Variant{}, err
	}
	return value, result
}

func (p *properties) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	var (
		values map[string]dbus.Variant
		result *dbus.Error
	)
	if err := p.w.call(func() {
		ps := lookupSet(iface)
		if ps == nil {
			result = prop.ErrIfaceNotFound
			return
		}
		values = make(map[string]dbus.Variant, len(ps.props))
		for i := range ps.props {
			values[ps.props[i].name] = dbus.MakeVariant(ps.props[i].value(p.w.state))
		}
	}); err != nil {
		return nil, err
	}
	return values, result
}

func (p *properties) Set(iface, name string, value dbus.Variant) *dbus.Error {
	var result *dbus.Error
	if err := p.w.call(func() {
		ps := lookupSet(iface)
		if ps == nil {
			result = prop.ErrIfaceNotFound
			return
		}
		pr := ps.lookup(name)
		if pr == nil {
			result = prop.ErrPropNotFound
			return
		}
		if !pr.writable() {
			result = prop.ErrReadOnly
			return
		}
		event, ok, err := pr.write(value)
		if err != nil {
			result = err
			return
		}
		if ok {
			p.w.deliver(event)
		}
	}); err != nil {
		return err
	}
	return result
}
