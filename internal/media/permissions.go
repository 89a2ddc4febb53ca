package media

import "slices"

// Permissions lists the capabilities advertised to remote peers. They are
// published as read-only properties and never enforced by the session: an
// application that advertises CanSeek=false may still receive seek requests.
type Permissions struct {
	CanQuit          bool
	CanRaise         bool
	CanSetFullscreen bool
	CanGoNext        bool
	CanGoPrevious    bool
	CanPlay          bool
	CanPause         bool
	CanSeek          bool
	CanControl       bool

	// MinRate <= 1.0 <= MaxRate.
	MinRate float64
	MaxRate float64

	SupportedURISchemes []string
	SupportedMIMETypes  []string
}

func DefaultPermissions() Permissions {
	return Permissions{
		CanQuit:       true,
		CanRaise:      true,
		CanGoNext:     true,
		CanGoPrevious: true,
		CanPlay:       true,
		CanPause:      true,
		CanSeek:       true,
		CanControl:    true,
		MinRate:       1.0,
		MaxRate:       1.0,
	}
}

// Clone returns a copy of p that shares no slices with it.
func (p Permissions) Clone() Permissions {
	p.SupportedURISchemes = slices.Clone(p.SupportedURISchemes)
	p.SupportedMIMETypes = slices.Clone(p.SupportedMIMETypes)
	return p
}
