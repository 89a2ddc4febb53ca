// Package metadata turns typed media metadata into the MPRIS metadata
// dictionary (a{sv}).
package metadata

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/samber/mo"

	"github.com/sokolawesome/mediasession/internal/media"
)

// TrackID identifies "the current track". The session has no track list, so
// every item shares this path and SetPosition requests referencing it are
// accepted for whatever is playing.
const TrackID dbus.ObjectPath = "/org/mpris/MediaPlayer2/CurrentTrack"

const (
	KeyTrackID        = "mpris:trackid"
	KeyLength         = "mpris:length"
	KeyArtURL         = "mpris:artUrl"
	KeyTitle          = "xesam:title"
	KeyArtist         = "xesam:artist"
	KeyAlbum          = "xesam:album"
	KeyAlbumArtist    = "xesam:albumArtist"
	KeyGenre          = "xesam:genre"
	KeyComposer       = "xesam:composer"
	KeyLyricist       = "xesam:lyricist"
	KeyAsText         = "xesam:asText"
	KeyComment        = "xesam:comment"
	KeyURL            = "xesam:url"
	KeyTrackNumber    = "xesam:trackNumber"
	KeyDiscNumber     = "xesam:discNumber"
	KeyAudioBPM       = "xesam:audioBPM"
	KeyUserRating     = "xesam:userRating"
	KeyAutoRating     = "xesam:autoRating"
	KeyUseCount       = "xesam:useCount"
	KeyContentCreated = "xesam:contentCreated"
	KeyFirstUsed      = "xesam:firstUsed"
	KeyLastUsed       = "xesam:lastUsed"
)

// BuildPropertyDict encodes m and cover as an MPRIS metadata dictionary.
// It never fails: absent fields are omitted and present values are passed
// through unmodified, including out-of-range ones such as a negative
// duration. cover may be nil.
func BuildPropertyDict(m media.Metadata, cover media.Cover) map[string]dbus.Variant {
	dict := map[string]dbus.Variant{
		KeyTrackID: dbus.MakeVariant(TrackID),
	}

	if d, ok := m.Duration.Get(); ok {
		dict[KeyLength] = dbus.MakeVariant(d.Microseconds())
	}
	if u, ok := CoverURL(cover); ok {
		dict[KeyArtURL] = dbus.MakeVariant(u)
	}

	putString(dict, KeyTitle, m.Title)
	putString(dict, KeyAlbum, m.AlbumTitle)
	putString(dict, KeyAsText, m.Lyrics)
	putString(dict, KeyURL, m.MediaURL)

	putList(dict, KeyArtist, m.Artists)
	putList(dict, KeyAlbumArtist, m.AlbumArtists)
	putList(dict, KeyGenre, m.Genres)
	putList(dict, KeyComposer, m.Composers)
	putList(dict, KeyLyricist, m.Lyricists)
	putList(dict, KeyComment, m.Comments)

	putInt(dict, KeyTrackNumber, m.TrackNumber)
	putInt(dict, KeyDiscNumber, m.DiscNumber)
	putInt(dict, KeyAudioBPM, m.BeatsPerMinute)
	putInt(dict, KeyUseCount, m.PlayCount)

	putFloat(dict, KeyUserRating, m.UserRating01)
	putFloat(dict, KeyAutoRating, m.AutoRating)

	putDate(dict, KeyContentCreated, m.ContentCreated)
	putDate(dict, KeyFirstUsed, m.FirstPlayed)
	putDate(dict, KeyLastUsed, m.LastPlayed)

	return dict
}

// CoverURL derives the artwork URL for cover. Remote and data URLs are used
// as they are, absolute local paths become file:// URLs. Relative paths, raw
// bytes and a nil cover have no URL.
func CoverURL(cover media.Cover) (string, bool) {
	switch c := cover.(type) {
	case media.CoverURL:
		if c == "" {
			return "", false
		}
		return string(c), true
	case media.CoverFile:
		if !filepath.IsAbs(string(c)) {
			return "", false
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(string(c))}
		return u.String(), true
	}
	return "", false
}

func putString(dict map[string]dbus.Variant, key string, v mo.Option[string]) {
	if s, ok := v.Get(); ok {
		dict[key] = dbus.MakeVariant(s)
	}
}

func putList(dict map[string]dbus.Variant, key string, v mo.Option[[]string]) {
	if list, ok := v.Get(); ok {
		// a nil slice still has to encode as an empty "as"
		dict[key] = dbus.MakeVariant(append([]string{}, list...))
	}
}

func putInt(dict map[string]dbus.Variant, key string, v mo.Option[int]) {
	if n, ok := v.Get(); ok {
		dict[key] = dbus.MakeVariant(int32(n))
	}
}

func putFloat(dict map[string]dbus.Variant, key string, v mo.Option[float64]) {
	if f, ok := v.Get(); ok {
		dict[key] = dbus.MakeVariant(f)
	}
}

func putDate(dict map[string]dbus.Variant, key string, v mo.Option[time.Time]) {
	if t, ok := v.Get(); ok {
		dict[key] = dbus.MakeVariant(t.Format(time.RFC3339))
	}
}
