package media

import (
	"slices"
	"time"

	"github.com/samber/mo"
)

// Metadata describes the media item that is currently playing. Every field is
// optional; an absent field is not advertised at all. The zero value means
// "nothing playing".
//
// Singular and list variants (Artist/Artists, Genre/Genres, ...) are kept
// apart on purpose: platforms disagree on which one they support and the
// caller fills whichever it has.
type Metadata struct {
	Title        mo.Option[string]
	Subtitle     mo.Option[string]
	Artist       mo.Option[string]
	Artists      mo.Option[[]string]
	AlbumTitle   mo.Option[string]
	AlbumArtist  mo.Option[string]
	AlbumArtists mo.Option[[]string]
	Genre        mo.Option[string]
	Genres       mo.Option[[]string]

	TrackNumber     mo.Option[int]
	AlbumTrackCount mo.Option[int]
	DiscNumber      mo.Option[int]
	DiscCount       mo.Option[int]
	Duration        mo.Option[time.Duration]

	Composer  mo.Option[string]
	Composers mo.Option[[]string]
	Lyricists mo.Option[[]string]
	Lyrics    mo.Option[string]
	Comment   mo.Option[string]
	Comments  mo.Option[[]string]

	BeatsPerMinute mo.Option[int]
	// UserRating01 is in [0, 1], UserRating05 in [0, 5].
	UserRating01 mo.Option[float64]
	UserRating05 mo.Option[int]
	AutoRating   mo.Option[float64]
	PlayCount    mo.Option[int]
	SkipCount    mo.Option[int]

	ContentCreated mo.Option[time.Time]
	FirstPlayed    mo.Option[time.Time]
	LastPlayed     mo.Option[time.Time]
	DateAdded      mo.Option[time.Time]
	ReleaseDate    mo.Option[time.Time]

	MediaURL mo.Option[string]

	MediaPersistentID       mo.Option[string]
	ArtistPersistentID      mo.Option[string]
	AlbumPersistentID       mo.Option[string]
	AlbumArtistPersistentID mo.Option[string]
	ComposerPersistentID    mo.Option[string]
	GenrePersistentID       mo.Option[string]
	PodcastPersistentID     mo.Option[string]

	// Fields only some native frameworks understand.
	BookmarkTime      mo.Option[time.Duration]
	IsCloudItem       mo.Option[bool]
	IsCompilation     mo.Option[bool]
	IsPreorder        mo.Option[bool]
	IsExplicit        mo.Option[bool]
	HasProtectedAsset mo.Option[bool]
	PlaybackStoreID   mo.Option[string]
	PodcastTitle      mo.Option[string]
	UserGrouping      mo.Option[string]
	AppMediaID        mo.Option[string]
}

// Cover references artwork for the current item. It is set independently of
// Metadata. The concrete types are CoverURL, CoverFile and CoverBytes.
type Cover interface {
	isCover()
}

// CoverURL is a remote (http, https) or data URL.
type CoverURL string

// CoverFile is a path on the local filesystem.
type CoverFile string

// CoverBytes is a raw encoded image.
type CoverBytes []byte

func (CoverURL) isCover()   {}
func (CoverFile) isCover()  {}
func (CoverBytes) isCover() {}

// Clone returns a copy of m that shares no slices with it.
func (m Metadata) Clone() Metadata {
	m.Artists = cloneList(m.Artists)
	m.AlbumArtists = cloneList(m.AlbumArtists)
	m.Genres = cloneList(m.Genres)
	m.Composers = cloneList(m.Composers)
	m.Lyricists = cloneList(m.Lyricists)
	m.Comments = cloneList(m.Comments)
	return m
}

func cloneList(o mo.Option[[]string]) mo.Option[[]string] {
	if list, ok := o.Get(); ok {
		return mo.Some(slices.Clone(list))
	}
	return o
}
