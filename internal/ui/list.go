package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/shared"
)

var (
	_ list.Item = menuItem{}
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
	_ list.Item = radarItem{}
)

// menuItem is a selectable entry on the main menu.
type menuItem struct {
	title string
	desc  string
	view  ViewState
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.Duration))
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return fmt.Sprintf("%d followers", i.artist.Followers)
	}
	return fmt.Sprintf("%s • %d followers", i.artist.Genres[0], i.artist.Followers)
}

// radarItem wraps [models.ReleaseRadarEntry] to implement [list.Item].
type radarItem struct {
	entry models.ReleaseRadarEntry
}

func (i radarItem) FilterValue() string { return i.entry.Album.Name }
func (i radarItem) Title() string       { return i.entry.Album.Name }
func (i radarItem) Description() string {
	return fmt.Sprintf("%s • %s • %d tracks", i.entry.ArtistName, i.entry.Album.ReleaseDate, i.entry.TrackCount)
}
