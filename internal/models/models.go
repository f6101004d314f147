// package models defines the data model for the xomify statistics client
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt is an integer that tolerates JSON string encoding.
//
// Counts served through the backend's NoSQL layer sometimes arrive as
// strings ("12" instead of 12). Either representation decodes to the
// integer value; an unparsable string decodes to zero (absent) rather
// than failing the whole payload.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		// Possibly a float; truncate rather than reject.
		var fl float64
		if err := json.Unmarshal(data, &fl); err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(int(fl))
		return nil
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// User represents the authenticated Spotify user profile.
type User struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
	Followers   int
	ImageURL    string
}

// Track represents a music track.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	Duration   int // seconds
	Popularity int
	URI        string
}

// Artist represents a music artist.
type Artist struct {
	ID        string
	Name      string
	Genres    []string
	Followers int
	URI       string
}

// Album represents an album, saved or newly released.
type Album struct {
	ID          string
	Name        string
	Artist      string
	ReleaseDate string
	TotalTracks int
	URI         string
}

// Playlist represents a playlist owned by or followed by the user.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	URI         string
}

// WrappedSummary is the precomputed year-in-review payload served by the
// xomify backend.
type WrappedSummary struct {
	UserID          string
	Year            int
	MinutesListened int
	TrackCount      int
	ArtistCount     int
	TopGenres       []string
	TopTracks       []Track
	TopArtists      []Artist
}

// ReleaseRadarEntry is one fresh release from a followed artist, as
// precomputed by the backend.
type ReleaseRadarEntry struct {
	Album      Album
	ArtistID   string
	ArtistName string
	TrackCount int
}
