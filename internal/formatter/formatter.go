// package formatter provides functions to export listening statistics to
// various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/shared"
)

// TracksToCSV converts a track list to CSV format with columns: ID, Title, Artist, Album, Duration, Popularity
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ArtistsToCSV converts an artist list to CSV format with columns: ID, Name, Genres, Followers
func ArtistsToCSV(artists []models.Artist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Genres", "Followers"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, artist := range artists {
		record := []string{
			artist.ID,
			artist.Name,
			strings.Join(artist.Genres, "; "),
			strconv.Itoa(artist.Followers),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown converts a track list to a Markdown document with the given title
func TracksToMarkdown(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		duration := shared.FormatDuration(track.Duration)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, duration))
	}

	return buf.Bytes()
}

// ArtistsToMarkdown converts an artist list to a Markdown document with the given title
func ArtistsToMarkdown(title string, artists []models.Artist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n\n", len(artists)))

	for i, artist := range artists {
		genrePart := ""
		if len(artist.Genres) > 0 {
			genrePart = fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, artist.Name, genrePart))
	}

	return buf.Bytes()
}

// TracksToText converts a track list to plain text format
func TracksToText(tracks []models.Track) []byte {
	var buf bytes.Buffer

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes()
}

// ArtistsToText converts an artist list to plain text format
func ArtistsToText(artists []models.Artist) []byte {
	var buf bytes.Buffer

	for i, artist := range artists {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
	}

	return buf.Bytes()
}

// WrappedToMarkdown converts a year-in-review summary to a Markdown document
func WrappedToMarkdown(summary *models.WrappedSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Wrapped %d\n\n", summary.Year))
	buf.WriteString(fmt.Sprintf("**Minutes listened**: %d\n", summary.MinutesListened))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", summary.TrackCount))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n\n", summary.ArtistCount))

	if len(summary.TopGenres) > 0 {
		buf.WriteString("## Top Genres\n\n")
		for i, genre := range summary.TopGenres {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, genre))
		}
		buf.WriteString("\n")
	}

	if len(summary.TopTracks) > 0 {
		buf.WriteString("## Top Tracks\n\n")
		for i, track := range summary.TopTracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
		}
		buf.WriteString("\n")
	}

	if len(summary.TopArtists) > 0 {
		buf.WriteString("## Top Artists\n\n")
		for i, artist := range summary.TopArtists {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
		}
	}

	return buf.Bytes()
}

// WrappedToText converts a year-in-review summary to plain text format
func WrappedToText(summary *models.WrappedSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Wrapped %d\n", summary.Year))
	buf.WriteString(fmt.Sprintf("Minutes listened: %d\n", summary.MinutesListened))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n", summary.TrackCount))
	buf.WriteString(fmt.Sprintf("Artists: %d\n", summary.ArtistCount))

	if len(summary.TopGenres) > 0 {
		buf.WriteString(fmt.Sprintf("Top genres: %s\n", strings.Join(summary.TopGenres, ", ")))
	}

	if len(summary.TopTracks) > 0 {
		buf.WriteString("\nTop tracks:\n")
		buf.Write(TracksToText(summary.TopTracks))
	}

	if len(summary.TopArtists) > 0 {
		buf.WriteString("\nTop artists:\n")
		buf.Write(ArtistsToText(summary.TopArtists))
	}

	return buf.Bytes()
}

// RadarToText converts release radar entries to plain text format
func RadarToText(entries []models.ReleaseRadarEntry) []byte {
	var buf bytes.Buffer

	for i, entry := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s, %d tracks)\n",
			i+1, entry.ArtistName, entry.Album.Name, entry.Album.ReleaseDate, entry.TrackCount))
	}

	return buf.Bytes()
}

// ToJSON generates a pretty-printed JSON representation of any export payload
func ToJSON(data any) ([]byte, error) {
	return shared.MarshalJSON(data, true)
}

// WriteTracksCSV exports a track list to a CSV file.
//
// Defaults to {base}_tracks.csv as the filename.
func WriteTracksCSV(tracks []models.Track, base string) (string, error) {
	if base == "" {
		base = "top"
	}

	csvData, err := TracksToCSV(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := base + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return tracksFile, nil
}

// WriteArtistsCSV exports an artist list to a CSV file.
//
// Defaults to {base}_artists.csv as the filename.
func WriteArtistsCSV(artists []models.Artist, base string) (string, error) {
	if base == "" {
		base = "top"
	}

	csvData, err := ArtistsToCSV(artists)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	artistsFile := base + "_artists.csv"
	if err := os.WriteFile(artistsFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return artistsFile, nil
}
