package ui

import (
	"github.com/domgiordano/xomify/internal/models"
)

// tracksFetchedMsg carries the result of a top tracks load.
type tracksFetchedMsg struct {
	tracks []models.Track
	err    error
}

// artistsFetchedMsg carries the result of a top artists load.
type artistsFetchedMsg struct {
	artists []models.Artist
	err     error
}

// wrappedFetchedMsg carries the result of a wrapped summary load.
type wrappedFetchedMsg struct {
	summary *models.WrappedSummary
	err     error
}

// radarFetchedMsg carries the result of a release radar load.
type radarFetchedMsg struct {
	entries []models.ReleaseRadarEntry
	err     error
}
