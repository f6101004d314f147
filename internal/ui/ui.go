package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/domgiordano/xomify/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	TrackListView
	ArtistListView
	WrappedView
	RadarView
)

// StatsProvider supplies listening statistics from the Spotify Web API.
type StatsProvider interface {
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error)
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)
}

// WrappedProvider supplies precomputed summaries from the statistics backend.
type WrappedProvider interface {
	Wrapped(ctx context.Context, userID string) (*models.WrappedSummary, error)
	ReleaseRadar(ctx context.Context, userID string) ([]models.ReleaseRadarEntry, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	stats     StatsProvider
	backend   WrappedProvider
	userID    string
	timeRange string
	width     int
	height    int
	menu      list.Model
	trackList list.Model
	artists   list.Model
	radar     list.Model
	summary   *models.WrappedSummary
	loading   bool
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, stats StatsProvider, backend WrappedProvider, userID, timeRange string) *Model {
	items := []list.Item{
		menuItem{title: "Top Tracks", desc: "Your most played tracks", view: TrackListView},
		menuItem{title: "Top Artists", desc: "Your most played artists", view: ArtistListView},
		menuItem{title: "Wrapped", desc: "Year-in-review summary", view: WrappedView},
		menuItem{title: "Release Radar", desc: "Fresh releases from artists you follow", view: RadarView},
	}

	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "xomify"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	return &Model{
		ctx:       ctx,
		view:      MenuView,
		stats:     stats,
		backend:   backend,
		userID:    userID,
		timeRange: timeRange,
		menu:      menu,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init is a no-op; data loads happen when a menu entry is selected.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		if m.trackList.Width() != 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.artists.Width() != 0 {
			m.artists.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.radar.Width() != 0 {
			m.radar.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == MenuView {
			return m.handleMenuKeys(msg)
		}
		return m.handleListKeys(msg)

	case tracksFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.view = MenuView
			return m, nil
		}
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = "Top Tracks"
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case artistsFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.view = MenuView
			return m, nil
		}
		items := make([]list.Item, len(msg.artists))
		for i, artist := range msg.artists {
			items[i] = artistItem{artist: artist}
		}
		m.artists = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.artists.Title = "Top Artists"
		m.artists.SetSize(m.width-4, m.height-8)
		m.view = ArtistListView
		return m, nil

	case wrappedFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.view = MenuView
			return m, nil
		}
		m.summary = msg.summary
		m.view = WrappedView
		return m, nil

	case radarFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.view = MenuView
			return m, nil
		}
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = radarItem{entry: entry}
		}
		m.radar = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.radar.Title = "Release Radar"
		m.radar.SetSize(m.width-4, m.height-8)
		m.view = RadarView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.loading {
		return styles.help.Render("Loading...")
	}

	switch m.view {
	case MenuView:
		return m.renderMenu()
	case TrackListView:
		return m.renderList(m.trackList)
	case ArtistListView:
		return m.renderList(m.artists)
	case WrappedView:
		return m.renderWrapped()
	case RadarView:
		return m.renderList(m.radar)
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.menu.SelectedItem()
		if selected != nil {
			if item, ok := selected.(menuItem); ok {
				m.err = nil
				m.loading = true
				return m, m.load(item.view)
			}
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MenuView
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menu, cmd = m.menu.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	case ArtistListView:
		m.artists, cmd = m.artists.Update(msg)
	case RadarView:
		m.radar, cmd = m.radar.Update(msg)
	}
	return m, cmd
}

func (m *Model) load(view ViewState) tea.Cmd {
	switch view {
	case TrackListView:
		return func() tea.Msg {
			tracks, err := m.stats.TopTracks(m.ctx, m.timeRange, 50)
			return tracksFetchedMsg{tracks: tracks, err: err}
		}
	case ArtistListView:
		return func() tea.Msg {
			artists, err := m.stats.TopArtists(m.ctx, m.timeRange, 50)
			return artistsFetchedMsg{artists: artists, err: err}
		}
	case WrappedView:
		return func() tea.Msg {
			summary, err := m.backend.Wrapped(m.ctx, m.userID)
			return wrappedFetchedMsg{summary: summary, err: err}
		}
	case RadarView:
		return func() tea.Msg {
			entries, err := m.backend.ReleaseRadar(m.ctx, m.userID)
			return radarFetchedMsg{entries: entries, err: err}
		}
	default:
		return nil
	}
}

func (m *Model) renderMenu() string {
	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", errLine, m.menu.View(), helpView)
}

func (m *Model) renderList(l list.Model) string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", l.View(), helpView)
}

func (m *Model) renderWrapped() string {
	title := styles.title.Render(fmt.Sprintf("Wrapped %d", m.summary.Year))
	info := fmt.Sprintf(
		"\nMinutes listened: %d\nTracks: %d\nArtists: %d\n",
		m.summary.MinutesListened,
		m.summary.TrackCount,
		m.summary.ArtistCount,
	)

	var genres string
	if len(m.summary.TopGenres) > 0 {
		genres = "\n" + styles.ok.Render("Top genres:")
		for i, genre := range m.summary.TopGenres {
			genres += fmt.Sprintf("\n  %d. %s", i+1, genre)
		}
		genres += "\n"
	}

	var tracks string
	if len(m.summary.TopTracks) > 0 {
		tracks = "\n" + styles.ok.Render("Top tracks:")
		for i, track := range m.summary.TopTracks {
			tracks += fmt.Sprintf("\n  %d. %s - %s", i+1, track.Artist, track.Title)
		}
		tracks += "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s%s%s%s\n%s", title, info, genres, tracks, helpView)
}
