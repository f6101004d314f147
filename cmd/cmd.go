// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// statsFlags are the flags shared by the stats subcommands.
func statsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "range",
			Aliases: []string{"r"},
			Usage:   "Time range: short (4 weeks), medium (6 months), long (years)",
			Value:   "medium",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of entries to return",
			Value:   20,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, csv, markdown",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write CSV output to {output}_tracks.csv / {output}_artists.csv",
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2 (opens browser)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state and token expiry",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// statsCommand handles listening statistics operations
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Aliases: []string{"st"},
		Usage:   "Listening statistics from Spotify",
		Commands: []*cli.Command{
			{
				Name:   "top-tracks",
				Usage:  "Your most played tracks",
				Flags:  statsFlags(),
				Action: r.StatsTopTracks,
			},
			{
				Name:   "top-artists",
				Usage:  "Your most played artists",
				Flags:  statsFlags(),
				Action: r.StatsTopArtists,
			},
			{
				Name:   "followed",
				Usage:  "Artists you follow",
				Flags:  statsFlags(),
				Action: r.StatsFollowed,
			},
			{
				Name:   "albums",
				Usage:  "Your saved albums",
				Flags:  statsFlags(),
				Action: r.StatsAlbums,
			},
			{
				Name:   "new-releases",
				Usage:  "New releases on Spotify",
				Flags:  statsFlags(),
				Action: r.StatsNewReleases,
			},
		},
	}
}

// wrappedCommand handles year-in-review operations backed by the statistics service
func wrappedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "wrapped",
		Usage: "Year-in-review statistics",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display your wrapped summary",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, markdown",
						Value:   "text",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.WrappedShow,
			},
			{
				Name:  "radar",
				Usage: "Fresh releases from artists you follow",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json",
						Value:   "text",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.WrappedRadar,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "from-radar",
				Usage: "Build a playlist from your release radar",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name for the new playlist",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent search workers (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Search requests per second",
						Value: 5,
					},
				},
				Action: r.PlaylistFromRadar,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the credential database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the credential database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive statistics browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "Time range: short, medium, long",
				Value:   "medium",
			},
		},
		Action: r.TUI,
	}
}
