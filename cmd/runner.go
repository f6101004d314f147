package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/domgiordano/xomify/internal/auth"
	"github.com/domgiordano/xomify/internal/repositories"
	"github.com/domgiordano/xomify/internal/services"
	"github.com/domgiordano/xomify/internal/shared"
	"github.com/domgiordano/xomify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The session, API clients, and database open lazily on first use so
// commands like setup work before any credentials exist.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	session *auth.Session
	spotify *services.SpotifyClient
	backend *services.BackendClient
	engine  *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Session and client fields are optional injection points for tests.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Session    *auth.Session
	Spotify    *services.SpotifyClient
	Backend    *services.BackendClient
	Engine     *tasks.PlaylistEngine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		session:    opts.Session,
		spotify:    opts.Spotify,
		backend:    opts.Backend,
		engine:     opts.Engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, statsCommand, wrappedCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, for commands that own the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the credential database if it was opened.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ensureDB opens the credential database and applies pending migrations.
func (r *Runner) ensureDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	path := r.config.DatabasePath()
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// ensureSession builds the auth session backed by the credential database.
func (r *Runner) ensureSession() (*auth.Session, error) {
	if r.session != nil {
		return r.session, nil
	}

	if r.config.Credentials.Spotify.ClientID == "" {
		return nil, fmt.Errorf("%w: Spotify client_id must be set in config.toml or XOMIFY_SPOTIFY_CLIENT_ID", shared.ErrMissingCredentials)
	}

	db, err := r.ensureDB()
	if err != nil {
		return nil, err
	}

	var sink auth.TokenSink
	if r.config.Credentials.Backend.Token != "" {
		sink = r.ensureBackend()
	}

	session, err := auth.NewSession(auth.SessionOpts{
		ClientID:    r.config.Credentials.Spotify.ClientID,
		RedirectURI: r.redirectURI(),
		Store:       repositories.NewCredentialRepository(db),
		Authorizer: &auth.BrowserAuthorizer{
			Host:   r.config.Server.Host,
			Port:   r.config.Server.Port,
			Logger: r.logger,
		},
		Sink:       sink,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	r.session = session
	return session, nil
}

// ensureSpotify builds the Spotify client on top of the session's tokens.
func (r *Runner) ensureSpotify() (*services.SpotifyClient, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	session, err := r.ensureSession()
	if err != nil {
		return nil, err
	}

	pipeline := services.NewPipeline(session, r.httpClient, r.logger)
	r.spotify = services.NewSpotifyClient(pipeline)
	return r.spotify, nil
}

// ensureBackend builds the statistics backend client.
func (r *Runner) ensureBackend() *services.BackendClient {
	if r.backend == nil {
		r.backend = services.NewBackendClient(
			r.config.Credentials.Backend.BaseURL,
			r.config.Credentials.Backend.Token,
			r.httpClient,
			r.logger,
		)
	}
	return r.backend
}

// ensureEngine builds the playlist build engine.
func (r *Runner) ensureEngine() (*tasks.PlaylistEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	spotify, err := r.ensureSpotify()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewPlaylistEngine(spotify, r.ensureBackend())
	return r.engine, nil
}

// redirectURI resolves the OAuth redirect, defaulting to the local callback server.
func (r *Runner) redirectURI() string {
	if uri := r.config.Credentials.Spotify.RedirectURI; uri != "" {
		return uri
	}
	return fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
