package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/meloday/internal/curate"
	"github.com/desertthunder/meloday/internal/repositories"
	"github.com/desertthunder/meloday/internal/services"
	"github.com/desertthunder/meloday/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.CatalogProvider
	db         *sql.DB
	runs       *repositories.RunRepository
	neighbors  *repositories.NeighborRepository
	logger     *log.Logger
	output     io.Writer
	engine     *curate.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.CatalogProvider
	Logger     *log.Logger
	Output     io.Writer
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.engine = r.buildEngine()

	return r
}

// buildEngine constructs the curation engine from the runner's current dependencies.
func (r *Runner) buildEngine() *curate.Engine {
	moods := curate.MoodMap{}
	if r.config.Files.MoodMap != "" {
		moods = curate.LoadMoodMap(r.config.Files.MoodMap, r.logger)
	}

	opts := []curate.EngineOpt{}
	if r.neighbors != nil {
		opts = append(opts, curate.WithNeighborStore(r.neighbors))
	}
	if r.runs != nil {
		opts = append(opts, curate.WithRunStore(r.runs))
	}

	return curate.NewEngine(r.catalog, r.config, moods, r.logger, opts...)
}

// ensureDatabase lazily opens the database, runs migrations and attaches the
// run history and neighbor cache repositories to the engine.
func (r *Runner) ensureDatabase() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if r.config.Database.Path == ":memory:" {
		// In-memory SQLite exists per connection; the pool must stay at one.
		shared.ConfigureDatabase(db, 1, 1)
	} else {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	r.neighbors = repositories.NewNeighborRepository(db)
	r.engine = r.buildEngine()

	return nil
}

// SetLogger swaps the runner's logger and rebuilds the engine so pipeline logs follow it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = r.buildEngine()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, curateCommand, previewCommand, similarCommand, runsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
