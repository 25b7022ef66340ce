package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/catalog"
	"github.com/runger/cinematch/internal/config"
	"github.com/runger/cinematch/internal/ingest"
	"github.com/runger/cinematch/internal/logging"
	"github.com/runger/cinematch/internal/picker"
	"github.com/runger/cinematch/internal/recommend"
	"github.com/runger/cinematch/internal/render"
)

// app is the per-invocation state shared by the catalog commands.
type app struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	// raw is the catalog as loaded; norm is the normalized copy used for
	// distances.
	raw  *catalog.Catalog
	norm *catalog.Catalog

	closeLog func() error
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (*config.Config, *config.Paths, string, error) {
	paths := config.DefaultPaths()
	path := configPath

	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		path = paths.ConfigFile()
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(path)
	}
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if logLevelFlag != "" {
		if err := cfg.Set("log.level", logLevelFlag); err != nil {
			return nil, nil, "", err
		}
	}
	return cfg, paths, path, nil
}

// newLogger builds the logger described by cfg.Log. Logs go to stderr
// unless log.file is set.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	out := stderr
	closeFn := func() error { return nil }

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	logger := logging.New(&logging.Config{Output: out, Level: level, Format: cfg.Log.Format})
	return logger, closeFn, nil
}

// openApp loads config, logger and catalog for a command.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, paths, cfgFile, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logging.LogConfigLoaded(logger, cfgFile)

	a := &app{cfg: cfg, paths: paths, logger: logger, closeLog: closeLog}
	if err := a.loadCatalog(cmd); err != nil {
		_ = closeLog()
		return nil, err
	}
	return a, nil
}

// loadCatalog ingests and normalizes the configured catalog.
func (a *app) loadCatalog(cmd *cobra.Command) error {
	path := a.cfg.CatalogPath(a.paths)
	format := ingest.DetectFormat(path, ingest.Format(a.cfg.Catalog.Format))

	raw, report, err := ingest.Load(cmdContext(cmd), path, ingest.Options{
		Format:      format,
		TitleColumn: a.cfg.Catalog.TitleColumn,
		DropColumns: a.cfg.Catalog.DropColumns,
		Continuous:  a.cfg.Catalog.Continuous,
		Table:       a.cfg.Catalog.Table,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	logging.LogCatalogLoaded(a.logger, logging.CatalogInfo{
		Path:       path,
		Format:     string(format),
		Rows:       report.Rows,
		Records:    report.Loaded,
		Features:   raw.Schema().Len(),
		Malformed:  report.Malformed,
		Missing:    report.Missing,
		Duplicates: report.Duplicates,
	})

	norm, err := catalog.Normalize(raw, a.cfg.Catalog.Scale)
	if err != nil {
		return fmt.Errorf("failed to normalize catalog: %w", err)
	}
	continuous := 0
	for _, f := range raw.Schema().Fields() {
		if f.Kind == catalog.Continuous {
			continuous++
		}
	}
	logging.LogNormalized(a.logger, continuous, a.cfg.Catalog.Scale)

	a.raw, a.norm = raw, norm
	return nil
}

// Close releases the log file, if any.
func (a *app) Close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

// engine returns a recommendation engine over the normalized catalog.
func (a *app) engine(ch recommend.Chooser) *recommend.Engine {
	return recommend.New(a.norm, recommend.WithChooser(ch), recommend.WithLogger(a.logger))
}

// printer returns a text printer for w. A non-empty colorFlag overrides
// output.color.
func (a *app) printer(w io.Writer, colorFlag string) *render.Printer {
	mode := a.cfg.Output.Color
	if colorFlag != "" {
		mode = colorFlag
	}
	return render.New(w, render.Options{Color: mode, MaxTitleWidth: a.cfg.Output.MaxTitleWidth})
}

// wantJSON reports whether output should be JSON.
func (a *app) wantJSON(jsonFlag bool) bool {
	return jsonFlag || a.cfg.Output.Format == "json"
}

// chooserFor returns the title chooser for mode. The full-screen picker
// needs a terminal on both ends; otherwise the numbered prompt is used.
func chooserFor(mode string, in io.Reader, out io.Writer) recommend.Chooser {
	if mode == "picker" && isTerminal(in) && isTerminal(out) {
		return picker.NewTUIChooser(in, out)
	}
	return picker.NewLineChooser(in, out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// selectionAborted reports whether err means the user gave no selection.
func selectionAborted(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, picker.ErrCancelled)
}

func validateColorFlag(v string) error {
	switch v {
	case "", render.ColorAuto, render.ColorAlways, render.ColorNever:
		return nil
	default:
		return fmt.Errorf("invalid --color %q (must be auto, always, or never)", v)
	}
}
