package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/diag"
	"github.com/reloquent/entitycheck/internal/discovery"
	"github.com/reloquent/entitycheck/internal/entity"
	"github.com/reloquent/entitycheck/internal/logging"
	"github.com/reloquent/entitycheck/internal/report"
	"github.com/reloquent/entitycheck/internal/schema"
	"github.com/reloquent/entitycheck/internal/typemap"
	"github.com/reloquent/entitycheck/internal/verify"
)

// Engine runs the verification pipeline for one configuration. It is shared by
// the verify, review and watch entry points.
type Engine struct {
	Config *config.Config
	Logger *slog.Logger

	newDiscoverer func(*config.Config) (discovery.Discoverer, error)
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Schema     *schema.Schema
	Model      *entity.Model
	Result     verify.Result
	Counts     verify.Counts
	ReportPath string
	Format     report.Format
}

// New creates a new Engine with the given config and logger.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		Config:        cfg,
		Logger:        logger,
		newDiscoverer: discovery.New,
	}
}

// Run loads the schema and scans the entity directory concurrently, reconciles
// them, and writes the report. Missing or malformed inputs are recorded as
// diagnostics; only an invalid type map or a failed report write is an error.
func (e *Engine) Run(ctx context.Context) (*Outcome, error) {
	cfg := e.Config
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, err
	}

	var (
		s          *schema.Schema
		m          *entity.Model
		schemaDiag diag.Diagnostics
		scanDiag   diag.Diagnostics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, schemaDiag = e.LoadSchema(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		e.Logger.Info("Scanning entities", "dir", cfg.Entities.Dir)
		m, scanDiag = entity.Scan(cfg.Entities.Dir, entity.Options{
			Extension: cfg.Entities.Extension,
			Recursive: cfg.Entities.Recursive,
		})
		e.Logger.Info(fmt.Sprintf("Found %d entity classes.", m.Len()), "files", m.Files)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts := verify.Options{CheckTypes: cfg.Checks.Types}
	if cfg.Checks.Types {
		opts.TypeMap, err = e.typeMap(s.Source)
		if err != nil {
			return nil, err
		}
	}

	e.Logger.Info("Verifying...")
	res := verify.Reconcile(s, m, opts)

	var all diag.Diagnostics
	all.Merge(schemaDiag)
	all.Merge(scanDiag)
	all.Merge(res.Diagnostics)
	res.Diagnostics = all
	e.logDiagnostics(all)

	if err := report.Write(cfg.Report.Path, format, res); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	counts := verify.Count(res.Groups)
	e.Logger.Info("Report generated at "+cfg.Report.Path,
		"tables", counts.Tables, "errors", counts.Errors, "warnings", counts.Warnings, "infos", counts.Infos)

	return &Outcome{
		Schema:     s,
		Model:      m,
		Result:     res,
		Counts:     counts,
		ReportPath: cfg.Report.Path,
		Format:     format,
	}, nil
}

// LoadSchema reads the schema from the configured source. Any failure yields
// an empty schema and a diagnostic so the run can still produce a report.
func (e *Engine) LoadSchema(ctx context.Context) (*schema.Schema, diag.Diagnostics) {
	cfg := e.Config
	if cfg.IsLive() {
		return e.discover(ctx)
	}

	e.Logger.Info("Loading schema from " + cfg.Schema.Path)
	s, diags, err := schema.Load(cfg.Schema.Path)
	if err != nil {
		code := diag.CodeSchemaParse
		if errors.Is(err, fs.ErrNotExist) {
			code = diag.CodeSchemaNotFound
		}
		diags.AddError(code, cfg.Schema.Path, err.Error())
		return schema.New(cfg.Schema.Source), diags
	}
	e.Logger.Info(fmt.Sprintf("Found %d tables in schema.", s.Len()))
	return s, diags
}

func (e *Engine) discover(ctx context.Context) (*schema.Schema, diag.Diagnostics) {
	cfg := e.Config
	var diags diag.Diagnostics
	source := cfg.Schema.Source + "://" + cfg.Live.Host + "/" + cfg.Live.Database

	fail := func(err error) (*schema.Schema, diag.Diagnostics) {
		diags.AddError(diag.CodeSchemaDiscovery, source, err.Error())
		return schema.New(cfg.Schema.Source), diags
	}

	e.Logger.Info("Discovering schema from " + source)
	d, err := e.newDiscoverer(cfg)
	if err != nil {
		return fail(err)
	}
	defer d.Close()

	if err := d.Connect(ctx); err != nil {
		return fail(err)
	}
	s, err := d.Discover(ctx)
	if err != nil {
		return fail(err)
	}
	e.Logger.Info(fmt.Sprintf("Found %d tables in schema.", s.Len()))
	return s, diags
}

func (e *Engine) typeMap(source string) (*typemap.TypeMap, error) {
	path := e.Config.Checks.TypeMap
	if path == "" {
		return typemap.ForDatabase(source), nil
	}
	tm, err := typemap.LoadOverrides(path, source)
	if err != nil {
		return nil, fmt.Errorf("loading type map: %w", err)
	}
	e.Logger.Debug("Loaded type map overrides", "path", path, "overrides", len(tm.Overrides))
	return tm, nil
}

func (e *Engine) logDiagnostics(diags diag.Diagnostics) {
	for _, d := range diags.Items {
		level := slog.LevelInfo
		switch d.Severity {
		case diag.Error:
			level = slog.LevelError
		case diag.Warning:
			level = slog.LevelWarn
		}
		e.Logger.Log(context.Background(), level, d.Message, "code", d.Code, "source", d.Source)
	}
}
