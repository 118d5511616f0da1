package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/ideaforge/internal/api"
	"github.com/dusk-indust/ideaforge/internal/config"
	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/ideas"
	"github.com/dusk-indust/ideaforge/internal/llm"
	"github.com/dusk-indust/ideaforge/internal/logging"
	"github.com/dusk-indust/ideaforge/internal/orchestrator"
	"github.com/dusk-indust/ideaforge/internal/workspace"
)

// DefaultDBDir is the database directory used by the CLI when neither the
// config nor --db names one.
const DefaultDBDir = ".ideaforge/ideas"

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	Dir      string
	DBPath   string
	Memory   bool
	Server   string
	LogLevel string
	Parallel bool
}

// app holds everything a command needs. Fields set before Execute (repo,
// gen) are used as-is; the rest is built from config in open.
type app struct {
	flags globalFlags

	cfg    config.ProjectConfig
	log    *slog.Logger
	closer io.Closer

	repo     ideas.Repository
	ownsRepo bool
	gen      generate.Generator
	mgr      *workspace.Manager
	orch     *orchestrator.Orchestrator
}

// open resolves config, logging and storage. It is idempotent.
func (a *app) open(cmd *cobra.Command) error {
	if a.mgr != nil {
		return nil
	}

	cfg, err := config.Resolve(a.flags.Dir)
	if err != nil {
		return err
	}
	if a.flags.DBPath != "" {
		cfg.DBPath = a.flags.DBPath
	}
	if a.flags.LogLevel != "" {
		cfg.Log.Level = a.flags.LogLevel
	}
	if a.flags.Parallel {
		cfg.Parallel = true
	}
	if cfg.Log.Output == nil && cfg.Log.File == "" {
		cfg.Log.Output = cmd.ErrOrStderr()
	}
	a.cfg = cfg
	a.log, a.closer = logging.New(cfg.Log)

	if a.repo == nil {
		dbPath := cfg.DBPath
		switch {
		case a.flags.Memory:
			dbPath = ""
		case dbPath == "":
			dbPath = filepath.Join(a.flags.Dir, DefaultDBDir)
		}
		repo, err := ideas.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open idea store: %w", err)
		}
		a.repo, a.ownsRepo = repo, true
		a.log.Debug("idea store opened", "path", dbPath)
	}

	if a.gen == nil {
		a.gen = a.newGenerator()
	}

	a.mgr = workspace.NewManager(a.repo,
		workspace.WithDebounce(cfg.SaveDebounce),
		workspace.WithLogger(a.log),
	)

	opts := []orchestrator.Option{orchestrator.WithLogger(a.log)}
	if cfg.Parallel {
		opts = append(opts, orchestrator.WithScheduler(orchestrator.SchedulerLevels, cfg.Parallelism))
	}
	a.orch = orchestrator.New(a.gen, opts...)
	return nil
}

// newGenerator returns a client of a remote server when --server is set,
// otherwise the Anthropic-backed generator.
func (a *app) newGenerator() generate.Generator {
	if a.flags.Server != "" {
		return api.NewClient(a.flags.Server, api.WithTimeout(a.cfg.RequestTimeout))
	}
	client := llm.NewAnthropicClient(
		llm.WithAPIKey(a.cfg.APIKey),
		llm.WithBaseURL(a.cfg.BaseURL),
		llm.WithModel(a.cfg.Model),
		llm.WithTimeout(a.cfg.RequestTimeout),
	)
	return generate.New(client, generate.WithModel(a.cfg.Model), generate.WithLogger(a.log))
}

// close flushes every open idea and releases storage and the log file.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.mgr != nil {
		errs = append(errs, a.mgr.Close(context.WithoutCancel(ctx)))
		a.mgr = nil
	}
	if a.ownsRepo && a.repo != nil {
		errs = append(errs, a.repo.Close())
		a.repo = nil
	}
	if a.closer != nil {
		errs = append(errs, a.closer.Close())
		a.closer = nil
	}
	return errors.Join(errs...)
}

// store opens the idea named by ref: a full ID, or a unique prefix of one.
func (a *app) store(ctx context.Context, ref string) (*workspace.Store, error) {
	s, err := a.mgr.Get(ctx, ref)
	if err == nil || !errors.Is(err, ideas.ErrNotFound) {
		return s, err
	}
	list, lerr := a.mgr.List(ctx)
	if lerr != nil {
		return nil, lerr
	}
	var match string
	for _, sum := range list {
		if strings.HasPrefix(sum.ID, ref) {
			if match != "" {
				return nil, fmt.Errorf("idea prefix %q is ambiguous", ref)
			}
			match = sum.ID
		}
	}
	if match == "" {
		return nil, err
	}
	return a.mgr.Get(ctx, match)
}
