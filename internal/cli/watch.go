package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/inkloom/inkloom/internal/configloader"
	"github.com/inkloom/inkloom/internal/logging"
	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/lint"
	_ "github.com/inkloom/inkloom/pkg/lint/rules" // Register built-in rules
	goldmarkparser "github.com/inkloom/inkloom/pkg/parser/goldmark"
	"github.com/inkloom/inkloom/pkg/reporter"
	"github.com/inkloom/inkloom/pkg/runner"
	"github.com/inkloom/inkloom/pkg/watchkind"
)

func newWatchCommand() *cobra.Command {
	var cfg config.Config
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Watch Markdown files and re-lint on change",
		Long: `Lint Markdown files, then keep running and re-lint whenever a watched
file changes.

Configuration files (.inkloom.yml, pyproject.toml, markdownlint.*) are
watched too; a change to one of those reloads configuration before the
next run. Press Ctrl-C to exit.

Examples:
  inkloom watch                  # Watch current directory
  inkloom watch docs/            # Watch docs directory
  inkloom watch --fix            # Re-lint and auto-fix on every change`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, &cfg, flags)
		},
	}

	addLintFlags(cmd, &cfg, flags)

	return cmd
}

// watchSession holds everything that must be rebuilt when configuration is
// reloaded (the lint stack is parameterized by *config.Config, so a fresh
// load needs a fresh engine/pipeline/runner, same as the one-shot lint
// command builds once per invocation).
type watchSession struct {
	workDir       string
	explicitPath  string
	cliCfg        *config.Config
	flags         *lintFlags
	parserFactory *goldmarkparser.Factory

	cfg    *config.Config
	runner *runner.Runner
}

func newWatchSession(workDir, explicitPath string, cliCfg *config.Config, flags *lintFlags) *watchSession {
	return &watchSession{
		workDir:       workDir,
		explicitPath:  explicitPath,
		cliCfg:        cliCfg,
		flags:         flags,
		parserFactory: goldmarkparser.NewFactory(),
	}
}

func (s *watchSession) load(ctx context.Context, logger *log.Logger) error {
	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   s.workDir,
		ExplicitPath: s.explicitPath,
		CLIConfig:    s.cliCfg,
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	s.cfg = loadResult.Config

	parser := goldmarkparser.New(string(s.cfg.Flavor))
	registry := lint.DefaultRegistry
	engine := lint.NewEngine(parser, registry)
	engine.ParserFactory = s.parserFactory

	pipeline := lint.NewPipeline(engine)
	s.runner = runner.New(pipeline)

	return nil
}

// runOnce runs one lint pass over paths and reports the results, returning
// the overall result for the caller to decide what to log next.
func (s *watchSession) runOnce(ctx context.Context, cmd *cobra.Command, paths []string) (*runner.Result, error) {
	runOpts := runner.Options{
		Paths:        paths,
		WorkingDir:   s.workDir,
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: s.cfg.Ignore,
		Jobs:         s.cfg.Jobs,
		Config:       s.cfg,
	}

	result, err := s.runner.Run(ctx, runOpts)
	if err != nil {
		return nil, errors.Join(errors.New("lint run failed"), err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := reporter.ParseFormat(s.flags.format)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:       cmd.OutOrStdout(),
		ErrorWriter:  cmd.ErrOrStderr(),
		Format:       format,
		Color:        colorMode,
		ShowContext:  !s.flags.noContext,
		ShowSummary:  true,
		GroupByFile:  true,
		Compact:      s.flags.compact,
		PerFile:      s.flags.perFile,
		RuleFormat:   config.RuleFormat(s.flags.ruleFormat),
		SummaryOrder: config.SummaryOrder(s.flags.summaryOrder),
		WorkingDir:   s.workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return nil, fmt.Errorf("report results: %w", err)
	}

	return result, nil
}

func runWatch(cmd *cobra.Command, args []string, cfg *config.Config, flags *lintFlags) error {
	logger := logging.Default()

	cfg.Format = config.OutputFormat(flags.format)
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(flags.flavor)
	}
	cfg.Ignore = flags.ignore
	cfg.EnableRules = flags.enable
	cfg.DisableRules = flags.disable
	cfg.FixRules = flags.fixRules

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	session := newWatchSession(workDir, configPath, cfg, flags)
	if err := session.load(ctx, logger); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTargets(watcher, workDir, paths, logger); err != nil {
		return err
	}

	logger.Info("starting watch mode", "paths", paths)
	if _, err := session.runOnce(ctx, cmd, paths); err != nil {
		logger.Error("lint run failed", logging.FieldError, err)
	}
	logger.Info("watching for file changes")

	debouncer := watchkind.NewDebouncer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			kind := watchkind.Classify(event)
			if kind == watchkind.KindNone {
				continue
			}
			debouncer.Add(kind, func(fired watchkind.Kind) {
				if fired == watchkind.KindConfiguration {
					logger.Info("configuration change detected, reloading")
					if err := session.load(ctx, logger); err != nil {
						logger.Error("failed to reload configuration", logging.FieldError, err)
						return
					}
				} else {
					logger.Info("file change detected")
				}
				if _, err := session.runOnce(ctx, cmd, paths); err != nil {
					logger.Error("lint run failed", logging.FieldError, err)
					return
				}
				logger.Info("watching for file changes")
			})
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", logging.FieldError, werr)
		}
	}
}

// addWatchTargets registers every directory under paths (recursively) with
// watcher (or a file's parent directory), plus workDir itself, so edits to
// configuration files in workDir and markdown edits both surface as events.
// A configuration file found in a parent of workDir is not watched. fsnotify
// has no recursive mode of its own, unlike the notify crate's
// RecursiveMode::Recursive, so each directory must be added individually.
func addWatchTargets(watcher *fsnotify.Watcher, workDir string, paths []string, logger *log.Logger) error {
	added := make(map[string]bool)

	addDir := func(dir string) {
		if added[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("failed to watch directory", logging.FieldPath, dir, logging.FieldError, err)
			return
		}
		added[dir] = true
	}

	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			addDir(filepath.Dir(abs))
			continue
		}
		if walkErr := filepath.WalkDir(abs, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				if os.IsPermission(err) {
					return nil
				}
				return err
			}
			if entry.IsDir() {
				addDir(path)
			}
			return nil
		}); walkErr != nil {
			return fmt.Errorf("walk %s: %w", p, walkErr)
		}
	}

	addDir(workDir)

	return nil
}
