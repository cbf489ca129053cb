package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/config"
	"github.com/c360studio/tagsonomy/derive"
	"github.com/c360studio/tagsonomy/export"
	"github.com/c360studio/tagsonomy/graph"
	"github.com/c360studio/tagsonomy/metric"
	"github.com/c360studio/tagsonomy/publish"
	"github.com/c360studio/tagsonomy/reconcile"
	"github.com/c360studio/tagsonomy/watch"
)

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	app := &app{}

	cmd := &cobra.Command{
		Use:   "tagsonomy",
		Short: "Ontology-driven catalog tag synchronization",
		Long: `Tagsonomy maintains a small ontology of classes and semantic assignments
and projects it onto a metadata catalog as key/value tags.

The update command derives each securable's tag set by walking the class
hierarchy of its semantic assignments, then reconciles those tags against
the catalog with the minimal add/remove delta. Only tags carrying the
configured key prefix are ever touched; tags created by other tools or
users are left alone.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.logger = newLogger(logLevel)
			slog.SetDefault(app.logger)

			loader := config.NewLoader(app.logger)
			cfg, err := loader.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(app.updateCmd())
	cmd.AddCommand(app.clearCmd())
	cmd.AddCommand(app.mappingsCmd())
	cmd.AddCommand(app.exportCmd())
	cmd.AddCommand(app.watchCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// syncFlags are per-command overrides for config values. Config is loaded
// after flag parsing, so overrides are applied only for flags the user set.
type syncFlags struct {
	workspace   string
	tokenFile   string
	prefix      string
	natsURL     string
	maxTags     int
	concurrency int
}

func addSyncFlags(cmd *cobra.Command, f *syncFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.workspace, "workspace", "", "Workspace URL")
	flags.StringVar(&f.tokenFile, "token-file", "", "File containing the API token")
	flags.StringVar(&f.prefix, "prefix", reconcile.DefaultPrefix, "Tag key prefix marking tags this tool owns")
	flags.IntVar(&f.maxTags, "max-tags", reconcile.DefaultMaxTags, "Per-securable tag-count ceiling")
	flags.IntVar(&f.concurrency, "concurrency", 1, "Securables reconciled in parallel")
	flags.StringVar(&f.natsURL, "nats-url", "", "NATS URL for run events (empty = disabled)")
}

func (a *app) applySyncFlags(cmd *cobra.Command, f *syncFlags) {
	flags := cmd.Flags()
	if flags.Changed("workspace") {
		a.cfg.Workspace.URL = f.workspace
	}
	if flags.Changed("token-file") {
		a.cfg.Workspace.TokenFile = f.tokenFile
	}
	if flags.Changed("prefix") {
		a.cfg.Tags.Prefix = f.prefix
	}
	if flags.Changed("max-tags") {
		a.cfg.Tags.MaxTags = f.maxTags
	}
	if flags.Changed("concurrency") {
		a.cfg.Sync.Concurrency = f.concurrency
	}
	if flags.Changed("nats-url") {
		a.cfg.NATS.URL = f.natsURL
	}
}

func (a *app) updateCmd() *cobra.Command {
	var f syncFlags
	cmd := &cobra.Command{
		Use:   "update [graph files or globs...]",
		Short: "Derive tags from the ontology and apply them to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applySyncFlags(cmd, &f)
			ctx, cancel := signalContext()
			defer cancel()
			return a.runSync(ctx, "update", args, nil)
		},
	}
	addSyncFlags(cmd, &f)
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var f syncFlags
	cmd := &cobra.Command{
		Use:   "clear [graph files or globs...]",
		Short: "Remove all owned tags from securables with semantic assignments",
		Long: `Clear removes every tag carrying the configured prefix from each securable
that currently has a semantic assignment in the ontology. A securable whose
assignments were already deleted from the ontology is not visited; clear its
tags before removing the last assignment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applySyncFlags(cmd, &f)
			ctx, cancel := signalContext()
			defer cancel()
			return a.runSync(ctx, "clear", args, nil)
		},
	}
	addSyncFlags(cmd, &f)
	return cmd
}

func (a *app) mappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings [graph files or globs...]",
		Short: "Print the derived securable-to-tags mapping as JSON without applying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(args)
			if err != nil {
				return err
			}

			derived := derive.NewDeriver(a.logger).Derive(g)
			out := make([]mappingEntry, 0, len(derived))
			for _, d := range derived {
				out = append(out, mappingEntry{
					Name: d.Securable.Name,
					Type: strings.ToLower(string(d.Securable.Type)),
					Tags: d.Labels,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [graph files or globs...]",
		Short: "Serialize the loaded ontology graph as RDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			g, err := a.loadGraph(args)
			if err != nil {
				return err
			}

			out, err := export.Export(g, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "turtle", "Output format (turtle, ntriples, jsonld)")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var (
		f           syncFlags
		debounce    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch [graph files or globs...]",
		Short: "Re-run update whenever the ontology documents change",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applySyncFlags(cmd, &f)
			ctx, cancel := signalContext()
			defer cancel()

			patterns, err := a.graphPatterns(args)
			if err != nil {
				return err
			}

			var metrics *metric.Metrics
			addr := metricsAddr
			if addr == "" {
				addr = a.cfg.Metrics.Addr
			}
			if addr != "" {
				metrics = metric.New()
				go serveMetrics(addr, metrics, a.logger)
			}

			watcher, err := watch.New(patterns, debounce, a.logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			// Initial pass before waiting for changes.
			if err := a.runSync(ctx, "update", args, metrics); err != nil {
				a.logger.Error("Initial sync failed", "error", err)
			}

			err = watcher.Run(ctx, func(ctx context.Context) error {
				return a.runSync(ctx, "update", args, metrics)
			})
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	addSyncFlags(cmd, &f)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay before re-running after a change")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus /metrics (empty = disabled)")
	return cmd
}

// graphPatterns resolves the ontology document patterns: positional args win,
// then the config's graph.paths.
func (a *app) graphPatterns(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Graph.Paths) > 0 {
		return a.cfg.Graph.Paths, nil
	}
	return nil, fmt.Errorf("no ontology documents given: pass graph files or set graph.paths in config")
}

func (a *app) loadGraph(args []string) (*graph.Graph, error) {
	patterns, err := a.graphPatterns(args)
	if err != nil {
		return nil, err
	}
	g, err := graph.Load(patterns...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Loaded ontology graph", "triples", g.Len())
	return g, nil
}

func (a *app) newReconciler(metrics *metric.Metrics) (*reconcile.Reconciler, error) {
	token, err := a.cfg.ResolveToken()
	if err != nil {
		return nil, err
	}

	client, err := catalog.NewClient(&catalog.ClientConfig{
		WorkspaceURL: a.cfg.Workspace.URL,
		Token:        token,
		Timeout:      a.cfg.Sync.Timeout,
		RateLimit:    a.cfg.Sync.RateLimit,
		RateBurst:    a.cfg.Sync.RateBurst,
	})
	if err != nil {
		return nil, err
	}

	return reconcile.NewReconciler(client,
		reconcile.WithPrefix(a.cfg.Tags.Prefix),
		reconcile.WithMaxTags(a.cfg.Tags.MaxTags),
		reconcile.WithLogger(a.logger),
		reconcile.WithMetrics(metrics),
	), nil
}

// runSync executes one batch pass: derive, reconcile every securable with
// assignments, report. For clear the derived labels are discarded and the
// desired set is empty.
func (a *app) runSync(ctx context.Context, command string, args []string, metrics *metric.Metrics) error {
	g, err := a.loadGraph(args)
	if err != nil {
		return err
	}

	derived := derive.NewDeriver(a.logger).Derive(g)
	if len(derived) == 0 {
		a.logger.Info("No securables with semantic assignments found")
		return nil
	}

	items := make([]reconcile.Item, len(derived))
	for i, d := range derived {
		items[i] = reconcile.Item{Securable: d.Securable}
		if command == "update" {
			items[i].Labels = d.Labels
		}
	}

	rec, err := a.newReconciler(metrics)
	if err != nil {
		return err
	}

	report := rec.Run(ctx, items, a.cfg.Sync.Concurrency)
	a.printReport(report)

	if a.cfg.NATS.URL != "" {
		pub, err := publish.Connect(a.cfg.NATS.URL)
		if err != nil {
			a.logger.Warn("Run events not published", "error", err)
		} else {
			defer pub.Close()
			if err := pub.PublishReport(ctx, command, report); err != nil {
				a.logger.Warn("Run events not published", "error", err)
			}
		}
	}

	if report.Failed() {
		failed := 0
		for _, o := range report.Outcomes {
			if o.Failed() {
				failed++
			}
		}
		return fmt.Errorf("%d of %d securables failed", failed, len(report.Outcomes))
	}
	return nil
}

func (a *app) printReport(report *reconcile.Report) {
	for _, o := range report.Outcomes {
		switch o.Status {
		case reconcile.StatusApplied:
			fmt.Printf("%-16s %s (+%d -%d)\n", o.Status, o.Securable, len(o.Added), len(o.Removed))
		case reconcile.StatusUnchanged:
			fmt.Printf("%-16s %s\n", o.Status, o.Securable)
		default:
			fmt.Printf("%-16s %s: %v\n", o.Status, o.Securable, o.Err)
		}
	}

	counts := report.Counts()
	a.logger.Info("Run complete",
		"run_id", report.RunID,
		"securables", len(report.Outcomes),
		"applied", counts[reconcile.StatusApplied],
		"unchanged", counts[reconcile.StatusUnchanged],
		"budget_exceeded", counts[reconcile.StatusBudgetExceeded],
		"failed", counts[reconcile.StatusFailed],
		"duration", report.Duration.String())
}

// mappingEntry matches the sync job's mapping payload shape.
type mappingEntry struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Tags []string `json:"tags"`
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func serveMetrics(addr string, metrics *metric.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics listener stopped", "error", err)
	}
}
