package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/camera"
	"github.com/milk9111/statestack/game"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/metrics"
	"github.com/milk9111/statestack/prefabs"
	"github.com/milk9111/statestack/state"
	"github.com/milk9111/statestack/states"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

type options struct {
	debug       bool
	start       string
	prefabsDir  string
	metricsAddr string
	watch       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "statestack",
		Short:        "Run the state stack demo game",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging and the on-screen debug overlay")
	flags.StringVar(&opts.start, "start", "", "state to start in (defaults to the spec's start)")
	flags.StringVar(&opts.prefabsDir, "prefabs", prefabs.DiskDir, "directory checked for spec and script overrides")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	flags.BoolVar(&opts.watch, "watch", true, "reload specs and scripts when they change on disk")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(opts *options) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	prefabs.DiskDir = opts.prefabsDir
	spec, err := prefabs.LoadGameSpec(prefabs.GameSpecFile)
	if err != nil {
		return err
	}
	if opts.start != "" {
		spec.Start = opts.start
	}
	bindings, err := spec.InputBindings()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	lifecycle := metrics.New(reg)
	if opts.metricsAddr != "" {
		serveMetrics(opts.metricsAddr, reg, logger)
	}

	in := input.New(nil, bindings)
	cam := camera.New(spec.Width, spec.Height, 1)
	registry := states.NewRegistry(states.Deps{
		Spec:    spec,
		Input:   in,
		Camera:  cam,
		Logger:  logger,
		Scripts: states.NewScriptCache(0),
	})

	root, err := registry.Build(spec.Start)
	if err != nil {
		return err
	}

	gopts := game.Options{
		Width:      spec.Width,
		Height:     spec.Height,
		MaxDelta:   spec.MaxDelta,
		Background: spec.Background.Color,
		Debug:      opts.debug || spec.Debug,
		Input:      in,
		Camera:     cam,
		Logger:     logger,
		Metrics:    lifecycle,
		Copy:       clipboardCopier(logger),
	}

	if opts.watch {
		w, err := prefabs.WatchDisk()
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		} else {
			defer w.Close()
			gopts.Changes = w.Changes
			gopts.Errors = w.Errors
		}
	}

	var g *game.Game
	gopts.Reload = func(c prefabs.Change) (*state.State, error) {
		return registry.Reload(c, g.Root().Name())
	}
	g = game.New(root, gopts)

	ebiten.SetWindowSize(spec.Width, spec.Height)
	ebiten.SetWindowTitle(spec.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("starting", zap.String("start", spec.Start), zap.Strings("states", registry.Names()))
	return ebiten.RunGame(g)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
}

// clipboardCopier returns nil when no clipboard is available, which leaves
// the dump in the log only.
func clipboardCopier(logger *zap.Logger) func(string) error {
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
		return nil
	}
	return func(text string) error {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return nil
	}
}
