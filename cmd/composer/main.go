// Command composer opens the layer editor in a window, or renders a
// project headlessly to PNG with -snapshot.
//
//	composer -config composer.yaml
//	composer -script demo.json -snapshot out
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/phanxgames/composer"
	"github.com/phanxgames/composer/ebitenhost"
	"github.com/phanxgames/composer/ggsurface"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "composer:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "YAML configuration file")
		snapshotDir = flag.String("snapshot", "", "render headlessly into this directory and exit")
		scriptPath  = flag.String("script", "", "JSON script of editor actions")
		debug       = flag.Bool("debug", false, "debug logging and on-screen overlay")
		metricsOut  = flag.String("metrics-out", "", "write Prometheus metrics to this file on exit")
	)
	flag.Parse()

	cfg, err := composer.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *debug {
		cfg.Debug = true
	}
	if *metricsOut != "" {
		cfg.MetricsOut = *metricsOut
	}

	log, err := composer.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := composer.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.MetricsOut != "" {
		defer func() {
			if err := composer.WriteMetricsFile(cfg.MetricsOut, reg); err != nil {
				log.Warn("write metrics", zap.Error(err))
			}
		}()
	}

	ed := composer.NewEditor(cfg.EditorOptions(log, metrics))
	defer ed.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Assets.Preload) > 0 {
		if err := ed.Assets.Preload(ctx, cfg.Assets.Preload...); err != nil {
			log.Warn("preload incomplete", zap.Error(err))
		}
	}

	var script *composer.ScriptRunner
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if script, err = composer.LoadScript(data); err != nil {
			return err
		}
	}

	if *snapshotDir != "" {
		return runHeadless(ctx, ed, script, *snapshotDir, log)
	}

	fonts, err := ebitenhost.NewFontBook()
	if err != nil {
		return err
	}
	for family, path := range cfg.Fonts {
		if err := fonts.RegisterFile(family, path); err != nil {
			return err
		}
	}

	host := ebitenhost.New(ed, fonts, ebitenhost.Options{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
		NudgeStep: cfg.Nudge.Step,
		Overlay:   cfg.Debug,
		Script:    script,
		Logger:    log,
	})
	return host.Run()
}

// runHeadless steps the editor at 60 ticks per second until the script is
// done, rendering every requested snapshot with gg. Without a script the
// initial state is captured once.
func runHeadless(ctx context.Context, ed *composer.Editor, script *composer.ScriptRunner, dir string, log *zap.Logger) error {
	const dt = float32(1.0 / 60)
	const maxTicks = 60 * 60 * 10

	if script == nil {
		ed.RequestSnapshot("initial")
	} else {
		ed.SetScriptRunner(script)
		for tick := 0; !script.Done(); tick++ {
			if tick >= maxTicks {
				return fmt.Errorf("script still running after %d ticks", maxTicks)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			ed.Update(dt)
			if err := flush(ctx, ed, dir, log); err != nil {
				return err
			}
		}
	}
	ed.Update(dt)
	return flush(ctx, ed, dir, log)
}

func flush(ctx context.Context, ed *composer.Editor, dir string, log *zap.Logger) error {
	labels := ed.TakeSnapshots()
	if len(labels) == 0 {
		return nil
	}
	paths, err := ggsurface.WriteSnapshots(ctx, ed, dir, labels, log)
	for _, p := range paths {
		log.Info("snapshot written", zap.String("path", p))
	}
	return err
}
