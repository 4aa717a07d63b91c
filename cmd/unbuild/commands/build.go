package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/vzt7/unbuild/internal/build"
	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/metrics"
	"github.com/vzt7/unbuild/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Root        string `arg:"" optional:"" default:"." help:"Project root directory"`
	Stub        bool   `help:"Write stub files that load sources at runtime instead of bundling"`
	Watch       bool   `short:"w" help:"Rebuild when sources change"`
	FailOnWarn  bool   `name:"fail-on-warn" help:"Exit with an error when the build reports warnings"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, err := config.Load(b.Root, root.Config)
	if err != nil {
		return err
	}
	opts.Stub = opts.Stub || b.Stub
	opts.FailOnWarn = opts.FailOnWarn || b.FailOnWarn

	return RunBuild(ctx, opts, b.Watch, b.MetricsFile)
}

// RunBuild builds opts once, or keeps rebuilding on changes when watching.
func RunBuild(ctx context.Context, opts *config.Options, watching bool, metricsFile string) error {
	builder := build.NewBuilder(engine.NewEsbuild())
	var reg *prom.Registry
	if metricsFile != "" {
		reg = prom.NewRegistry()
		builder.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}

	once := func(ctx context.Context) error {
		res, err := builder.Run(ctx, opts, build.NewHooks())
		if reg != nil {
			if werr := metrics.WriteTextfile(metricsFile, reg); werr != nil {
				slog.Warn("Failed to write metrics file", logfields.Path(metricsFile), logfields.Error(werr))
			}
		}
		if err != nil {
			return err
		}
		slog.Debug("Build result", slog.String("status", string(res.Status)), logfields.Count(len(res.Warnings)))
		return nil
	}

	if !watching {
		return once(ctx)
	}
	if opts.Stub {
		slog.Warn("Watch mode has no effect on stub builds; stubs load sources at runtime")
		return once(ctx)
	}
	return watch.New(opts.RootDir, opts.OutDir, once).Run(ctx)
}
