package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/metrics"
	"github.com/vzt7/unbuild/internal/modules"
	"github.com/vzt7/unbuild/internal/observability"
	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

// GeneratorFactory creates the declaration generator for a project root.
type GeneratorFactory func(rootDir string, command []string) stages.DeclarationGenerator

// Builder runs builds. The zero value is not usable; use NewBuilder.
type Builder struct {
	compiler  engine.Compiler
	analyzer  modules.ExportAnalyzer
	generator GeneratorFactory
	recorder  metrics.Recorder
}

// NewBuilder creates a Builder with esbuild export analysis, tsc
// declarations and no metrics.
func NewBuilder(compiler engine.Compiler) *Builder {
	return &Builder{
		compiler: compiler,
		analyzer: modules.NewEsbuildAnalyzer(config.DefaultExtensions),
		generator: func(rootDir string, command []string) stages.DeclarationGenerator {
			return stages.NewTscGenerator(command, rootDir)
		},
		recorder: metrics.NoopRecorder{},
	}
}

// WithAnalyzer replaces the export analyzer used by stub mode.
func (b *Builder) WithAnalyzer(a modules.ExportAnalyzer) *Builder {
	b.analyzer = a
	return b
}

// WithGenerator replaces the declaration generator factory.
func (b *Builder) WithGenerator(f GeneratorFactory) *Builder {
	b.generator = f
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	b.recorder = r
	return b
}

// Status is the outcome of a build.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusWarning   Status = "warning"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the build produced its outputs.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}

// Result describes a finished build.
type Result struct {
	Status   Status
	Context  *Context
	Warnings []string
	Duration time.Duration
}

// Execute runs the build described by bc, in stub or full mode.
func (b *Builder) Execute(ctx context.Context, bc *Context) error {
	ctx = observability.WithBuildID(ctx, bc.ID)
	if bc.Options.Stub {
		return b.stub(ctx, bc)
	}
	return b.bundle(ctx, bc)
}

// Run executes a complete build: clean, Execute, dependency validation,
// summary and the fail-on-warn check.
func (b *Builder) Run(ctx context.Context, opts *config.Options, hooks *Hooks) (*Result, error) {
	start := time.Now()
	bc := NewContext(opts, hooks)
	ctx = observability.WithBuildID(ctx, bc.ID)
	result := &Result{Context: bc}

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.Warnings = bc.Warnings()
		result.Duration = time.Since(start)
		b.recorder.SetWarnings(len(result.Warnings))
		b.recorder.ObserveBuildDuration(result.Duration)
		b.recorder.IncBuildOutcome(outcomeLabel(status))
		return result, err
	}

	mode := "bundle"
	if opts.Stub {
		mode = "stub"
	}
	observability.InfoContext(ctx, "Building", logfields.Path(opts.RootDir),
		logfields.Count(len(opts.BundleEntries())), logfields.Stage(mode))

	if opts.Clean && !opts.Stub {
		if err := cleanDir(opts.RootDir, opts.OutDir); err != nil {
			return finish(StatusFailed, err)
		}
	}

	if err := b.Execute(ctx, bc); err != nil {
		if ctx.Err() != nil {
			return finish(StatusCancelled, err)
		}
		return finish(StatusFailed, err)
	}

	if !opts.Stub {
		validateDependencies(bc)
		logSummary(ctx, bc)
	}

	status := StatusSuccess
	if len(bc.Warnings()) > 0 {
		status = StatusWarning
		if opts.FailOnWarn {
			return finish(StatusFailed, errors.ValidationError("exiting with code 1: warnings were reported and failOnWarn is set").
				WithContext(logfields.KeyCount, len(bc.Warnings())).
				Build())
		}
	}
	observability.InfoContext(ctx, "Build finished", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return finish(status, nil)
}

func outcomeLabel(s Status) metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusWarning:
		return metrics.BuildOutcomeWarning
	case StatusCancelled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

// cleanDir empties outDir, refusing to touch the project root or anything outside it.
func cleanDir(rootDir, outDir string) error {
	dir := filepath.Join(rootDir, outDir)
	rel, err := filepath.Rel(rootDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.ConfigError(fmt.Sprintf("refusing to clean %s: not inside the project root", dir)).Build()
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
			WithContext(logfields.KeyPath, dir).
			Build()
	}
	return nil
}
