package build

import (
	"context"
	"path/filepath"

	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/metrics"
	"github.com/vzt7/unbuild/internal/observability"
	"github.com/vzt7/unbuild/internal/pipeline"
	"github.com/vzt7/unbuild/internal/pipeline/stages"
)

// bundle compiles every bundle entry once and writes each enabled format.
func (b *Builder) bundle(ctx context.Context, bc *Context) error {
	opts := bc.Options
	p := pipeline.Compose(opts, bc.Warn)
	cfg := p.Config(opts, bc.Warn)

	if err := bc.Hooks.Call(ctx, OptionsPrepared{Build: bc, Config: cfg}); err != nil {
		return err
	}

	if len(cfg.Input) > 0 {
		bundle, err := b.compile(observability.WithStage(ctx, "compile"), cfg)
		if err != nil {
			return err
		}
		if err := bc.Hooks.Call(ctx, Compiled{Build: bc, Bundle: bundle}); err != nil {
			return err
		}

		for _, o := range cfg.Outputs {
			out, err := b.write(ctx, bundle, o)
			if err != nil {
				return err
			}
			bc.RecordOutput(out)
		}

		if opts.Declaration {
			if err := b.declarations(ctx, bc, p, cfg); err != nil {
				return err
			}
		}
	}

	return bc.Hooks.Call(ctx, Finished{Build: bc})
}

func (b *Builder) compile(ctx context.Context, cfg *engine.Config) (engine.Bundle, error) {
	var bundle engine.Bundle
	err := metrics.Timed(b.recorder, observability.FromContext(ctx).Stage, func() error {
		var err error
		bundle, err = b.compiler.Compile(ctx, cfg)
		return err
	})
	return bundle, err
}

func (b *Builder) write(ctx context.Context, bundle engine.Bundle, o engine.OutputOptions) (*engine.Output, error) {
	stage := "write:" + string(o.Format)
	ctx = observability.WithStage(ctx, stage)
	var out *engine.Output
	err := metrics.Timed(b.recorder, stage, func() error {
		var err error
		out, err = bundle.Write(ctx, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	size := 0
	for _, c := range out.Chunks() {
		size += len(c.Code)
	}
	b.recorder.ObserveOutputBytes(string(o.Format), size)
	observability.DebugContext(ctx, "Output written",
		logfields.Format(string(o.Format)), logfields.Path(o.Dir), logfields.Count(len(out.Files)), logfields.Bytes(size))
	return out, nil
}

// declarations reruns the composed pipeline with shebangs stripped and the
// dts stage appended, writing declaration files once next to the outputs.
func (b *Builder) declarations(ctx context.Context, bc *Context, p *pipeline.Pipeline, cfg *engine.Config) error {
	ctx = observability.WithStage(ctx, "declarations")
	opts := bc.Options

	dcfg := cfg.Clone()
	p.Shebang.SetPreserve(false)
	dcfg.Stages = append(dcfg.Stages, stages.NewDTS(b.generator(opts.RootDir, opts.Bundle.DTS.Command)))

	if err := bc.Hooks.Call(ctx, DeclarationsOptionsPrepared{Build: bc, Config: dcfg}); err != nil {
		return err
	}
	bundle, err := b.compile(ctx, dcfg)
	if err != nil {
		return err
	}
	if err := bc.Hooks.Call(ctx, DeclarationsCompiled{Build: bc, Bundle: bundle}); err != nil {
		return err
	}
	_, err = b.write(ctx, bundle, engine.OutputOptions{
		Dir:    filepath.Join(opts.RootDir, opts.OutDir),
		Format: engine.FormatESM,
	})
	return err
}
