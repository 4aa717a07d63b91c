package build

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vzt7/unbuild/internal/config"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/modules"
	"github.com/vzt7/unbuild/internal/observability"
	"github.com/vzt7/unbuild/internal/shebang"
)

const jitiOptions = "{ interopDefault: true, esmResolve: true }"

// StubInput is everything a stub depends on.
type StubInput struct {
	// Loader is the runtime loader: a bare specifier or an absolute path.
	Loader string
	// Source is the resolved absolute source path.
	Source  string
	Shebang string
	Exports []string
}

// StubFiles are the bodies of the three stub artifacts of one entry.
type StubFiles struct {
	CJS string
	ESM string
	DTS string
}

// RenderStub renders the stub artifacts. Output is byte-stable for a given input.
func RenderStub(in StubInput) StubFiles {
	source := filepath.ToSlash(in.Source)
	noExt := modules.StripExt(source)

	hasDefault := len(in.Exports) == 0
	for _, n := range in.Exports {
		if n == "default" {
			hasDefault = true
		}
	}

	cjs := fmt.Sprintf(`%smodule.exports = require(%q)(null, %s)(%q)`, in.Shebang, in.Loader, jitiOptions, source)

	esmLines := []string{
		fmt.Sprintf(`%simport jiti from %q;`, in.Shebang, loaderURL(in.Loader)),
		"",
		fmt.Sprintf(`/** @type {import(%q)} */`, noExt),
		fmt.Sprintf(`const _module = jiti(null, %s)(%q);`, jitiOptions, source),
		ifElse(hasDefault, "\nexport default _module;", ""),
	}
	for _, n := range in.Exports {
		if n == "default" {
			continue
		}
		esmLines = append(esmLines, fmt.Sprintf("export const %s = _module.%s;", n, n))
	}

	dts := strings.Join([]string{
		fmt.Sprintf(`export * from %q;`, noExt),
		ifElse(hasDefault, fmt.Sprintf(`export { default } from %q;`, noExt), ""),
	}, "\n")

	return StubFiles{CJS: cjs, ESM: strings.Join(esmLines, "\n"), DTS: dts}
}

// loaderURL turns an absolute loader path into a file URL usable from ESM.
func loaderURL(loader string) string {
	if !filepath.IsAbs(loader) {
		return loader
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(loader)}).String()
}

func ifElse(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// stub writes runtime-loading stubs for every bundle entry instead of compiling.
func (b *Builder) stub(ctx context.Context, bc *Context) error {
	opts := bc.Options
	ctx = observability.WithStage(ctx, "stub")
	for _, e := range opts.BundleEntries() {
		output := filepath.Join(opts.RootDir, opts.OutDir, e.Name)
		resolved := modules.ResolveOr(e.Input, opts.RootDir, config.DefaultExtensions)

		code, err := os.ReadFile(resolved)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to read entry source").
				WithContext(logfields.KeyEntry, e.Name).
				WithContext(logfields.KeyPath, resolved).
				Build()
		}
		directive := shebang.Get(string(code))

		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				WithContext(logfields.KeyPath, filepath.Dir(output)).
				Build()
		}

		names, err := b.analyzer.Exports(ctx, resolved)
		if err != nil {
			bc.WarnContext(ctx, fmt.Sprintf("Cannot analyze %s for exports: %v", resolved, err),
				logfields.Entry(e.Name), logfields.Module(resolved), logfields.Error(err))
			names = nil
		}

		files := RenderStub(StubInput{
			Loader:  opts.StubLoader,
			Source:  resolved,
			Shebang: directive,
			Exports: names,
		})

		var executable []string
		if opts.Bundle.EmitCJS {
			if err := writeStub(output+".cjs", files.CJS); err != nil {
				return err
			}
			executable = append(executable, output+".cjs")
		}
		if opts.Bundle.EmitESM {
			if err := writeStub(output+".mjs", files.ESM); err != nil {
				return err
			}
			executable = append(executable, output+".mjs")
		}
		if err := writeStub(output+".d.ts", files.DTS); err != nil {
			return err
		}
		if directive != "" {
			for _, p := range executable {
				if err := shebang.MakeExecutable(p); err != nil {
					return errors.WrapError(err, errors.CategoryFileSystem, "failed to mark stub executable").
						WithContext(logfields.KeyPath, p).
						Build()
				}
			}
		}
		observability.DebugContext(ctx, "Stub written", logfields.Entry(e.Name), logfields.Path(resolved), logfields.Count(len(names)))
	}
	return bc.Hooks.Call(ctx, Finished{Build: bc})
}

func writeStub(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write stub").
			WithContext(logfields.KeyPath, path).
			Build()
	}
	return nil
}
