package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundationerrors "github.com/vzt7/unbuild/internal/foundation/errors"
)

// DefaultConfigFile is looked up in the root directory when no file is given.
const DefaultConfigFile = "build.config.yaml"

// UnmarshalYAML accepts either a mapping or a bare input path for an entry.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*e = EntryFromInput(value.Value)
		return nil
	}
	type plain Entry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	if e.Name == "" && e.Input != "" {
		e.Name = EntryFromInput(e.Input).Name
	}
	return nil
}

// Load resolves the options for a build rooted at rootDir. configFile may be
// empty (build.config.yaml is used when present) or relative to rootDir.
func Load(rootDir, configFile string) (*Options, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "resolve root directory").Build()
	}

	loadEnvFiles(absRoot)

	opts := Defaults()
	path, explicit := configPath(absRoot, configFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), opts); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal config").
				WithContext("file", path).
				Build()
		}
	case os.IsNotExist(err) && !explicit:
		slog.Debug("No build config file, using defaults", "path", path)
	default:
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			WithContext("file", path).
			Build()
	}

	pkg, err := LoadPackage(absRoot)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to load package metadata").Build()
	}

	if opts.RootDir == "" {
		opts.RootDir = absRoot
	} else if !filepath.IsAbs(opts.RootDir) {
		opts.RootDir = filepath.Join(absRoot, opts.RootDir)
	}
	Normalize(opts, pkg)
	if err := Validate(opts); err != nil {
		return nil, err
	}
	slog.Debug("Loaded build options", slog.String("options", opts.Describe()))
	return opts, nil
}

func configPath(rootDir, configFile string) (string, bool) {
	if configFile == "" {
		return filepath.Join(rootDir, DefaultConfigFile), false
	}
	if filepath.IsAbs(configFile) {
		return configFile, true
	}
	return filepath.Join(rootDir, configFile), true
}

// loadEnvFiles loads .env and .env.local from the root; existing process
// variables are never overridden.
func loadEnvFiles(rootDir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(rootDir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", p)
	}
}

// Normalize fills derived fields from package metadata: the package name,
// dependency lists, default externals and an inferred src/index entry.
func Normalize(opts *Options, pkg *Package) {
	if pkg == nil {
		pkg = &Package{}
	}
	if opts.Name == "" {
		opts.Name = pkg.Name
	}
	if len(opts.Dependencies) == 0 {
		opts.Dependencies = sortedKeys(pkg.Dependencies)
	}
	if len(opts.PeerDependencies) == 0 {
		opts.PeerDependencies = sortedKeys(pkg.PeerDependencies)
	}

	externals := BuiltinModules()
	externals = append(externals, opts.Dependencies...)
	externals = append(externals, opts.PeerDependencies...)
	externals = append(externals, opts.Externals...)
	opts.Externals = dedupe(externals)

	if len(opts.Entries) == 0 {
		if input := inferIndexEntry(opts.RootDir); input != "" {
			opts.Entries = []Entry{{Name: "index", Input: input}}
		}
	}
}

func inferIndexEntry(rootDir string) string {
	for _, ext := range DefaultExtensions {
		rel := filepath.Join("src", "index"+ext)
		if st, err := os.Stat(filepath.Join(rootDir, rel)); err == nil && !st.IsDir() {
			return filepath.ToSlash(filepath.Join("src", "index"))
		}
	}
	return ""
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Describe renders a one-line summary used in debug logs.
func (o *Options) Describe() string {
	return fmt.Sprintf("name=%q root=%s out=%s entries=%d stub=%t declaration=%t cjs=%t esm=%t",
		o.Name, o.RootDir, o.OutDir, len(o.Entries), o.Stub, o.Declaration, o.Bundle.EmitCJS, o.Bundle.EmitESM)
}
