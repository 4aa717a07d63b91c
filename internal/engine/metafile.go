package engine

import (
	"encoding/json"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// metafile mirrors the subset of esbuild's metafile JSON the chunk graph needs.
type metafile struct {
	Inputs  map[string]metafileInput  `json:"inputs"`
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileInput struct {
	Imports []metafileImport `json:"imports"`
}

type metafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

type metafileOutput struct {
	Bytes      int              `json:"bytes"`
	Imports    []metafileImport `json:"imports"`
	Exports    []string         `json:"exports"`
	EntryPoint string           `json:"entryPoint,omitempty"`
}

func parseMetafile(raw string) (*metafile, error) {
	var m metafile
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// graphBuilder turns esbuild output files into OutputFiles using the metafile.
type graphBuilder struct {
	rootDir string
	outDir  string
	prefix  string
	meta    *metafile
	// inputs holds the configured entry names. esbuild also sets entryPoint
	// on chunks split off at dynamic imports; those are not entries.
	inputs map[string]bool
}

func newGraphBuilder(cfg *Config, outDir string, meta *metafile) graphBuilder {
	inputs := make(map[string]bool, len(cfg.Input))
	for name := range cfg.Input {
		inputs[name] = true
	}
	return graphBuilder{rootDir: cfg.RootDir, outDir: outDir, prefix: cfg.ChunkPrefix, meta: meta, inputs: inputs}
}

// fileName returns p relative to the output directory, slash separated.
func (g graphBuilder) fileName(abs string) string {
	rel, err := filepath.Rel(g.outDir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// metaKey converts a path relative to the output directory into the metafile key.
func (g graphBuilder) metaKey(fileName string) string {
	rel, err := filepath.Rel(g.rootDir, filepath.Join(g.outDir, filepath.FromSlash(fileName)))
	if err != nil {
		return fileName
	}
	return filepath.ToSlash(rel)
}

func (g graphBuilder) build(absPath string, code []byte) OutputFile {
	name := g.fileName(absPath)
	f := OutputFile{Type: FileAsset, FileName: name, Name: stem(name), Code: code}
	if !isJS(name) {
		return f
	}
	f.Type = FileChunk
	out, ok := g.meta.Outputs[g.metaKey(name)]
	if !ok {
		return f
	}
	if out.EntryPoint != "" {
		f.FacadeModuleID = filepath.Join(g.rootDir, filepath.FromSlash(out.EntryPoint))
	}
	if out.EntryPoint != "" && g.inputs[stem(name)] {
		f.IsEntry = true
	} else if g.prefix != "" {
		f.Name = g.prefix
	}
	for _, imp := range out.Imports {
		spec := imp.Path
		if !imp.External {
			spec = g.fileName(filepath.Join(g.rootDir, filepath.FromSlash(imp.Path)))
		}
		switch imp.Kind {
		case "dynamic-import":
			f.DynamicImports = appendUnique(f.DynamicImports, spec)
		case "import-statement", "require-call":
			f.Imports = appendUnique(f.Imports, spec)
		}
	}
	f.Exports = append([]string(nil), out.Exports...)
	sort.Strings(f.Exports)
	return f
}

// circularDependencies lists the static import cycles among the bundled
// inputs. Each cycle starts and ends with the same module.
func (m *metafile) circularDependencies() [][]string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(m.Inputs))
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		state[id] = active
		stack = append(stack, id)
		for _, imp := range m.Inputs[id].Imports {
			if imp.External || imp.Kind == "dynamic-import" {
				continue
			}
			if _, ok := m.Inputs[imp.Path]; !ok {
				continue
			}
			switch state[imp.Path] {
			case unvisited:
				visit(imp.Path)
			case active:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == imp.Path {
						cycle := append(append([]string(nil), stack[i:]...), imp.Path)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	ids := make([]string, 0, len(m.Inputs))
	for id := range m.Inputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}

func isJS(name string) bool {
	switch path.Ext(name) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
