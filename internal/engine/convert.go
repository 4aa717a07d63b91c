package engine

import (
	"path"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vzt7/unbuild/internal/foundation/errors"
)

// renamer maps ESM chunk file names to their names in another format.
type renamer struct {
	chunks map[string]bool
	format Format
}

func newRenamer(files []OutputFile, format Format) renamer {
	r := renamer{chunks: make(map[string]bool), format: format}
	for _, f := range files {
		if f.Type == FileChunk {
			r.chunks[f.FileName] = true
		}
	}
	return r
}

func (r renamer) rename(fileName string) string {
	if !r.chunks[fileName] {
		return fileName
	}
	return stem(fileName) + r.format.Extension()
}

func (r renamer) renameAll(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, r.rename(s))
	}
	return out
}

// relImport is the specifier a chunk at from uses to import the chunk at to.
func relImport(from, to string) string {
	dir := path.Dir(from)
	rel := to
	if dir != "." {
		rel = relPath(dir, to)
	}
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

func relPath(dir, target string) string {
	dirParts := strings.Split(dir, "/")
	targetParts := strings.Split(target, "/")
	i := 0
	for i < len(dirParts) && i < len(targetParts)-1 && dirParts[i] == targetParts[i] {
		i++
	}
	var b strings.Builder
	for range dirParts[i:] {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(targetParts[i:], "/"))
	return b.String()
}

// toCommonJS rewrites an ESM chunk as CommonJS and points its internal
// imports at the renamed chunks.
func toCommonJS(f OutputFile, r renamer, onWarn func(Advisory)) (OutputFile, error) {
	out := f
	out.FileName = r.rename(f.FileName)
	out.Imports = r.renameAll(f.Imports)
	out.DynamicImports = r.renameAll(f.DynamicImports)

	res := api.Transform(string(f.Code), api.TransformOptions{
		Format:     api.FormatCommonJS,
		Loader:     api.LoaderJS,
		Platform:   api.PlatformNode,
		Target:     api.ESNext,
		Sourcefile: f.FileName,
		Supported:  map[string]bool{"dynamic-import": true},
		LogLevel:   api.LogLevelSilent,
	})
	forwardWarnings(res.Warnings, onWarn)
	if len(res.Errors) > 0 {
		return out, errors.BuildError("failed to render CommonJS chunk").
			WithContext("file", f.FileName).
			WithContext("details", formatMessages(res.Errors)).
			Build()
	}

	code := string(res.Code)
	for _, imports := range [][]string{f.Imports, f.DynamicImports} {
		for _, imp := range imports {
			if !r.chunks[imp] {
				continue
			}
			oldSpec := relImport(f.FileName, imp)
			newSpec := relImport(out.FileName, r.rename(imp))
			code = strings.ReplaceAll(code, strconv.Quote(oldSpec), strconv.Quote(newSpec))
		}
	}
	out.Code = []byte(code)
	return out, nil
}
