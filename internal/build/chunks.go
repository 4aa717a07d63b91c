package build

import (
	"github.com/vzt7/unbuild/internal/engine"
	"github.com/vzt7/unbuild/internal/util/sets"
)

// RecordOutput folds one output pass into the build entries and the
// used-imports set.
func (c *Context) RecordOutput(out *engine.Output) {
	chunks := out.Chunks()
	names := sets.New[string]()
	for _, ch := range chunks {
		names.Add(ch.FileName)
	}

	for _, ch := range chunks {
		for _, imp := range ch.Imports {
			c.UsedImports.Add(imp)
		}
		entry := BuildEntry{
			Path:    ch.FileName,
			IsChunk: !ch.IsEntry,
			Bytes:   len(ch.Code),
		}
		for _, imp := range ch.Imports {
			if names.Has(imp) {
				entry.ChunkDependencies = append(entry.ChunkDependencies, imp)
			}
		}
		if ch.IsEntry {
			entry.Exports = append([]string(nil), ch.Exports...)
		}
		c.BuildEntries = append(c.BuildEntries, entry)
	}

	for name := range names {
		c.UsedImports.Delete(name)
	}
}
