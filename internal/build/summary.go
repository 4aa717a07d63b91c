package build

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/vzt7/unbuild/internal/logfields"
	"github.com/vzt7/unbuild/internal/observability"
)

// EntrySummary describes one emitted entry and the chunks it pulls in.
type EntrySummary struct {
	Path       string
	Bytes      int
	ChunkBytes int
	Chunks     []string
	Exports    []string
}

// TotalBytes is the entry plus its chunk dependencies.
func (s EntrySummary) TotalBytes() int { return s.Bytes + s.ChunkBytes }

// Summarize groups the recorded build entries by entry, in emission order.
func Summarize(entries []BuildEntry, outDir string) ([]EntrySummary, int) {
	byPath := make(map[string]BuildEntry, len(entries))
	total := 0
	for _, e := range entries {
		byPath[e.Path] = e
		total += e.Bytes
	}
	var out []EntrySummary
	for _, e := range entries {
		if e.IsChunk {
			continue
		}
		s := EntrySummary{Path: path.Join(outDir, e.Path), Bytes: e.Bytes, Exports: e.Exports}
		for _, dep := range e.ChunkDependencies {
			s.Chunks = append(s.Chunks, path.Join(outDir, dep))
			s.ChunkBytes += byPath[dep].Bytes
		}
		out = append(out, s)
	}
	return out, total
}

func logSummary(ctx context.Context, bc *Context) {
	summaries, total := Summarize(bc.BuildEntries, bc.Options.OutDir)
	for _, s := range summaries {
		attrs := []slog.Attr{
			logfields.Path(s.Path),
			slog.String("size", humanize.Bytes(uint64(s.TotalBytes()))),
		}
		if len(s.Chunks) > 0 {
			attrs = append(attrs,
				slog.String("chunk_size", humanize.Bytes(uint64(s.ChunkBytes))),
				slog.String("chunks", strings.Join(s.Chunks, ", ")))
		}
		if len(s.Exports) > 0 {
			attrs = append(attrs, slog.String("exports", strings.Join(s.Exports, ", ")))
		}
		observability.InfoContext(ctx, "Entry emitted", attrs...)
	}
	observability.InfoContext(ctx, "Total output size",
		slog.String("size", humanize.Bytes(uint64(total))), logfields.Bytes(total))
}
