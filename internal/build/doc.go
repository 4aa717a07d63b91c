// Package build is the build orchestrator.
//
// A Builder runs one build for a Context: in stub mode it writes small
// runtime-loading stubs per entry; otherwise it composes the stage pipeline,
// compiles all bundle entries once and writes every enabled output format
// from that compilation, recording the chunk graph as it goes, then runs the
// optional declaration pass. Lifecycle hooks fire at fixed points so callers
// can observe or adjust the build.
package build
