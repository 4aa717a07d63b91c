// Package engine is the compilation engine used by the build orchestrator.
//
// A Config names the entry modules, the output formats and an ordered list
// of Stages. Each stage implements one or more hook interfaces (Configurer,
// Resolver, ModuleLoader, Transformer, ChunkRenderer, BundleGenerator,
// BundleWriter); the engine calls the hooks of every stage in list order.
//
// Compile performs a single bundling pass and returns a Bundle; Bundle.Write
// renders that compilation in one output format and writes it to disk, so
// CommonJS and ESM outputs share one module graph.
//
// The implementation is backed by esbuild. Resolver, ModuleLoader and
// Transformer hooks run inside esbuild plugin callbacks and may be invoked
// concurrently; stages that keep state must guard it.
package engine
