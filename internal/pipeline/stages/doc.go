// Package stages holds the transform stages the pipeline composer chains
// into an engine configuration. Each stage implements the engine hook
// interfaces it needs; none of them keeps state across builds except
// Shebang, which remembers entry directives between load and render.
package stages
