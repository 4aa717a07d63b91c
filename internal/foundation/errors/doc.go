// Package errors provides the classified error primitives used across unbuild.
//
// Build failures are sorted into a small number of categories so the CLI can
// pick an exit code and decide how much detail to print:
//
//   - ErrorCategory: Broad error classification (config, resolve, build, declaration, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryBuild, "compile failed").
//		WithContext("entries", len(cfg.Input)).
//		Build()
package errors
