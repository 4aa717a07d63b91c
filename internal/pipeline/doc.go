// Package pipeline composes the transform stages and the external
// dependency policy for a build into an engine configuration.
package pipeline
