// Package metrics provides build observability for unbuild.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and costs nothing; PrometheusRecorder collects phase durations,
// outcomes, output sizes and warning counts into a Prometheus registry, which
// WriteTextfile can export in the node_exporter textfile format after a
// one-shot build.
//
//	reg := prometheus.NewRegistry()
//	builder := build.NewBuilder(engine.NewEsbuild()).WithRecorder(metrics.NewPrometheusRecorder(reg))
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
