package config

// nodeBuiltins lists the Node.js core modules. They are always external, both
// bare and with the node: scheme.
var nodeBuiltins = []string{
	"assert", "async_hooks", "buffer", "child_process", "cluster", "console",
	"constants", "crypto", "dgram", "diagnostics_channel", "dns", "domain",
	"events", "fs", "http", "http2", "https", "inspector", "module", "net",
	"os", "path", "perf_hooks", "process", "punycode", "querystring",
	"readline", "repl", "stream", "string_decoder", "sys", "timers", "tls",
	"trace_events", "tty", "url", "util", "v8", "vm", "wasi",
	"worker_threads", "zlib",
}

// BuiltinModules returns the Node.js core module names with and without the node: prefix.
func BuiltinModules() []string {
	out := make([]string, 0, 2*len(nodeBuiltins))
	out = append(out, nodeBuiltins...)
	for _, m := range nodeBuiltins {
		out = append(out, "node:"+m)
	}
	return out
}

// IsBuiltin reports whether the package name is a Node.js core module.
func IsBuiltin(name string) bool {
	for _, m := range nodeBuiltins {
		if name == m || name == "node:"+m {
			return true
		}
	}
	return false
}
