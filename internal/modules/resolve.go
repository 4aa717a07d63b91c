// Package modules resolves source modules on disk and analyzes their exports.
package modules

import (
	"os"
	"path/filepath"
)

// TryResolve finds the file id refers to, relative to root unless absolute.
// It probes id itself, id+ext and id/index+ext for each extension in order.
func TryResolve(id, root string, extensions []string) (string, bool) {
	base := id
	if !filepath.IsAbs(base) {
		base = filepath.Join(root, base)
	}
	if isFile(base) {
		return base, true
	}
	for _, ext := range extensions {
		if p := base + ext; isFile(p) {
			return p, true
		}
	}
	for _, ext := range extensions {
		if p := filepath.Join(base, "index"+ext); isFile(p) {
			return p, true
		}
	}
	return "", false
}

// ResolveOr is TryResolve falling back to the absolute form of id.
func ResolveOr(id, root string, extensions []string) string {
	if p, ok := TryResolve(id, root, extensions); ok {
		return p
	}
	if filepath.IsAbs(id) {
		return id
	}
	return filepath.Join(root, id)
}

// StripExt removes the final extension from p.
func StripExt(p string) string {
	return p[:len(p)-len(filepath.Ext(p))]
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
