// Package web holds the monitor control page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path/filepath"
	"runtime"
)

//go:embed dist/*
var dist embed.FS

// Assets returns the control page files. With fromSource set, the files are
// read from the source tree on every request, so the page can be edited
// while the monitor runs.
func Assets(fromSource bool) http.FileSystem {
	if fromSource {
		return http.Dir(SourceDir())
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

// SourceDir is the directory the control page is built from.
func SourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("web: cannot locate the source tree")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}
