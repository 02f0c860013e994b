// Package web holds the browser UI served at the site root.
package web

import (
	"embed"
	"net/http"
)

//go:embed static
var assets embed.FS

// PathPrefix is the directory inside FS that holds the UI files.
const PathPrefix = "static"

func FS() http.FileSystem {
	return http.FS(assets)
}
