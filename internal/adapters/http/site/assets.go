// Package site serves the dashboard's embedded stylesheets and scripts.
package site

import (
	"context"
	"net/http"
	"strings"
)

// Prefix is the URL path the assets are mounted under.
const Prefix = "/assets/"

const cacheControl = "public, max-age=3600"

// Register attaches the embedded asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET "+Prefix, http.StripPrefix(Prefix, Handler()))
}

// Handler serves files from FS. Directory listings are not exposed.
func Handler() http.Handler {
	files := http.FileServer(FS())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", cacheControl)
		files.ServeHTTP(w, r)
	})
}
