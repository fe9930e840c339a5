// Package site serves the student facing signup page.
package site

import (
	"context"
	"net/http"
)

// IndexPath is where the root redirect lands. The file server answers it
// with static/index.html.
const IndexPath = "/static/"

// Register attaches the signup page routes to mux.
// Routes:
//
//	GET /          -> redirect to /static/
//	GET /static/*  -> embedded page assets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("GET /{$}", HandleRoot)
}

// HandleRoot redirects GET / to the signup page.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}
