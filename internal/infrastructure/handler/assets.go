package handler

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web/templates/*.tmpl web/static/*
var webFS embed.FS

var pageTemplates = template.Must(template.ParseFS(webFS, "web/templates/*.tmpl"))

// staticHandler serves the embedded page assets under /static/. Directory
// paths go to notFound instead of a file listing.
func staticHandler(notFound http.Handler) http.Handler {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}

	files := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
