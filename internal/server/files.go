package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// indexFiles are served in place of a listing when present in a directory.
var indexFiles = []string{"index.html", "index.htm"}

// fileHandler maps request paths onto root. Every lookup goes through os.Root,
// which refuses to resolve ".." or symlinks leading outside the web root.
type fileHandler struct {
	root   *os.Root
	logger *slog.Logger
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	if containsDotDot(upath) {
		notFound(w)
		return
	}
	clean := path.Clean(upath)
	name := strings.TrimPrefix(clean, "/")
	if name == "" {
		name = "."
	}

	f, err := h.root.Open(name)
	if err != nil {
		h.openError(w, name, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.openError(w, name, err)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(upath, "/") {
			redirect(w, (&url.URL{Path: clean + "/"}).EscapedPath()+querySuffix(r))
			return
		}
		if h.serveIndex(w, r, name) {
			return
		}
		listingPath := clean
		if listingPath != "/" {
			listingPath += "/"
		}
		h.serveListing(w, r, f, listingPath)
		return
	}

	if strings.HasSuffix(upath, "/") {
		notFound(w)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// serveIndex serves the first index file found in dir and reports whether it did.
func (h *fileHandler) serveIndex(w http.ResponseWriter, r *http.Request, dir string) bool {
	for _, index := range indexFiles {
		f, err := h.root.Open(path.Join(dir, index))
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			f.Close()
			continue
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		f.Close()
		return true
	}
	return false
}

func (h *fileHandler) openError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, fs.ErrPermission) {
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		// Escapes from the root land here as well.
		h.logger.Debug("lookup refused", "path", name, "error", err)
	}
	notFound(w)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "404 Not Found", http.StatusNotFound)
}

func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusMovedPermanently)
}

func querySuffix(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return ""
	}
	return "?" + r.URL.RawQuery
}

// containsDotDot reports whether any slash- or backslash-separated element of p is "..".
func containsDotDot(p string) bool {
	for _, elem := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if elem == ".." {
			return true
		}
	}
	return false
}
