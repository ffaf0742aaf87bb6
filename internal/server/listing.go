package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed templates/listing.tmpl
var templateFS embed.FS

var listingTemplate = template.Must(
	template.New("listing.tmpl").Funcs(template.FuncMap{
		"formatBytes": formatBytes,
	}).ParseFS(templateFS, "templates/listing.tmpl"),
)

// listingEntry is one row of a directory listing.
type listingEntry struct {
	Name    string
	Href    string
	IsDir   bool
	Size    int64
	ModTime string
}

// listingPage is the data passed to listing.tmpl.
type listingPage struct {
	Path    string
	Parent  bool
	Entries []listingEntry
}

// serveListing renders dir as an HTML index. Directories get a trailing "/",
// symlinks a trailing "@".
func (h *fileHandler) serveListing(w http.ResponseWriter, r *http.Request, dir *os.File, urlPath string) {
	dirEntries, err := dir.ReadDir(-1)
	if err != nil {
		h.logger.Warn("failed to read directory", "path", urlPath, "error", err)
		http.Error(w, "404 No permission to list directory", http.StatusNotFound)
		return
	}

	page := listingPage{
		Path:    urlPath,
		Parent:  urlPath != "/",
		Entries: buildEntries(dirEntries),
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("failed to render listing", "path", urlPath, "error", err)
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// buildEntries converts and sorts directory entries, case-insensitively.
func buildEntries(dirEntries []fs.DirEntry) []listingEntry {
	entries := make([]listingEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		display, link := name, name
		isDir := de.IsDir()
		switch {
		case isDir:
			display += "/"
			link += "/"
		case de.Type()&fs.ModeSymlink != 0:
			display += "@"
		}

		entry := listingEntry{
			Name:  display,
			Href:  (&url.URL{Path: link}).String(),
			IsDir: isDir,
		}
		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime().Format("2006-01-02 15:04")
			if !isDir {
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}

	// A Collator is not safe for concurrent use, so each listing gets its own.
	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		return coll.CompareString(entries[i].Name, entries[j].Name) < 0
	})
	return entries
}

// formatBytes formats a size for humans, e.g. 1536 -> "1.5 KB".
func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
