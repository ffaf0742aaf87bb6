package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/clean-dependency-project/devserve/internal/logger"
)

// WithHeaders sets headers on every response before next runs, so they are
// present whatever status next produces, including errors and redirects.
func WithHeaders(next http.Handler, headers map[string]string) http.Handler {
	fixed := make(http.Header, len(headers))
	for k, v := range headers {
		fixed.Set(k, v)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, vs := range fixed {
			h[k] = append([]string(nil), vs...)
		}
		next.ServeHTTP(w, r)
	})
}

// WithAccessLog logs one line per request once next has finished:
// `"<method> <uri> <proto>" <status> <bytes>`, with the client host attached.
func WithAccessLog(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.LogAttrs(r.Context(), slog.LevelInfo,
			fmt.Sprintf("%q %d %d", requestLine(r), m.Code, m.Written),
			slog.String(logger.ClientKey, clientHost(r.RemoteAddr)),
		)
	})
}

// allowMethods answers OPTIONS preflights itself and rejects everything
// except GET and HEAD.
func allowMethods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			next.ServeHTTP(w, r)
		case http.MethodOptions:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}

func requestLine(r *http.Request) string {
	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}
	return r.Method + " " + uri + " " + r.Proto
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
