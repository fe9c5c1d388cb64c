// Package web serves the hbnb HTTP front end.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hbnb/internal/logging"
	"hbnb/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const defaultPythonText = "is cool"

// NewRouter returns the front end handler. When m is non-nil its registry is
// exposed on /metrics.
func NewRouter(m *metrics.Metrics) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", text("Hello HBNB!")).Methods(http.MethodGet)
	router.HandleFunc("/hbnb", text("HBNB")).Methods(http.MethodGet)
	router.HandleFunc("/c/{text}", prefixed("C ")).Methods(http.MethodGet)
	router.HandleFunc("/python", prefixed("Python ")).Methods(http.MethodGet)
	router.HandleFunc("/python/{text}", prefixed("Python ")).Methods(http.MethodGet)
	router.HandleFunc("/number/{n:[0-9]+}", number).Methods(http.MethodGet)
	router.HandleFunc("/number_template/{n:[0-9]+}", numberTemplate).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	router.Use(logRequests)
	return trimTrailingSlash(router)
}

// trimTrailingSlash routes "/path/" like "/path" without redirecting.
func trimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
		}
		next.ServeHTTP(w, r)
	})
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

// prefixed echoes the {text} path variable after prefix with underscores
// shown as spaces.
func prefixed(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, ok := mux.Vars(r)["text"]
		if !ok {
			value = defaultPythonText
		}
		body := prefix + strings.ReplaceAll(value, "_", " ")
		text(body)(w, r)
	}
}

func number(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(w, r)
	if !ok {
		return
	}
	body := strconv.Itoa(n) + " is a number"
	text(body)(w, r)
}

func numberTemplate(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "number_template.html", struct{ Number int }{n}); err != nil {
		logging.WithFields(logging.Fields{"event": "render_failed"}).Error(err)
	}
}

func pathInt(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return n, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.WithFields(logging.Fields{
			"event":    "http_request",
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(started),
		}).Debug("request served")
	})
}
