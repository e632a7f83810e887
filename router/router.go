package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"microtwit/handlers"
	"microtwit/metrics"
	"microtwit/middleware"
	"microtwit/models"
)

type Options struct {
	// MediaDir, when set, is served read-only under MediaURLPrefix.
	MediaDir       string
	MediaURLPrefix string
	CORSOrigins    []string
	Gatherer       prometheus.Gatherer
}

// New builds the full HTTP handler: routes, logging, panic recovery, CORS and
// tracing.
func New(api *handlers.API, logger *logrus.Logger, m *metrics.Metrics, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging(logger, m), middleware.Recover(logger))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, models.ErrorNotFound, "No such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusMethodNotAllowed, models.ErrorValidation, "Method not allowed")
	})

	r.HandleFunc("/health", api.GETHealthHandler).Methods("GET")
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	s := r.PathPrefix("/api").Subrouter()

	s.HandleFunc("/tweets", api.POSTTweetHandler).Methods("POST")
	s.HandleFunc("/tweets", api.GETFeedHandler).Methods("GET")
	s.HandleFunc("/tweets/{id:[0-9]+}", api.DELETETweetHandler).Methods("DELETE")
	s.HandleFunc("/tweets/{id:[0-9]+}/likes", api.POSTLikeHandler).Methods("POST")
	s.HandleFunc("/tweets/{id:[0-9]+}/likes", api.DELETELikeHandler).Methods("DELETE")

	s.HandleFunc("/users/me", api.GETMeHandler).Methods("GET")
	s.HandleFunc("/users/{id:[0-9]+}", api.GETUserHandler).Methods("GET")
	s.HandleFunc("/users/{id:[0-9]+}/follow", api.POSTFollowHandler).Methods("POST")
	s.HandleFunc("/users/{id:[0-9]+}/follow", api.DELETEFollowHandler).Methods("DELETE")

	s.HandleFunc("/medias", api.POSTMediaHandler).Methods("POST")

	if opts.MediaDir != "" {
		prefix := strings.TrimRight(opts.MediaURLPrefix, "/") + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, mediaFiles(opts.MediaDir))).Methods("GET", "HEAD")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", handlers.APIKeyHeader},
	})

	return otelhttp.NewHandler(c.Handler(r), "microtwit-api", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))
}

// mediaFiles serves stored blobs but never directory listings.
func mediaFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			middleware.ErrorResponse(w, http.StatusNotFound, models.ErrorNotFound, "Media not found")
			return
		}
		fs.ServeHTTP(w, r)
	})
}
