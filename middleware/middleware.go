package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microtwit/metrics"
	"microtwit/models"
)

// SlowRequestThreshold is the duration above which a request is logged as slow.
var SlowRequestThreshold = 2 * time.Second

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Logging logs every request once it has been served and records its
// duration. Requests slower than SlowRequestThreshold are logged at warn.
func Logging(logger *logrus.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			duration := time.Since(start)

			m.RequestDuration.
				WithLabelValues(r.Method, routeTemplate(r), strconv.Itoa(rec.status)).
				Observe(duration.Seconds())

			entry := logger.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    rec.status,
				"duration":  duration,
				"remote_ip": GetClientIP(r),
			})
			if duration > SlowRequestThreshold {
				entry.Warn("Slow request detected")
			} else {
				entry.Info("Request completed")
			}
		})
	}
}

// routeTemplate keeps the duration histogram's cardinality bounded by using
// the matched pattern instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Recover turns a panicking handler into a 500 with the usual error body.
func Recover(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.WithFields(logrus.Fields{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  v,
						"stack":  string(debug.Stack()),
					}).Error("Recovered from panic in handler")
					ErrorResponse(w, http.StatusInternalServerError, models.ErrorInternal, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

// ErrorResponse writes the failure body for the given kind.
func ErrorResponse(w http.ResponseWriter, statusCode int, kind, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Result:       false,
		ErrorType:    kind,
		ErrorMessage: message,
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
