package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	TweetsPosted       *prometheus.CounterVec
	TweetsDeleted      *prometheus.CounterVec
	FollowRequests     *prometheus.CounterVec
	UnfollowRequests   *prometheus.CounterVec
	LikesSet           *prometheus.CounterVec
	LikesRemoved       *prometheus.CounterVec
	MediaUploaded      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx and 5xx) HTTP requests",
			},
			[]string{"path"},
		),
		TweetsPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweets_posted",
				Help: "Total number of tweets created",
			},
			[]string{"path"},
		),
		TweetsDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweets_deleted",
				Help: "Total number of tweets deleted by their author",
			},
			[]string{"path"},
		),
		FollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_follows",
				Help: "Total number of successfully sent follow requests",
			},
			[]string{"path"},
		),
		UnfollowRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_unfollows",
				Help: "Total number of successfully sent unfollow requests",
			},
			[]string{"path"},
		),
		LikesSet: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_set",
				Help: "Total number of likes recorded",
			},
			[]string{"path"},
		),
		LikesRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_removed",
				Help: "Total number of likes withdrawn",
			},
			[]string{"path"},
		),
		MediaUploaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_uploaded",
				Help: "Total number of media files stored",
			},
			[]string{"path"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.TweetsPosted,
		m.TweetsDeleted,
		m.FollowRequests,
		m.UnfollowRequests,
		m.LikesSet,
		m.LikesRemoved,
		m.MediaUploaded,
		m.RequestDuration,
	)

	return m
}
