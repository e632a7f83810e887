package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TweetsPosted.WithLabelValues("tweet").Inc()
	m.BadRequests.WithLabelValues("like").Add(2)
	m.RequestDuration.WithLabelValues("GET", "/api/tweets", "200").Observe(0.01)

	if got := testutil.ToFloat64(m.TweetsPosted.WithLabelValues("tweet")); got != 1 {
		t.Errorf("tweets_posted = %v, want 1", got)
	}

	expected := `
# HELP unsuccessful_request Total number of unsuccessful (4xx and 5xx) HTTP requests
# TYPE unsuccessful_request counter
unsuccessful_request{path="like"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "unsuccessful_request"); err != nil {
		t.Errorf("unexpected metrics output: %v", err)
	}

	if n := testutil.CollectAndCount(m.RequestDuration); n != 1 {
		t.Errorf("Expected one duration series, got %d", n)
	}
}

func TestNewSeparateRegistries(t *testing.T) {
	// Each registry owns its own collectors, so building twice must not panic.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
