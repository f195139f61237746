package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWebhookCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWebhook(reg)

	w.ObserveRequest(http.StatusOK)
	w.ObserveRequest(http.StatusOK)
	w.ObserveRequest(http.StatusForbidden)
	w.ObserveVote("upvote")

	require.Equal(t, 2.0, testutil.ToFloat64(w.requests.WithLabelValues("200")))
	require.Equal(t, 1.0, testutil.ToFloat64(w.requests.WithLabelValues("403")))
	require.Equal(t, 1.0, testutil.ToFloat64(w.votes.WithLabelValues("upvote")))
}

func TestVoteTypeLabelIsBounded(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWebhook(reg)

	w.ObserveVote("test")
	for i := 0; i < 100; i++ {
		w.ObserveVote("made-up-" + strconv.Itoa(i))
	}
	w.ObserveVote("")

	families, err := reg.Gather()
	require.NoError(t, err)
	series := 0
	for _, family := range families {
		if family.GetName() == "dbgg_webhook_votes_total" {
			series += len(family.GetMetric())
		}
	}
	require.Equal(t, 2, series)
	require.Equal(t, 1.0, testutil.ToFloat64(w.votes.WithLabelValues("test")))
	require.Equal(t, 101.0, testutil.ToFloat64(w.votes.WithLabelValues("other")))
}

func TestClientCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewClient(reg)

	c.ObserveRequest(http.MethodPost, "/bots/{id}/stats", http.StatusOK)
	c.ObserveRequest(http.MethodGet, "/bots", 0)

	require.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("POST", "/bots/{id}/stats", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/bots", "error")))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var w *Webhook
	var c *Client
	w.ObserveRequest(http.StatusOK)
	w.ObserveVote("test")
	c.ObserveRequest(http.MethodGet, "/bots", http.StatusOK)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewWebhook(reg).ObserveVote("test")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.Contains(string(body), `dbgg_webhook_votes_total{type="test"} 1`))
}
