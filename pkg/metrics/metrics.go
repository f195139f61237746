package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dbgg"

// Webhook counts inbound vote webhook traffic. A nil *Webhook is valid and
// records nothing.
type Webhook struct {
	requests *prometheus.CounterVec
	votes    *prometheus.CounterVec
}

func NewWebhook(reg prometheus.Registerer) *Webhook {
	w := &Webhook{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Number of webhook requests handled, differentiated by response status",
		}, []string{"status"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "votes_total",
			Help:      "Number of votes received, differentiated by vote type",
		}, []string{"type"}),
	}
	reg.MustRegister(w.requests, w.votes)
	return w
}

func (w *Webhook) ObserveRequest(status int) {
	if w == nil {
		return
	}
	w.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveVote counts a vote. voteType comes from the sender, so anything but
// the known types is folded into "other" to keep the series bounded.
func (w *Webhook) ObserveVote(voteType string) {
	if w == nil {
		return
	}
	w.votes.WithLabelValues(voteTypeLabel(voteType)).Inc()
}

func voteTypeLabel(voteType string) string {
	switch voteType {
	case "upvote", "test":
		return voteType
	default:
		return "other"
	}
}

// Client counts outbound requests to the listing API. A nil *Client is valid
// and records nothing.
type Client struct {
	requests *prometheus.CounterVec
}

func NewClient(reg prometheus.Registerer) *Client {
	c := &Client{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Number of listing API requests made, differentiated by method/endpoint/status",
		}, []string{"method", "endpoint", "status"}),
	}
	reg.MustRegister(c.requests)
	return c
}

// ObserveRequest records one request. status 0 means the request never got a
// response (transport error).
func (c *Client) ObserveRequest(method, endpoint string, status int) {
	if c == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	c.requests.WithLabelValues(method, endpoint, label).Inc()
}

// NewRegistry returns a registry preloaded with the process and Go runtime
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
