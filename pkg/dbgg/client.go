// Package dbgg is a client for the discord.bots.gg listing API.
//
// Every call is a single request with no retries and no internal timeout;
// bound it with the context you pass in.
package dbgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/beatX-bot/discordbots-go/pkg/metrics"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL = "https://discord.bots.gg/api/v1"

const BotsEndpoint = "/bots"
const BotEndpoint = "/bots/{id}"
const BotStatsEndpoint = "/bots/{id}/stats"

const tracerName = "github.com/beatX-bot/discordbots-go/pkg/dbgg"

type Client struct {
	http    *resty.Client
	logger  *slog.Logger
	metrics *metrics.Client
	tracer  trace.Tracer
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Client
	tracer     trace.Tracer
}

func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithHTTPClient sets the transport-level client. Its Timeout, if any, is
// the only timeout applied besides the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

func WithMetrics(m *metrics.Client) Option {
	return func(o *clientOptions) { o.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *clientOptions) { o.tracer = tracer }
}

// NewClient creates a client authenticating with token. An empty token sends
// requests unauthenticated.
func NewClient(token string, opts ...Option) *Client {
	o := clientOptions{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(o.baseURL, "/"))
	rc.SetLogger(restyLogger{o.logger})
	if token != "" {
		// raw token, no "Bearer" scheme
		rc.SetHeader("Authorization", token)
	}

	c := &Client{
		http:    rc,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
	c.instrument()
	return c
}

// Response is a successful API response. Exactly one of JSON or Text is
// meaningful, depending on the declared content type.
type Response struct {
	StatusCode  int
	ContentType string
	IsJSON      bool
	// JSON is the decoded body when IsJSON is set.
	JSON any
	// Text is the raw body when IsJSON is not set.
	Text string

	body []byte
}

// Decode unmarshals the raw JSON body into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON {
		return fmt.Errorf("dbgg: response is %q, not JSON", r.ContentType)
	}
	return json.Unmarshal(r.body, v)
}

// Request sends one request to path (relative to the base URL, with {name}
// placeholders filled from params). For GET, body is sent as URL parameters;
// for every other method it is JSON-encoded.
func (c *Client) Request(ctx context.Context, method, path string, params map[string]string, body any) (*Response, error) {
	req := c.http.R().
		SetContext(context.WithValue(ctx, endpointKey{}, path)).
		SetPathParams(params)

	if method == http.MethodGet {
		values, err := queryValues(body)
		if err != nil {
			return nil, err
		}
		if values != nil {
			req.SetQueryParamsFromValues(values)
		}
	} else {
		req.SetHeader("Content-Type", "application/json")
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("dbgg: encoding request body: %w", err)
			}
			req.SetBody(data)
		}
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("dbgg: %s %s: %w", method, path, err)
	}

	raw := res.Body()
	if !res.IsSuccess() {
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: res.StatusCode(),
			Status:     statusText(res),
			Body:       string(raw),
		}
		var doc struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &doc) == nil {
			apiErr.Message = doc.Message
		}
		return nil, apiErr
	}

	out := &Response{
		StatusCode:  res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		body:        raw,
	}
	if isJSON(out.ContentType) {
		out.IsJSON = true
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &out.JSON); err != nil {
				return nil, fmt.Errorf("dbgg: %s %s: decoding response: %w", method, path, err)
			}
		}
	} else {
		out.Text = string(raw)
	}
	return out, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// statusText strips the numeric code off "404 Not Found".
func statusText(res *resty.Response) string {
	status := res.Status()
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return status[i+1:]
	}
	if status == "" {
		return http.StatusText(res.StatusCode())
	}
	return status
}
