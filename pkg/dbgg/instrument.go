package dbgg

import (
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type endpointKey struct{}

func (c *Client) instrument() {
	c.http.OnBeforeRequest(c.onBeforeRequest)
	c.http.OnAfterResponse(c.onAfterResponse)
	c.http.OnError(c.onError)
}

func endpointOf(req *resty.Request) string {
	if endpoint, ok := req.Context().Value(endpointKey{}).(string); ok {
		return endpoint
	}
	return req.URL
}

func (c *Client) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	endpoint := endpointOf(req)
	ctx, _ := c.tracer.Start(req.Context(), fmt.Sprintf("dbgg %s %s", req.Method, endpoint),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("dbgg.endpoint", endpoint),
		),
	)
	req.SetContext(ctx)

	c.logger.DebugContext(ctx, "start request",
		"method", req.Method,
		"endpoint", endpoint,
	)
	return nil
}

func (c *Client) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	endpoint := endpointOf(res.Request)
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
	c.metrics.ObserveRequest(res.Request.Method, endpoint, res.StatusCode())

	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		c.logger.WarnContext(ctx, "request returned an error status",
			"method", res.Request.Method,
			"endpoint", endpoint,
			"status", res.StatusCode(),
			"duration", res.Time(),
		)
		return nil
	}

	c.logger.DebugContext(ctx, "request succeeded",
		"method", res.Request.Method,
		"endpoint", endpoint,
		"status", res.StatusCode(),
		"duration", res.Time(),
	)
	return nil
}

func (c *Client) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")

	endpoint := endpointOf(req)
	c.metrics.ObserveRequest(req.Method, endpoint, 0)
	c.logger.ErrorContext(ctx, "request failed",
		"method", req.Method,
		"endpoint", endpoint,
		"error", err,
	)
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
