package middleware

import (
	"fmt"
	"strings"

	"photogram/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// resourceAttrs maps a route prefix and parameter to the span attribute that
// names the resource the request touched.
var resourceAttrs = []struct {
	prefix string
	param  string
	key    string
}{
	{"/api/posts/", "id", "photogram.post.id"},
	{"/api/users/", "id", "photogram.target_user.id"},
	{"/api/comments/", "commentId", "photogram.comment.id"},
}

// TracingMiddleware opens a server span per request. Once the route is
// matched the span is renamed to the route template and tagged with the
// post, comment or target user ids from the path.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Locals("spanID", span.SpanContext().SpanID().String())
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route()
		span.SetName(c.Method() + " " + route.Path)
		span.SetAttributes(
			attribute.String("http.route", route.Path),
			attribute.Int("http.status_code", c.Response().StatusCode()),
		)
		for _, ra := range resourceAttrs {
			if !strings.HasPrefix(route.Path, ra.prefix) {
				continue
			}
			if v := c.Params(ra.param); v != "" {
				span.SetAttributes(attribute.String(ra.key, v))
			}
		}
		if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
			span.SetAttributes(attribute.Int64("photogram.user.id", int64(userID)))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}
