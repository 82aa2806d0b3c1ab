package middleware

import (
	"net/http"
	"os"

	"github.com/OpenClique85/openclique-sub009/pkg/observability"
)

// Tracing opens an X-Ray segment per request. Outside Lambda and
// without a local X-Ray daemon the middleware is a passthrough, so
// dev servers don't spam emission errors.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	enabled := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" ||
		os.Getenv("AWS_XRAY_DAEMON_ADDRESS") != ""

	tracer := observability.NewTracer(serviceName)

	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, seg := tracer.StartSegment(r.Context(), "http")
			tracer.AddAnnotation(ctx, "method", r.Method)
			tracer.AddAnnotation(ctx, "path", r.URL.Path)

			next.ServeHTTP(w, r.WithContext(ctx))

			if seg != nil {
				seg.Close(nil)
			}
		})
	}
}
