package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskgraph/taskgraph/pkg/logger"
)

type traceIDKey struct{}

// RequestID tags each request with a trace id, reusing the caller's
// X-Trace-ID header when present. The id is echoed on the response, stored
// for TraceID lookups and attached to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceIDKey{}, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID returns the request's trace id, or empty when RequestID has not
// run for this context.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}
