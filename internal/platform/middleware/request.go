package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"carebridge/pkg/requestcontext"
)

// RequestMetadata assigns a request id (honoring an inbound X-Request-ID) and
// pins the request time so all downstream timestamps within one request agree.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())
		ctx = requestcontext.WithClientIP(ctx, r.RemoteAddr)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
