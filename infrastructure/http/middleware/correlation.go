package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID ensures every request carries a correlation id: an
// incoming header is honored, otherwise a fresh id is generated. The id is
// echoed on the response and stored in the request context so every log
// line and error envelope can reference it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, cid)

		ctx := logger.WithCorrelationID(r.Context(), cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
