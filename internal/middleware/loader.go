package middleware

import (
	"net/http"

	"shiptrack-graphql/internal/loader"
	"shiptrack-graphql/internal/observability"
)

// LoaderMiddleware attaches a fresh user loader to every request. The
// loader batches and caches user lookups for the duration of that request
// only; a new request always starts with an empty cache.
func LoaderMiddleware(fetcher loader.UserFetcher, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := loader.NewUserLoader(fetcher)
			if metrics != nil {
				l.BatchHook = func(keyCount int) {
					metrics.LoaderBatches.Inc()
					metrics.LoaderKeys.Add(float64(keyCount))
				}
			}
			ctx := loader.WithLoader(r.Context(), l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
