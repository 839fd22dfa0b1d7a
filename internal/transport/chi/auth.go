package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kailas-cloud/kbsearch/internal/metrics"
)

const (
	msgHeaderMissing = "Authorization header missing"
	msgKeyMissing    = "API key is missing"
	msgKeyInvalid    = "Invalid API key"
)

// APIKeyAuth checks "Authorization: <scheme> <token>" against a single shared secret.
// The second whitespace-separated segment is the token; the scheme is not inspected.
// An empty secret rejects every request.
func APIKeyAuth(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, msgHeaderMissing)
				return
			}

			parts := strings.Fields(header)
			if len(parts) < 2 {
				unauthorized(w, msgKeyMissing)
				return
			}

			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(parts[1]), want) != 1 {
				unauthorized(w, msgKeyInvalid)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	metrics.SearchRequestsTotal.WithLabelValues("unauthorized").Inc()
	writeError(w, http.StatusUnauthorized, msg)
}
