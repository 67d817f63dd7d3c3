package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kailas-cloud/citrination/internal/transport/citrination"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// exemptPrefixes bypass authentication too: upload URLs are handed out
// to holders of a valid key and carry no key themselves.
var exemptPrefixes = []string{UploadPrefix}

// APIKeyMiddleware returns a middleware that validates the X-API-Key header.
// If apiKeys is empty, authentication is disabled (pass-through).
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys = append(validKeys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(citrination.HeaderAPIKey)
			if key == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing "+citrination.HeaderAPIKey+" header")
				return
			}

			for _, valid := range validKeys {
				if subtle.ConstantTimeCompare([]byte(key), valid) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
		})
	}
}

func isExempt(path string) bool {
	if _, ok := exemptPaths[path]; ok {
		return true
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
