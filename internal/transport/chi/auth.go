package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/survivor-labs/survivor-indexer/internal/logger"
)

// Probes and scrapes stay reachable without a key.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type apiKey struct {
	digest [sha256.Size]byte
	id     string
}

// BearerAuthMiddleware requires "Authorization: Bearer <key>" on every
// non-exempt route. Keys are compared as SHA-256 digests in constant time.
// The request logger gains an api_key field holding a short key fingerprint.
// With no non-empty keys the middleware is a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var keys []apiKey
	for _, k := range apiKeys {
		if k == "" {
			continue
		}
		d := sha256.Sum256([]byte(k))
		keys = append(keys, apiKey{digest: d, id: hex.EncodeToString(d[:4])})
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			id, valid := matchKey(keys, token)
			if !valid {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			ctx := r.Context()
			l := logpkg.FromContext(ctx, nil).With(zap.String("api_key", id))
			next.ServeHTTP(w, r.WithContext(logpkg.ContextWithLogger(ctx, l)))
		})
	}
}

// matchKey checks every key so the time taken does not depend on which
// key matched.
func matchKey(keys []apiKey, token string) (string, bool) {
	d := sha256.Sum256([]byte(token))
	var id string
	found := 0
	for _, k := range keys {
		if subtle.ConstantTimeCompare(d[:], k.digest[:]) == 1 {
			id = k.id
			found = 1
		}
	}
	return id, found == 1
}
