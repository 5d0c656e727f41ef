package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods   = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders   = "Authorization, Content-Type, Accept, " + RequestIDHeader
	corsExposeHeaders  = RequestIDHeader
	corsMaxAge         = "86400"
	corsAllowAnyOrigin = "*"
)

// CORS adds CORS headers for allowed origins and answers OPTIONS preflights with 204.
// Listed origins are echoed back with credentials allowed so browsers send the identity
// cookie. "*" admits any other origin without credentials.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	_, anyOrigin := allowed[corsAllowAnyOrigin]

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, listed := allowed[origin]
		listed = listed && origin != "" && origin != corsAllowAnyOrigin
		ok := origin != "" && (listed || anyOrigin)

		w.Header().Add("Vary", "Origin")
		switch {
		case listed:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		case ok:
			w.Header().Set("Access-Control-Allow-Origin", corsAllowAnyOrigin)
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if ok {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if ok {
			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
		}
		next.ServeHTTP(w, r)
	})
}
