package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/image-cross/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLength caps a client-supplied request id.
const maxRequestIDLength = 64

// validRequestID reports whether a client-supplied id may be echoed and
// logged: 1 to 64 characters of ASCII letters, digits and hyphens.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

type idGenerator func() string

func requestIDMiddleware(generator idGenerator, next http.Handler) http.Handler {
	if generator == nil {
		generator = uuid.NewString
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if !validRequestID(requestID) {
			requestID = generator()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
