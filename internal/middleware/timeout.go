package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds API handlers. The context deadline also reaches the
// database and SMTP calls made on behalf of the request.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"message":"Request timed out","error":{"code":"REQUEST_TIMEOUT","message":"Request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
