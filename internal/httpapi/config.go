package httpapi

import (
	"net/http"

	"github.com/go-chi/cors"
)

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Default is 1 MiB.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// loginTimeout bounds a /login request after it passed the gate.
// Zero means no additional timeout beyond server/connection timeouts.
var loginTimeout = int64(0) // seconds

// SetLoginTimeoutSeconds sets the login timeout in seconds (0 disables).
func SetLoginTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	loginTimeout = sec
}

// environment is echoed by GET / and decides whether error detail reaches clients.
var environment = "production"

// SetEnvironment sets the runtime environment name ("development" exposes error detail).
func SetEnvironment(env string) {
	if env == "" {
		env = "production"
	}
	environment = env
}

func isDevelopment() bool { return environment == "development" }

// CORS configuration. Enabled with the browser front-end origins by default.
var (
	corsEnabled        = true
	corsAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000", "https://jlabs-web-six.vercel.app"}
	corsAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	corsAllowedHeaders = []string{"Content-Type", "Authorization"}
)

// SetCORSOptions configures CORS behavior for the HTTP server.
// Empty methods or headers keep the current lists.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	if len(methods) > 0 {
		corsAllowedMethods = append([]string(nil), methods...)
	}
	if len(headers) > 0 {
		corsAllowedHeaders = append([]string(nil), headers...)
	}
}

func corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:     corsAllowedOrigins,
		AllowedMethods:     corsAllowedMethods,
		AllowedHeaders:     corsAllowedHeaders,
		AllowCredentials:   true,
		OptionsPassthrough: false,
		MaxAge:             300,
	})
}
