package handlers

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"vocabdrill/internal/auth"
	"vocabdrill/internal/models"
	"vocabdrill/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const DeviceContextKey ContextKey = "device"

type deviceLookup interface {
	Get(deviceID string) (*models.Device, error)
	TouchLastSeen(deviceID string, at time.Time) error
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *auth.TokenIssuer
	devices     deviceLookup
	limiter     *security.RateLimiter
	adminSecret string
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *auth.TokenIssuer, devices deviceLookup, limiter *security.RateLimiter, adminSecret string) *Middleware {
	return &Middleware{
		tokens:      tokens,
		devices:     devices,
		limiter:     limiter,
		adminSecret: adminSecret,
	}
}

// RequireDevice is middleware that requires a valid device bearer token
func (m *Middleware) RequireDevice(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token", "", nil)
			return
		}

		deviceID, err := m.tokens.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", "", nil)
			return
		}

		device, err := m.devices.Get(deviceID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "Error loading device", err)
			return
		}
		if device == nil || !device.Active {
			respondWithError(w, http.StatusUnauthorized, "unauthorized", "Unknown or deactivated device", "", nil)
			return
		}

		// Activity tracking is best-effort
		if err := m.devices.TouchLastSeen(deviceID, time.Now().UTC()); err != nil {
			log.Printf("Failed to update last seen for device %s: %v", deviceID, err)
		}

		ctx := context.WithValue(r.Context(), DeviceContextKey, deviceID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is middleware that requires the shared admin secret
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.adminSecret == "" {
			respondWithError(w, http.StatusForbidden, "forbidden", "Admin endpoints are disabled", "", nil)
			return
		}

		provided := r.Header.Get("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.adminSecret)) != 1 {
			respondWithError(w, http.StatusForbidden, "forbidden", "Invalid admin secret", "", nil)
			return
		}

		next(w, r)
	}
}

// RateLimit throttles requests per device, falling back to the client IP for
// unauthenticated endpoints
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := DeviceIDFromContext(r.Context())
		if key == "" {
			key = security.GetClientIP(r)
		}

		if !m.limiter.Allow(key) {
			respondWithError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", "", nil)
			return
		}

		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// DeviceIDFromContext retrieves the authenticated device ID from the request
// context, or "" when the request is unauthenticated
func DeviceIDFromContext(ctx context.Context) string {
	deviceID, ok := ctx.Value(DeviceContextKey).(string)
	if !ok {
		return ""
	}
	return deviceID
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
