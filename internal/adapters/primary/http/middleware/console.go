package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lorrc/voice2ticket/internal/auth"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the key used to store console claims in the request context.
	ClaimsKey contextKey = "consoleClaims"
	// ConsoleKey is the key used to store the bound console in the request context.
	ConsoleKey contextKey = "console"
)

// ConsoleLookup resolves a console ID to a live console, resuming consoles
// that are no longer held in memory.
type ConsoleLookup interface {
	Acquire(ctx context.Context, id string) (ports.Console, error)
}

// ConsoleAuth validates the console token and binds the request to its
// console. The token is read from the Authorization header, or from the
// token query parameter for websocket upgrades.
func ConsoleAuth(tm *auth.TokenManager, consoles ConsoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "Authorization header format must be Bearer {token}", "UNAUTHORIZED")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token", "UNAUTHORIZED")
				return
			}

			console, err := consoles.Acquire(r.Context(), claims.ConsoleID)
			if err != nil {
				if errors.Is(err, apperrors.ErrRateLimited) {
					w.Header().Set("Retry-After", "60")
					writeError(w, http.StatusTooManyRequests, "Too many consoles. Please try again later.", "RATE_LIMITED")
					return
				}
				writeError(w, http.StatusServiceUnavailable, "Console unavailable", "CONSOLE_UNAVAILABLE")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, ConsoleKey, console)
			ctx = logging.WithConsoleID(ctx, claims.ConsoleID)
			if session := console.Sessions().Current(); session != nil {
				ctx = logging.WithUserEmail(ctx, session.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		token := r.URL.Query().Get("token")
		return token, token != ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeUnauthorized(w http.ResponseWriter, message, code string) {
	writeError(w, http.StatusUnauthorized, message, code)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}

// GetClaims retrieves the console claims from the request context
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}

// GetConsole retrieves the bound console from the request context
func GetConsole(ctx context.Context) (ports.Console, bool) {
	console, ok := ctx.Value(ConsoleKey).(ports.Console)
	return console, ok && console != nil
}
