package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shiptrack-graphql/internal/auth"
	"shiptrack-graphql/internal/logging"
	"shiptrack-graphql/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthConfig controls bearer token verification. Token issuance happens
// in a separate identity service; this server only verifies signatures and
// claims.
type JWTAuthConfig struct {
	Secret    string
	Issuer    string
	ClockSkew time.Duration
}

// identityClaims is the claim set issued by the identity service.
type identityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware verifies Bearer tokens and attaches the caller identity
// to the request context. Requests without an Authorization header pass
// through anonymously; the resolver guards reject them with an
// UNAUTHENTICATED error so clients get a well-formed GraphQL response.
// Requests carrying a malformed or invalid token are rejected with 401.
func JWTAuthMiddleware(cfg JWTAuthConfig, logger *logging.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt auth secret not configured")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = 2 * time.Minute
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &identityClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, keyFunc)
			if err != nil || !token.Valid {
				if logger != nil {
					reqLogger := logging.FromContext(r.Context())
					reqLogger.Warn("bearer token validation failed",
						slog.Any("error", err),
						slog.String("remote_addr", r.RemoteAddr),
					)
				}
				writeUnauthorized(w, "invalid token")
				return
			}

			role := model.Role(claims.Role)
			if claims.Subject == "" || !role.Valid() {
				if logger != nil {
					reqLogger := logging.FromContext(r.Context())
					reqLogger.Warn("bearer token carries unusable claims",
						slog.String("subject", claims.Subject),
						slog.String("role", claims.Role),
					)
				}
				writeUnauthorized(w, "invalid token claims")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

func bearerToken(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":"%s"}`, message)
}
