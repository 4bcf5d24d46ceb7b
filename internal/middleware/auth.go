package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/authz"
	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
)

const UserKey = "current_user"

// TokenVerifier validates a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*cognito.Claims, error)
}

// IdentityResolver maps verified claims to a local account.
type IdentityResolver interface {
	ResolveStrict(ctx context.Context, claims *cognito.Claims) (*models.User, error)
}

// Auth verifies the bearer token, resolves the local account and stores it
// on the request context. Token failures are reported uniformly; account
// state failures get their own responses.
func Auth(verifier TokenVerifier, resolver IdentityResolver, logger *slog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		ctx := c.Request.Context()

		claims, err := verifier.Verify(ctx, parts[1])
		if err != nil {
			if errors.Is(err, cognito.ErrUpstreamUnavailable) {
				logger.Error("token verification unavailable", slog.String("error", err.Error()))
				c.BadGateway("token verification temporarily unavailable")
				return
			}
			c.Unauthorized("invalid or expired token")
			return
		}

		user, err := resolver.ResolveStrict(ctx, claims)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnregisteredUser):
				c.Forbidden("no account registered for this identity")
			case errors.Is(err, services.ErrAccountBlocked):
				c.Forbidden("account is blocked")
			case errors.Is(err, services.ErrAccountPending):
				c.Forbidden("account is pending activation")
			case errors.Is(err, cognito.ErrInvalidToken):
				c.Unauthorized("invalid or expired token")
			default:
				logger.Error("identity resolution failed", slog.String("error", err.Error()))
				c.InternalServerError("failed to resolve identity")
			}
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireAdmin gates a route group to ADMIN accounts. Must run after Auth.
func RequireAdmin(logger *slog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		user := GetUser(c)
		if user == nil {
			c.Unauthorized("authentication required")
			return
		}

		if err := authz.RequireAdmin(user); err != nil {
			var denial *authz.DenialError
			if errors.As(err, &denial) {
				logger.Warn("admin route denied",
					slog.Int64("user_id", denial.UserID),
					slog.String("require", denial.Require),
				)
			}
			c.Forbidden("admin access required")
			return
		}

		c.Next()
	}
}

func GetUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
