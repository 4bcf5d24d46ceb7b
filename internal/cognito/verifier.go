package cognito

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified claim set of a Cognito-issued token.
type Claims struct {
	Email    string   `json:"email"`
	Groups   []string `json:"cognito:groups"`
	TokenUse string   `json:"token_use"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against the user pool's key set, issuer
// and app client id. All verification failures beyond structure and key
// lookup collapse to ErrInvalidToken; the sub-reason is only logged.
type Verifier struct {
	keys     *KeyCache
	issuer   string
	audience string
	leeway   time.Duration
	logger   *slog.Logger
}

func NewVerifier(keys *KeyCache, issuer, audience string, leeway time.Duration, logger *slog.Logger) *Verifier {
	return &Verifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
		logger:   logger.With(slog.String("component", "token_verifier")),
	}
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	// Structural parse only, to get at the kid before touching the key set.
	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		v.logger.Warn("structurally invalid token", slog.String("error", err.Error()))
		return nil, ErrMalformedToken
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		v.logger.Warn("token header missing kid")
		return nil, ErrMalformedToken
	}

	if _, err := v.keys.Lookup(ctx, kid); err != nil {
		v.logger.Warn("signing key lookup failed", slog.String("kid", kid), slog.String("error", err.Error()))
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keys.Keyfunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			v.logger.Warn("malformed token", slog.String("error", err.Error()))
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			v.logger.Warn("expired token", slog.String("sub", claims.Subject))
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			v.logger.Warn("issuer mismatch", slog.String("issuer", claims.Issuer))
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			v.logger.Warn("audience mismatch", slog.Any("audience", claims.Audience))
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			v.logger.Warn("signature verification failed", slog.String("kid", kid))
		default:
			v.logger.Warn("token verification failed", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
