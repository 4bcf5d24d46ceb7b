package cognito

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// KeyCache holds the user pool's public signing keys. The underlying jwkset
// HTTP storage fetches the JWKS document lazily on first use (a single
// in-flight fetch even under concurrent misses) and refreshes it on a fixed
// interval, so a rotated key is picked up within one refresh period.
type KeyCache struct {
	storage jwkset.Storage
	keyfunc keyfunc.Keyfunc
}

func NewKeyCache(jwksURL string, refreshInterval, httpTimeout time.Duration, logger *slog.Logger) (*KeyCache, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:          &http.Client{Timeout: httpTimeout},
		RefreshInterval: refreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("jwks refresh failed",
				slog.String("url", jwksURL),
				slog.String("error", err.Error()),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create jwks storage: %w", err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("failed to create keyfunc: %w", err)
	}

	return &KeyCache{storage: storage, keyfunc: kf}, nil
}

// Lookup reads a single key by kid from the cached set.
func (k *KeyCache) Lookup(ctx context.Context, kid string) (jwkset.JWK, error) {
	jwk, err := k.storage.KeyRead(ctx, kid)
	if err != nil {
		if errors.Is(err, jwkset.ErrKeyNotFound) {
			return jwkset.JWK{}, fmt.Errorf("kid %q: %w", kid, ErrUnknownSigningKey)
		}
		return jwkset.JWK{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return jwk, nil
}

// SigningKeys returns the full cached key set, fetching it on first call.
func (k *KeyCache) SigningKeys(ctx context.Context) ([]jwkset.JWK, error) {
	keys, err := k.storage.KeyReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return keys, nil
}

// Keyfunc resolves a parsed token's kid to its verification key.
func (k *KeyCache) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return k.keyfunc.KeyfuncCtx(ctx)
}
