package cognito

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/avaldes/remarket-api/internal/config"
)

// HostedUI drives the authorization-code flow against the Cognito hosted UI.
// The exchanged id token still goes through the Verifier before anything
// trusts it.
type HostedUI struct {
	config *oauth2.Config
}

// TokenSet is the result of a code exchange.
type TokenSet struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func NewHostedUI(cfg config.CognitoConfig) *HostedUI {
	base := "https://" + cfg.Domain
	return &HostedUI{
		config: &oauth2.Config{
			ClientID:     cfg.AppClientID,
			ClientSecret: cfg.AppClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/oauth2/authorize",
				TokenURL: base + "/oauth2/token",
			},
		},
	}
}

func (h *HostedUI) ConsentURL(state string) string {
	return h.config.AuthCodeURL(state)
}

func (h *HostedUI) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("token response missing id_token")
	}

	expiresIn, _ := token.Extra("expires_in").(float64)

	return &TokenSet{
		IDToken:      idToken,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int64(expiresIn),
	}, nil
}

// GenerateState produces a random state nonce for the login redirect.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
