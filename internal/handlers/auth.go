package handlers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
)

// AuthHandler implements the hosted-UI login flow: consent URL, code
// callback, token response. Account rows are provisioned just-in-time on
// the first successful login.
type AuthHandler struct {
	hostedUI     HostedUIInterface
	verifier     TokenVerifierInterface
	userService  UserServiceInterface
	emailService EmailServiceInterface
	logger       *slog.Logger
	states       sync.Map
}

type stateData struct {
	expiresAt time.Time
}

func NewAuthHandler(
	hostedUI HostedUIInterface,
	verifier TokenVerifierInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	logger *slog.Logger,
) *AuthHandler {
	h := &AuthHandler{
		hostedUI:     hostedUI,
		verifier:     verifier,
		userService:  userService,
		emailService: emailService,
		logger:       logger.With(slog.String("component", "auth_handler")),
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		h.states.Range(func(key, value interface{}) bool {
			if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
				h.states.Delete(key)
			}
			return true
		})
	}
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	state, err := cognito.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL:   h.hostedUI.ConsentURL(state),
		State: state,
	})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	state := c.QueryParam("state")
	if state == "" {
		c.BadRequest("missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		c.Unauthorized("invalid or expired state")
		return
	}

	sdTyped, ok := sd.(stateData)
	if !ok || time.Now().After(sdTyped.expiresAt) {
		c.Unauthorized("state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		c.BadRequest("missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h.exchangeAndRespond(c, ctx, code)
}

// ExchangeCode is the API-client variant of Callback: the client receives
// the code on its own redirect URI and posts it here with the state.
func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	if req.State != "" {
		if _, ok := h.states.LoadAndDelete(req.State); !ok {
			c.Unauthorized("invalid or expired state")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h.exchangeAndRespond(c, ctx, req.Code)
}

func (h *AuthHandler) exchangeAndRespond(c *drift.Context, ctx context.Context, code string) {
	tokens, err := h.hostedUI.ExchangeCode(ctx, code)
	if err != nil {
		h.logger.Warn("code exchange failed", slog.String("error", err.Error()))
		c.Unauthorized("failed to exchange authorization code")
		return
	}

	claims, err := h.verifier.Verify(ctx, tokens.IDToken)
	if err != nil {
		if errors.Is(err, cognito.ErrUpstreamUnavailable) {
			c.BadGateway("token verification temporarily unavailable")
			return
		}
		c.Unauthorized("invalid id token")
		return
	}

	user, err := h.userService.ResolveOrCreate(ctx, claims)
	if err != nil {
		if errors.Is(err, services.ErrAccountBlocked) {
			c.Forbidden("account is blocked")
			return
		}
		h.logger.Error("identity resolution failed", slog.String("error", err.Error()))
		c.InternalServerError("failed to resolve account")
		return
	}

	// Freshly provisioned accounts wait for an admin; tell them by mail.
	if user.Status == models.StatusPending && time.Since(user.CreatedAt) < time.Minute {
		if err := h.emailService.SendWelcome(user.Email); err != nil {
			h.logger.Warn("welcome email failed", slog.String("error", err.Error()))
		}
	}

	_ = c.JSON(200, dto.TokenResponse{
		IDToken:      tokens.IDToken,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}
