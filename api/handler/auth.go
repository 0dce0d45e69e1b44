package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planhub/backend/api/transport"
	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/internal/middleware"
	"github.com/planhub/backend/internal/oauth"
	"github.com/planhub/backend/pkg/httpcontext"
	authUC "github.com/planhub/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc          *authUC.UseCase
	oauth       *oauth.Client
	successURL  string
	failureURL  string
}

func NewAuthHandler(uc *authUC.UseCase, oauthClient *oauth.Client, adapter *httpcontext.Adapter, logger *zap.Logger, successURL, failureURL string) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		oauth:       oauthClient,
		successURL:  successURL,
		failureURL:  failureURL,
	}
}

// @Summary Redirect to the provider's consent screen
// @Tags auth
// @Router /api/v1/auth/{provider} [get]
func (h *AuthHandler) Begin(ctx *fasthttp.RequestCtx) {
	provider, _ := ctx.UserValue("provider").(string)

	authorizeURL, err := h.oauth.AuthorizeURL(provider, uuid.NewString())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Redirect(authorizeURL, fasthttp.StatusFound)
}

// @Summary Exchange the provider callback for a session token
// @Tags auth
// @Router /api/v1/auth/{provider}/callback [get]
func (h *AuthHandler) Callback(ctx *fasthttp.RequestCtx) {
	provider, _ := ctx.UserValue("provider").(string)
	code := string(ctx.QueryArgs().Peek("code"))

	profile, err := h.oauth.Exchange(provider, code)
	if err != nil {
		h.logger.Warn("provider exchange failed", zap.String("provider", provider), zap.Error(err))
		ctx.Redirect(h.failureURL, fasthttp.StatusFound)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	signed, _, err := h.uc.Login(stdCtx, profile)
	if err != nil {
		h.logger.Warn("provider login failed", zap.String("provider", provider), zap.Error(err))
		ctx.Redirect(h.failureURL, fasthttp.StatusFound)
		return
	}

	ctx.Redirect(h.successURL+"?token="+signed, fasthttp.StatusFound)
}

// @Summary Return the live account behind the bearer token
// @Tags auth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	raw := middleware.ExtractToken(ctx)
	if raw == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing token"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	claims, err := h.uc.Authenticate(stdCtx, raw)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	// The claim is a point-in-time snapshot; answer with live data.
	user, err := h.uc.CurrentUser(stdCtx, claims)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Verify the presented token and return its claims
// @Tags auth
// @Router /api/v1/auth/verify [get]
func (h *AuthHandler) Verify(ctx *fasthttp.RequestCtx) {
	raw := middleware.ExtractToken(ctx)
	if raw == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing token"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	claims, err := h.uc.Authenticate(stdCtx, raw)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"id":       claims.ID,
		"username": claims.Username,
		"email":    claims.Email,
	})
}

// @Summary Revoke the presented token
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	raw := middleware.ExtractToken(ctx)
	if raw == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing token"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, raw); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "session closed"})
}
