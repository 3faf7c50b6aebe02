package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/response"
)

type authService interface {
	RequestMagicLink(ctx context.Context, req models.MagicLinkRequest) error
	ConsumeMagicLink(ctx context.Context, req models.ConsumeMagicLinkRequest) (*models.SessionResponse, error)
	Me(ctx context.Context, userID string) (*models.UserInfo, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RequestMagicLink godoc
// @Summary Request a sign-in link
// @Description Sends a single-use magic link to the given email. The response is the same whether or not an account exists.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.MagicLinkRequest true "Magic link payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req models.MagicLinkRequest
	if !bindJSON(c, &req, "invalid magic link payload") {
		return
	}

	if err := h.service.RequestMagicLink(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, gin.H{"message": "if the address is valid a sign-in link is on its way"}, nil)
}

// ConsumeMagicLink godoc
// @Summary Exchange a magic link for a session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ConsumeMagicLinkRequest true "Magic link token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/magic-link/consume [post]
func (h *AuthHandler) ConsumeMagicLink(c *gin.Context) {
	var req models.ConsumeMagicLinkRequest
	if !bindJSON(c, &req, "invalid magic link token") {
		return
	}

	session, err := h.service.ConsumeMagicLink(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, session, nil)
}

// Me godoc
// @Summary Current user profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info, err := h.service.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, info, nil)
}
