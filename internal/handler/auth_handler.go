package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"diary-backend/internal/auth"
	"diary-backend/internal/middleware"
	"diary-backend/internal/service"
	"diary-backend/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	cookies     CookieSettings
	log         *logrus.Entry
}

func NewAuthHandler(authService *service.AuthService, cookies CookieSettings, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		log:         log,
	}
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Login handles form-encoded username/password authentication
func (h *AuthHandler) Login(c *gin.Context) {
	result, err := h.authService.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, service.ErrCredentialInvalid) {
			h.log.WithError(err).Error("login failed")
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	h.cookies.deliver(c, result.Access, result.Refresh)
	c.JSON(http.StatusOK, result)
}

// GoogleLogin exchanges a Google ID token for a session
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.LoginOAuth2(c.Request.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOAuthDisabled):
			utils.ErrorResponse(c, http.StatusNotFound, "OAuth2 login is not enabled")
		case errors.Is(err, service.ErrCredentialInvalid):
			c.AbortWithStatus(http.StatusUnauthorized)
		default:
			h.log.WithError(err).Error("oauth2 login failed")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to login")
		}
		return
	}

	h.cookies.deliver(c, result.Access, result.Refresh)
	c.JSON(http.StatusOK, result)
}

// Reissue rotates the presented refresh token
func (h *AuthHandler) Reissue(c *gin.Context) {
	result, err := h.authService.Reissue(c.Request.Context(), middleware.RefreshToken(c.Request))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshMissing):
			c.String(http.StatusBadRequest, "refresh token null")
		case errors.Is(err, auth.ErrTokenExpired):
			c.String(http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenCategoryMismatch):
			c.String(http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrRefreshNotFound):
			c.String(http.StatusUnauthorized, "refresh token not found")
		default:
			h.log.WithError(err).Error("reissue failed")
			c.String(http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.cookies.deliver(c, result.Access, result.Refresh)
	c.JSON(http.StatusOK, result)
}

// Logout revokes the presented refresh token and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), middleware.RefreshToken(c.Request))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshMissing):
			c.String(http.StatusBadRequest, "refresh token null")
		case errors.Is(err, auth.ErrTokenExpired):
			c.String(http.StatusBadRequest, "refresh token expired")
		case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenCategoryMismatch):
			c.String(http.StatusBadRequest, "invalid refresh token")
		case errors.Is(err, service.ErrRefreshNotFound):
			c.String(http.StatusBadRequest, "refresh token not found")
		default:
			h.log.WithError(err).Error("logout failed")
			c.String(http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.cookies.clearRefresh(c)
	utils.MessageResponse(c, "Logged out successfully")
}

// Signup registers a new member
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateMember):
			utils.ErrorResponse(c, http.StatusConflict, "Username or nickname already in use")
		case errors.Is(err, service.ErrInvalidSignup):
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		default:
			h.log.WithError(err).Error("signup failed")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to sign up")
		}
		return
	}

	utils.SuccessResponse(c, member)
}
