package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medportal/portal-api/internal/handler"
	"github.com/medportal/portal-api/internal/middleware"
	"github.com/medportal/portal-api/internal/model"
	authService "github.com/medportal/portal-api/internal/service/auth"
	apperrors "github.com/medportal/portal-api/pkg/errors"
)

type Handler struct {
	service    *authService.Service
	cookieName string
	cookieTTL  int
}

func NewHandler(service *authService.Service, cookieName string, cookieTTLSeconds int) *Handler {
	return &Handler{
		service:    service,
		cookieName: cookieName,
		cookieTTL:  cookieTTLSeconds,
	}
}

// RegisterRoutes wires the unauthenticated endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes wires the endpoints that need a resolved identity.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/doctors", h.ListDoctors)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("invalid email address"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"message":  "registration successful, please login",
	}))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperrors.Validation("username and password are required"))
		return
	}

	sess, tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, sess.ID, h.cookieTTL, "/", "", false, true)

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"identity":     sess.Identity,
		"access_token": tokens.AccessToken,
		"token_type":   tokens.TokenType,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	if sessionID := middleware.SessionID(c); sessionID != "" {
		if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "logged out",
	}))
}

// ListDoctors feeds the booking form's doctor dropdown.
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}
