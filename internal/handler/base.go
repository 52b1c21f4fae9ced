package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/medportal/portal-api/internal/middleware"
	"github.com/medportal/portal-api/internal/session"
)

// BaseHandler carries the pieces every workflow handler shares: the session
// store for flash messages and the redirect-after-mutation convention.
type BaseHandler struct {
	Sessions *session.Store
}

// FlashAndRedirect finishes a successful browser mutation: stash a one-shot
// message on the session and bounce to the canonical listing. Bearer-token
// callers have no session and get the message inline instead.
func (h *BaseHandler) FlashAndRedirect(c *gin.Context, message, location string, data interface{}) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusOK, &Response{Status: "success", Message: message, Data: data})
		return
	}

	if err := h.Sessions.SetFlash(c.Request.Context(), sessionID, message); err != nil {
		log.Error().Err(err).Msg("failed to set flash message")
	}
	c.Redirect(http.StatusSeeOther, location)
}

// PopFlash consumes the pending flash message, if any, for listing pages.
func (h *BaseHandler) PopFlash(c *gin.Context) string {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		return ""
	}

	flash, err := h.Sessions.PopFlash(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to pop flash message")
		return ""
	}
	return flash
}
