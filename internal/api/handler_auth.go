package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/apperr"
	"silant-backend/internal/mw"
)

type tokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IssueToken handles POST /api/auth/token. Credentials may be sent as JSON
// or as a form.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperr.BadRequest("Malformed request.", err))
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(c *gin.Context) {
	u := mw.Actor(c)
	c.JSON(http.StatusOK, meResponse{ID: u.ID, Username: u.Username, FirstName: u.FirstName, Role: u.Role})
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
