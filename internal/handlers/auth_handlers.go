package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,notblank,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"max=255"`
}

// Register handles POST /v1/auth/register. New accounts are always customers.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), auth.Registration{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  http.StatusCreated,
		"message": "Registration successful",
		"user":    user,
	})
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login. The token is returned in the body and
// also set as an HttpOnly cookie.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, session.Token, int(h.Tokens.TTL().Seconds()), "/", "", h.Cookie.Secure, true)

	ok(c, gin.H{
		"message":  "Login successful",
		"userName": session.User.DisplayName(),
		"userRole": session.User.Role,
		"token":    session.Token,
	})
}

// Logout handles POST /v1/auth/logout.
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, "", -1, "/", "", h.Cookie.Secure, true)
	ok(c, gin.H{"message": "Logged out"})
}

// DemoUsers handles GET /v1/auth/demo-users. It only lists anything when the
// server seeded demo accounts.
func (h *Handlers) DemoUsers(c *gin.Context) {
	if len(h.DemoAccounts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "Demo accounts are disabled"})
		return
	}
	ok(c, gin.H{"users": h.DemoAccounts})
}
