// Package accounts implements the authentication and profile HTTP handlers:
// the two-step login flow, logout, the caller's own profile, and the role
// metadata listing. All session state lives in the JWT; the only server-side
// login state is the active code row backing the second factor.
package accounts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/audit"
	"github.com/toolvault/toolvault/internal/auth"
	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/middleware"
	"github.com/toolvault/toolvault/internal/telemetry"
	"github.com/toolvault/toolvault/internal/validation"
)

// AuthHandlers holds the login-flow endpoints.
type AuthHandlers struct {
	login *auth.LoginService
}

// NewAuthHandlers creates handlers backed by the given login service.
func NewAuthHandlers(login *auth.LoginService) *AuthHandlers {
	return &AuthHandlers{login: login}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// Login handles POST /api/v1/auth/login. With two-factor disabled a valid
// password returns a token directly; with it enabled the response reports
// awaiting_code and a code is emailed out of band.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.login.SubmitCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			telemetry.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()

	if result.State == auth.StateAwaitingCode {
		telemetry.TwoFactorChallengesTotal.WithLabelValues("issued").Inc()
		c.JSON(http.StatusOK, gin.H{"state": result.State})
		return
	}

	userID := result.Profile.ID
	middleware.StageAuditEvent(c, audit.Event{
		UserID:       &userID,
		Action:       models.ActionLogin,
		ResourceType: models.ResourceAuth,
		Details:      map[string]interface{}{"has_2fa": false},
	})
	c.JSON(http.StatusOK, gin.H{
		"state":   result.State,
		"token":   result.Token,
		"profile": result.Profile,
	})
}

// VerifyCode handles POST /api/v1/auth/verify, the second login step.
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and code are required"})
		return
	}

	result, err := h.login.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		telemetry.TwoFactorChallengesTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, auth.ErrInvalidCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
			return
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	telemetry.TwoFactorChallengesTotal.WithLabelValues("verified").Inc()

	userID := result.Profile.ID
	middleware.StageAuditEvent(c, audit.Event{
		UserID:       &userID,
		Action:       models.ActionLogin,
		ResourceType: models.ResourceAuth,
		Details:      map[string]interface{}{"has_2fa": true},
	})
	c.JSON(http.StatusOK, gin.H{
		"state":   result.State,
		"token":   result.Token,
		"profile": result.Profile,
	})
}

// ResendCode handles POST /api/v1/auth/resend. The previous code is consumed
// and a fresh one issued; valid only while a two-factor login is in progress.
func (h *AuthHandlers) ResendCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.login.ResendCode(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrTwoFactorNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "No two-factor login in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend code"})
		return
	}

	telemetry.TwoFactorChallengesTotal.WithLabelValues("issued").Inc()
	c.JSON(http.StatusOK, gin.H{"state": auth.StateAwaitingCode})
}

// Cancel handles POST /api/v1/auth/cancel, abandoning an in-progress
// two-factor login. Cancelling when nothing is pending is a no-op.
func (h *AuthHandlers) Cancel(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.login.Cancel(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": auth.StateAwaitingCredentials})
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so logout is
// an audit event; clients discard the token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	middleware.StageAuditEvent(c, audit.Event{
		Action:       models.ActionLogout,
		ResourceType: models.ResourceAuth,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
