package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"authplane/internal/audit"
	authsvc "authplane/internal/auth/service"
	"authplane/internal/errdefs"
	mfasvc "authplane/internal/mfa/service"
	"authplane/internal/security"
	sessiondomain "authplane/internal/session/domain"
	"authplane/internal/telemetry"
	userdomain "authplane/internal/user/domain"
)

// AuthService is the login surface the handlers need.
type AuthService interface {
	Login(ctx context.Context, creds authsvc.Credentials) (*authsvc.LoginOutput, error)
	VerifyMfa(ctx context.Context, sessionToken, code, ipAddress, userAgent string) (string, error)
}

// SessionService is the session surface the handlers need.
type SessionService interface {
	Get(ctx context.Context, token string) (*sessiondomain.Session, error)
	GetUser(ctx context.Context, token string, allowRestricted bool) (*userdomain.User, error)
	Renew(ctx context.Context, oldToken, userID, ipAddress, userAgent string) (string, error)
	GetOtherSessions(ctx context.Context, userID, currentToken string) (*sessiondomain.Session, []*sessiondomain.Session, error)
	Invalidate(ctx context.Context, token string) error
	InvalidateOthers(ctx context.Context, token, userID string) ([]*sessiondomain.Session, error)
}

// MfaService is the MFA lifecycle surface the handlers need.
type MfaService interface {
	Setup(ctx context.Context, user *userdomain.User) (*mfasvc.SetupOutput, error)
	Disable(ctx context.Context, userID string) error
	ResetRecoveryCodes(ctx context.Context, user *userdomain.User) ([]string, error)
}

// Handler carries the wired services for the HTTP routes.
type Handler struct {
	auth     AuthService
	sessions SessionService
	mfa      MfaService
	audit    audit.AuditLogger
	emitter  telemetry.EventEmitter
	metrics  *Metrics
}

type loginRequest struct {
	NameOrEmail string `json:"name_or_email"`
	Password    string `json:"password"`
}

type verifyMfaRequest struct {
	SessionToken string `json:"session_token"`
	Code         string `json:"code"`
}

type userIDRequest struct {
	UserID string `json:"user_id"`
}

// sessionView is the wire shape of a session record. Only the token
// hash ever leaves the service; cleartext tokens exist solely in
// login/renew responses.
type sessionView struct {
	TokenHash string    `json:"token_hash"`
	UserID    string    `json:"user_id"`
	Trust     string    `json:"trust"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func viewSession(s *sessiondomain.Session) sessionView {
	return sessionView{
		TokenHash: s.TokenHash,
		UserID:    s.UserID,
		Trust:     string(s.Trust),
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func viewSessions(list []*sessiondomain.Session) []sessionView {
	out := make([]sessionView, len(list))
	for i, s := range list {
		out[i] = viewSession(s)
	}
	return out
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	out, err := h.auth.Login(ctx, authsvc.Credentials{
		Identifier: req.NameOrEmail,
		Password:   req.Password,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		h.metrics.RecordLogin(ctx, "failure")
		h.audit.LogEvent(ctx, "", audit.ActionLoginFailure, "session", c.ClientIP(), "")
		telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
			EventType: audit.ActionLoginFailure,
			Source:    "http",
			CreatedAt: time.Now().UTC(),
		})
		writeError(c, err)
		return
	}

	sess, serr := h.sessions.Get(ctx, out.SessionToken)
	userID := ""
	if serr == nil {
		userID = sess.UserID
	}
	h.metrics.RecordLogin(ctx, "success")
	h.audit.LogEvent(ctx, userID, audit.ActionLogin, "session", c.ClientIP(), "")
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		UserID:           userID,
		SessionTokenHash: security.HashSessionToken(out.SessionToken),
		EventType:        audit.ActionLogin,
		Source:           "http",
		CreatedAt:        time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{
		"session_token": out.SessionToken,
		"needs_mfa":     out.NeedsMFA,
	})
}

func (h *Handler) VerifyMfa(c *gin.Context) {
	var req verifyMfaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	token, err := h.auth.VerifyMfa(ctx, req.SessionToken, req.Code, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.metrics.RecordMfa(ctx, "failure")
		writeError(c, err)
		return
	}

	sess, serr := h.sessions.Get(ctx, token)
	userID := ""
	if serr == nil {
		userID = sess.UserID
	}
	h.metrics.RecordMfa(ctx, "success")
	h.audit.LogEvent(ctx, userID, audit.ActionMfaVerify, "session", c.ClientIP(), "")
	telemetry.EmitAsync(h.emitter, ctx, &telemetry.Event{
		UserID:           userID,
		SessionTokenHash: security.HashSessionToken(token),
		EventType:        audit.ActionMfaVerify,
		Source:           "http",
		CreatedAt:        time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"session_token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	token := sessionToken(c)

	sess, err := h.sessions.Get(ctx, token)
	userID := ""
	if err == nil {
		userID = sess.UserID
	}
	if err := h.sessions.Invalidate(ctx, token); err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, userID, audit.ActionLogout, "session", c.ClientIP(), "")
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), sessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewSession(sess))
}

func (h *Handler) RenewSession(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	// Renewal always mints full trust, so a restricted session must not
	// reach it; that would skip the second factor.
	sess, err := h.sessions.Get(ctx, sessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.Restricted() {
		writeError(c, errdefs.ErrRestrictedSession)
		return
	}

	token, err := h.sessions.Renew(ctx, sessionToken(c), req.UserID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, req.UserID, audit.ActionSessionRenew, "session", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"session_token": token})
}

func (h *Handler) GetOtherSessions(c *gin.Context) {
	ctx := c.Request.Context()
	token := sessionToken(c)

	user, err := h.sessions.GetUser(ctx, token, false)
	if err != nil {
		writeError(c, err)
		return
	}
	current, others, err := h.sessions.GetOtherSessions(ctx, user.ID, token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current": viewSession(current),
		"others":  viewSessions(others),
	})
}

func (h *Handler) InvalidateOthers(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	invalidated, err := h.sessions.InvalidateOthers(ctx, sessionToken(c), req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, req.UserID, audit.ActionInvalidateOthers, "session", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"invalidated": viewSessions(invalidated)})
}

func (h *Handler) SetupMfa(c *gin.Context) {
	ctx := c.Request.Context()

	// Full trust required: a restricted session must not reconfigure the
	// factor it has yet to pass.
	user, err := h.sessions.GetUser(ctx, sessionToken(c), false)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := h.mfa.Setup(ctx, user)
	if err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, user.ID, audit.ActionMfaSetup, "mfa", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{
		"totp_secret":      out.TotpSecret,
		"provisioning_uri": out.ProvisioningURI,
		"recovery_codes":   out.RecoveryCodes,
	})
}

func (h *Handler) DisableMfa(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.resolveMatchingUser(c, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.mfa.Disable(ctx, user.ID); err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, user.ID, audit.ActionMfaDisable, "mfa", c.ClientIP(), "")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ResetRecoveryCodes(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.resolveMatchingUser(c, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	codes, err := h.mfa.ResetRecoveryCodes(ctx, user)
	if err != nil {
		writeError(c, err)
		return
	}
	h.audit.LogEvent(ctx, user.ID, audit.ActionRecoveryReset, "mfa", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"recovery_codes": codes})
}

// resolveMatchingUser resolves the caller from their full session and
// checks that the user id named in the request body is the caller.
func (h *Handler) resolveMatchingUser(c *gin.Context, userID string) (*userdomain.User, error) {
	user, err := h.sessions.GetUser(c.Request.Context(), sessionToken(c), false)
	if err != nil {
		return nil, err
	}
	if user.ID != userID {
		return nil, errdefs.ErrSessionUserMismatch
	}
	return user, nil
}
