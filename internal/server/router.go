// Package server exposes the authentication operations over HTTP.
package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"authplane/internal/audit"
	"authplane/internal/telemetry"
)

// Deps is everything the router needs wired. Audit, Emitter, Metrics,
// and TracerProvider may be nil; the affected concern degrades to a
// no-op.
type Deps struct {
	Auth           AuthService
	Sessions       SessionService
	Mfa            MfaService
	Audit          audit.AuditLogger
	Emitter        telemetry.EventEmitter
	Metrics        *Metrics
	TracerProvider trace.TracerProvider
}

// NewRouter builds the gin engine with all routes mounted.
func NewRouter(d Deps) *gin.Engine {
	h := &Handler{
		auth:     d.Auth,
		sessions: d.Sessions,
		mfa:      d.Mfa,
		audit:    d.Audit,
		emitter:  d.Emitter,
		metrics:  d.Metrics,
	}
	if h.audit == nil {
		h.audit = audit.NewLogger(nil)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if d.TracerProvider != nil {
		r.Use(Tracing(d.TracerProvider))
	}

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1/auth")
	v1.POST("/login", h.Login)
	v1.POST("/mfa/verify", h.VerifyMfa)

	authed := v1.Group("", RequireToken())
	authed.POST("/logout", h.Logout)
	authed.GET("/session", h.GetSession)
	authed.POST("/session/renew", h.RenewSession)
	authed.GET("/session/others", h.GetOtherSessions)
	authed.POST("/session/invalidate-others", h.InvalidateOthers)
	authed.POST("/mfa/setup", h.SetupMfa)
	authed.POST("/mfa/disable", h.DisableMfa)
	authed.POST("/mfa/recovery/reset", h.ResetRecoveryCodes)

	return r
}
