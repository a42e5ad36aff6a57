package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/response"
	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

const callerKey = "caller"

// Cookies names the cookies the API reads and writes.
type Cookies struct {
	Session  string
	Guest    string
	Secure   bool
	GuestTTL time.Duration
}

func DefaultCookies() Cookies {
	return Cookies{Session: "session", Guest: "guest_id", Secure: true, GuestTTL: 30 * 24 * time.Hour}
}

// SetSession writes the HttpOnly session cookie; maxAge <= 0 expires it.
func (ck Cookies) SetSession(c *gin.Context, value string, maxAge time.Duration) {
	ck.set(c, ck.Session, value, maxAge)
}

func (ck Cookies) set(c *gin.Context, name, value string, maxAge time.Duration) {
	secs := int(maxAge / time.Second)
	if maxAge <= 0 {
		secs = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   secs,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type SessionMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
	cookies  Cookies
}

func NewSessionMiddleware(log *logger.Logger, sessions services.SessionService, cookies Cookies) *SessionMiddleware {
	return &SessionMiddleware{
		log:      log.With("Middleware", "SessionMiddleware"),
		sessions: sessions,
		cookies:  cookies,
	}
}

var errSessionUnavailable = errors.New("Sign-in is temporarily unavailable. Please try again in a moment.")

// AttachCaller resolves the session cookie once per request. Requests
// without a valid session continue as guests, and a cookie that no longer
// resolves is expired.
func (sm *SessionMiddleware) AttachCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sm.cookies.Session)
		if token == "" {
			c.Next()
			return
		}
		caller, err := sm.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			sm.log.Error("session lookup failed", "error", err)
			response.RespondError(c, http.StatusServiceUnavailable, "session_unavailable", errSessionUnavailable)
			c.Abort()
			return
		}
		if caller == nil {
			sm.cookies.SetSession(c, "", 0)
			c.Next()
			return
		}
		c.Set(callerKey, caller)
		rd := requestData(c)
		rd.UserID, rd.SessionID = caller.UserID, caller.SessionID
		c.Next()
	}
}

// RequireCaller rejects guests with the unauthorized message.
func (sm *SessionMiddleware) RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerFrom(c) == nil {
			response.RespondAPIError(c, services.ToAPIError(services.ErrUnauthorized))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom returns the resolved caller, or nil for guests.
func CallerFrom(c *gin.Context) *services.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*services.Caller)
	return caller
}

func requestData(c *gin.Context) *ctxutil.RequestData {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd
	}
	rd := &ctxutil.RequestData{}
	c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
	return rd
}
