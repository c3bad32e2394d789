package session

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/repository"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

const (
	// CookieName carries the opaque session id.
	CookieName = "warbler_session"
	// TokenHeader carries the anti-forgery token on state-changing requests;
	// form posts may send it as the "token" field instead.
	TokenHeader = "X-Warbler-Token"
	tokenField  = "token"

	userKey       = "current_user"
	sessionCtxKey = "current_session"
)

// Middleware resolves the inbound session cookie to a user exactly once per
// request, before any handler logic runs. Handlers downstream see either an
// anonymous request or an authenticated one, never an unresolved cookie.
type Middleware struct {
	store        Store
	users        repository.UserRepository
	cookieMaxAge int // seconds
	secureCookie bool
}

// NewMiddleware creates the session middleware.
func NewMiddleware(store Store, users repository.UserRepository, cookieMaxAge int, secureCookie bool) *Middleware {
	return &Middleware{
		store:        store,
		users:        users,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// CurrentUser resolves the session cookie, if any, and stores the current
// user and session in the request context. A session whose user no longer
// exists is destroyed and the request proceeds anonymously.
func (m *Middleware) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		sess, err := m.store.Get(ctx, id)
		if err != nil {
			m.clearCookie(c)
			c.Next()
			return
		}

		user, err := m.users.GetByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				_ = m.store.Delete(ctx, sess.ID)
				m.clearCookie(c)
				c.Next()
				return
			}
			logger := pkglog.Ctx(ctx)
			logger.Error().Err(err).Msg("failed to resolve session user")
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Set(sessionCtxKey, sess)
		c.Set(pkglog.FieldUserID, user.ID)
		c.Set(pkglog.FieldUsername, user.Username)

		c.Next()
	}
}

// RequireAuth aborts with 401 unless CurrentUser resolved an authenticated
// user.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "access unauthorized",
			})
			return
		}
		c.Next()
	}
}

// RequireToken aborts with 401 unless the request carries the session's
// anti-forgery token. Applied to every state-mutating route.
func (m *Middleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := From(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "access unauthorized",
			})
			return
		}

		token := c.GetHeader(TokenHeader)
		if token == "" {
			token = c.PostForm(tokenField)
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(sess.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or invalid anti-forgery token",
			})
			return
		}
		c.Next()
	}
}

// Issue creates a session for userID and sets the cookie.
func (m *Middleware) Issue(c *gin.Context, userID uint) (*Session, error) {
	sess, err := m.store.Create(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, sess.ID, m.cookieMaxAge, "/", "", m.secureCookie, true)
	return sess, nil
}

// Clear destroys the current session, if any, and expires the cookie.
func (m *Middleware) Clear(c *gin.Context) {
	if sess := From(c); sess != nil {
		_ = m.store.Delete(c.Request.Context(), sess.ID)
	}
	m.clearCookie(c)
}

func (m *Middleware) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secureCookie, true)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// From returns the resolved session, or nil for anonymous requests.
func From(c *gin.Context) *Session {
	if v, ok := c.Get(sessionCtxKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return nil
}
