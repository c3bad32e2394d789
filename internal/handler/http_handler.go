package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mgregerson/chirper-mg/internal/audit"
	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/service"
	"github.com/mgregerson/chirper-mg/internal/session"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
	"github.com/mgregerson/chirper-mg/pkg/response"
)

// HTTPHandler wires the HTTP routes to the service layer.
type HTTPHandler struct {
	users    service.UserService
	graph    service.GraphService
	warbles  service.WarbleService
	feed     service.FeedService
	sessions *session.Middleware
}

// NewHTTPHandler creates an HTTPHandler.
func NewHTTPHandler(
	users service.UserService,
	graph service.GraphService,
	warbles service.WarbleService,
	feed service.FeedService,
	sessions *session.Middleware,
) *HTTPHandler {
	return &HTTPHandler{
		users:    users,
		graph:    graph,
		warbles:  warbles,
		feed:     feed,
		sessions: sessions,
	}
}

// RegisterRoutes registers all routes on the engine.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.Use(noStore())
	r.Use(h.sessions.CurrentUser())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/signup", h.signup)
	r.POST("/login", h.login)
	r.POST("/logout", h.sessions.RequireAuth(), h.sessions.RequireToken(), h.logout)

	// The home route serves both states: the feed when authenticated, an
	// empty landing payload otherwise.
	r.GET("/", h.homeFeed)

	users := r.Group("/users", h.sessions.RequireAuth())
	{
		users.GET("", h.listUsers)
		// The static route must be registered alongside the param route; gin
		// resolves /users/profile before /users/:user_id.
		users.GET("/profile", h.ownProfile)
		users.POST("/profile", h.sessions.RequireToken(), h.updateProfile)
		users.POST("/delete", h.sessions.RequireToken(), h.deleteAccount)
		users.POST("/follow/:user_id", h.sessions.RequireToken(), h.follow)
		users.POST("/stop-following/:user_id", h.sessions.RequireToken(), h.unfollow)
		users.GET("/:user_id", h.userProfile)
		users.GET("/:user_id/following", h.userFollowing)
		users.GET("/:user_id/followers", h.userFollowers)
		users.GET("/:user_id/liked_messages", h.userLikedMessages)
	}

	messages := r.Group("/messages", h.sessions.RequireAuth())
	{
		messages.POST("/new", h.sessions.RequireToken(), h.postMessage)
		messages.GET("/:message_id", h.getMessage)
		messages.POST("/:message_id/delete", h.sessions.RequireToken(), h.deleteMessage)
		messages.POST("/:message_id/like", h.sessions.RequireToken(), h.likeMessage)
		messages.POST("/:message_id/unlike", h.sessions.RequireToken(), h.unlikeMessage)
	}
}

// noStore keeps authenticated pages out of shared caches.
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

func (h *HTTPHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionResponse is returned by signup and login so clients hold both the
// user and the anti-forgery token for later mutating requests.
type sessionResponse struct {
	User  domain.UserResponse `json:"user"`
	Token string              `json:"token"`
}

func (h *HTTPHandler) signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Signing up while logged in replaces the old session.
	if session.From(c) != nil {
		h.sessions.Clear(c)
	}

	user, err := h.users.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.Conflict(c, "username already taken")
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, "email already taken")
		default:
			logger := pkglog.Ctx(c.Request.Context())
			logger.Error().Err(err).Msg("signup failed")
			response.InternalError(c, "failed to create account")
		}
		return
	}

	sess, err := h.sessions.Issue(c, user.ID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to create session")
		response.InternalError(c, "failed to create session")
		return
	}

	response.Created(c, sessionResponse{User: user.ToResponse(), Token: sess.Token})
}

func (h *HTTPHandler) login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to log in")
		return
	}

	if session.From(c) != nil {
		h.sessions.Clear(c)
	}
	sess, err := h.sessions.Issue(c, user.ID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to create session")
		response.InternalError(c, "failed to create session")
		return
	}

	response.Success(c, sessionResponse{User: user.ToResponse(), Token: sess.Token})
}

func (h *HTTPHandler) logout(c *gin.Context) {
	user := session.UserFrom(c)
	h.sessions.Clear(c)
	audit.Log(c.Request.Context(), audit.ActionLogout, user.ID, "user logged out")
	response.Success(c, gin.H{"message": "logged out"})
}

func (h *HTTPHandler) homeFeed(c *gin.Context) {
	user := session.UserFrom(c)
	if user == nil {
		// Anonymous landing: no messages are queried or returned.
		response.Success(c, gin.H{
			"authenticated": false,
			"warbles":       []domain.WarbleResponse{},
		})
		return
	}

	warbles, err := h.feed.HomeFeed(c.Request.Context(), user.ID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load home feed")
		response.InternalError(c, "failed to load feed")
		return
	}

	response.Success(c, gin.H{
		"authenticated": true,
		"warbles":       domain.WarblesToResponses(warbles),
	})
}

func (h *HTTPHandler) listUsers(c *gin.Context) {
	q := c.Query("q")

	users, err := h.users.ListUsers(c.Request.Context(), q)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to list users")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, gin.H{"users": domain.UsersToResponses(users)})
}

func (h *HTTPHandler) ownProfile(c *gin.Context) {
	user := session.UserFrom(c)
	h.renderProfile(c, user.ID)
}

func (h *HTTPHandler) userProfile(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	h.renderProfile(c, userID)
}

func (h *HTTPHandler) renderProfile(c *gin.Context, userID uint) {
	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load profile")
		response.InternalError(c, "failed to load profile")
		return
	}

	warbles, err := h.warbles.ByAuthor(c.Request.Context(), userID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load warbles")
		response.InternalError(c, "failed to load profile")
		return
	}

	out := gin.H{
		"profile": profile,
		"warbles": domain.WarblesToResponses(warbles),
	}
	if viewer := session.UserFrom(c); viewer != nil && viewer.ID != userID {
		if following, err := h.graph.IsFollowing(c.Request.Context(), viewer.ID, userID); err == nil {
			out["is_following"] = following
		}
		if followedBy, err := h.graph.IsFollowedBy(c.Request.Context(), viewer.ID, userID); err == nil {
			out["follows_you"] = followedBy
		}
	}
	response.Success(c, out)
}

func (h *HTTPHandler) updateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := session.UserFrom(c)
	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.Unauthorized(c, "wrong password")
		case errors.Is(err, service.ErrUsernameExists):
			response.Conflict(c, "username already taken")
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, "email already taken")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			logger := pkglog.Ctx(c.Request.Context())
			logger.Error().Err(err).Msg("failed to update profile")
			response.InternalError(c, "failed to update profile")
		}
		return
	}

	response.Success(c, gin.H{"user": updated.ToResponse()})
}

func (h *HTTPHandler) deleteAccount(c *gin.Context) {
	user := session.UserFrom(c)

	if err := h.users.DeleteUser(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to delete account")
		response.InternalError(c, "failed to delete account")
		return
	}

	h.sessions.Clear(c)
	response.Success(c, gin.H{"message": "account deleted"})
}

func (h *HTTPHandler) follow(c *gin.Context) {
	targetID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	user := session.UserFrom(c)

	if err := h.graph.Follow(c.Request.Context(), user.ID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			response.BadRequest(c, "cannot follow yourself")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			logger := pkglog.Ctx(c.Request.Context())
			logger.Error().Err(err).Msg("failed to follow user")
			response.InternalError(c, "failed to follow user")
		}
		return
	}

	response.Success(c, gin.H{"following": true})
}

func (h *HTTPHandler) unfollow(c *gin.Context) {
	targetID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	user := session.UserFrom(c)

	if err := h.graph.Unfollow(c.Request.Context(), user.ID, targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to unfollow user")
		response.InternalError(c, "failed to unfollow user")
		return
	}

	response.Success(c, gin.H{"following": false})
}

func (h *HTTPHandler) userFollowing(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	users, err := h.graph.Following(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to list following")
		response.InternalError(c, "failed to list following")
		return
	}

	response.Success(c, gin.H{"users": domain.UsersToResponses(users)})
}

func (h *HTTPHandler) userFollowers(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	users, err := h.graph.Followers(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to list followers")
		response.InternalError(c, "failed to list followers")
		return
	}

	response.Success(c, gin.H{"users": domain.UsersToResponses(users)})
}

func (h *HTTPHandler) userLikedMessages(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	if _, err := h.users.GetUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load user")
		response.InternalError(c, "failed to list liked warbles")
		return
	}

	warbles, err := h.warbles.LikedBy(c.Request.Context(), userID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to list liked warbles")
		response.InternalError(c, "failed to list liked warbles")
		return
	}

	response.Success(c, gin.H{"warbles": domain.WarblesToResponses(warbles)})
}

func (h *HTTPHandler) postMessage(c *gin.Context) {
	var req domain.CreateWarbleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := session.UserFrom(c)
	warble, err := h.warbles.Post(c.Request.Context(), user.ID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			response.BadRequest(c, "warble text is empty")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to post warble")
		response.InternalError(c, "failed to post warble")
		return
	}

	warble.AuthorName = user.Username
	response.Created(c, gin.H{"warble": warble.ToResponse()})
}

func (h *HTTPHandler) getMessage(c *gin.Context) {
	warbleID, ok := h.pathID(c, "message_id")
	if !ok {
		return
	}

	warble, err := h.warbles.Get(c.Request.Context(), warbleID)
	if err != nil {
		if errors.Is(err, service.ErrWarbleNotFound) {
			response.NotFound(c, "warble not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load warble")
		response.InternalError(c, "failed to load warble")
		return
	}

	response.Success(c, gin.H{"warble": warble.ToResponse()})
}

func (h *HTTPHandler) deleteMessage(c *gin.Context) {
	warbleID, ok := h.pathID(c, "message_id")
	if !ok {
		return
	}
	user := session.UserFrom(c)

	if err := h.warbles.Delete(c.Request.Context(), user.ID, warbleID); err != nil {
		switch {
		case errors.Is(err, service.ErrWarbleNotFound):
			response.NotFound(c, "warble not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "only the author can delete a warble")
		default:
			logger := pkglog.Ctx(c.Request.Context())
			logger.Error().Err(err).Msg("failed to delete warble")
			response.InternalError(c, "failed to delete warble")
		}
		return
	}

	response.Success(c, gin.H{"message": "warble deleted"})
}

func (h *HTTPHandler) likeMessage(c *gin.Context) {
	warbleID, ok := h.pathID(c, "message_id")
	if !ok {
		return
	}
	user := session.UserFrom(c)

	if err := h.warbles.Like(c.Request.Context(), user.ID, warbleID); err != nil {
		switch {
		case errors.Is(err, service.ErrWarbleNotFound):
			response.NotFound(c, "warble not found")
		case errors.Is(err, service.ErrSelfLike):
			response.BadRequest(c, "cannot like your own warble")
		default:
			logger := pkglog.Ctx(c.Request.Context())
			logger.Error().Err(err).Msg("failed to like warble")
			response.InternalError(c, "failed to like warble")
		}
		return
	}

	if h.redirectIfRequested(c) {
		return
	}
	response.Success(c, gin.H{"liked": true})
}

func (h *HTTPHandler) unlikeMessage(c *gin.Context) {
	warbleID, ok := h.pathID(c, "message_id")
	if !ok {
		return
	}
	user := session.UserFrom(c)

	if err := h.warbles.Unlike(c.Request.Context(), user.ID, warbleID); err != nil {
		if errors.Is(err, service.ErrWarbleNotFound) {
			response.NotFound(c, "warble not found")
			return
		}
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to unlike warble")
		response.InternalError(c, "failed to unlike warble")
		return
	}

	if h.redirectIfRequested(c) {
		return
	}
	response.Success(c, gin.H{"liked": false})
}

// redirectIfRequested issues a 302 back to a caller-supplied local path.
// Absolute URLs, protocol-relative paths, and backslash variants (browsers
// normalize "/\" to "//") are refused so the endpoint cannot be used as an
// open redirect.
func (h *HTTPHandler) redirectIfRequested(c *gin.Context) bool {
	target := c.Query("redirect")
	if target == "" {
		target = c.PostForm("redirect")
	}
	if target == "" {
		return false
	}
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.ContainsRune(target, '\\') {
		response.BadRequest(c, "redirect must be a local path")
		return true
	}
	c.Redirect(http.StatusFound, target)
	return true
}

func (h *HTTPHandler) pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
