package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/service"
)

const actorContextKey = "actor"

// TokenVerifier 校验 Bearer 令牌并返回对应的管理员。
type TokenVerifier interface {
	Authenticate(token string) (*service.Actor, error)
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RequireAdmin 是按路由挂载的守卫，未通过认证时直接返回 401，不会进入后续处理。
func RequireAdmin(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			respondError(c, http.StatusUnauthorized, "Access token required")
			return
		}

		actor, err := verifier.Authenticate(token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				respondError(c, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "Authentication failed")
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentActor(c *gin.Context) (*service.Actor, bool) {
	value, ok := c.Get(actorContextKey)
	if !ok {
		return nil, false
	}
	actor, ok := value.(*service.Actor)
	return actor, ok && actor != nil
}

// Login exchanges credentials for a bearer token.
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	token, user, err := a.auth.Login(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		a.respondServiceError(c, err, "User not found", "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Me returns the authenticated actor.
func (a *API) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Access token required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": actor})
}
