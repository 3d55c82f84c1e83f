package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"haul/internal/auth"
	"haul/internal/domain"
	"haul/internal/service"
)

const profileKey = "profile"

// ProfileResolver loads the profile of an authenticated actor.
type ProfileResolver interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

// Authenticate verifies the bearer token, loads the caller's profile and
// stores it in the gin context. Inactive callers may read but not mutate.
func Authenticate(authenticator auth.Authenticator, profiles ProfileResolver, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "authentication token not provided")
			return
		}

		actorID, err := authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abort(c, http.StatusUnauthorized, "token expired")
			case errors.Is(err, auth.ErrRevokedToken):
				abort(c, http.StatusUnauthorized, "token revoked")
			default:
				abort(c, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), actorID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				abort(c, http.StatusNotFound, "user not found")
			case errors.Is(err, service.ErrStoreUnavailable):
				abort(c, http.StatusServiceUnavailable, "service temporarily unavailable, please retry")
			default:
				log.WithError(err).WithField("user_id", actorID).Error("failed to load profile")
				abort(c, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		if !profile.IsActive() && isMutation(c.Request.Method) {
			abort(c, http.StatusForbidden, "account is inactive")
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// RequireRole rejects callers whose profile does not have role.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := ProfileFrom(c)
		if profile == nil || profile.Role != role {
			abort(c, http.StatusForbidden, "access restricted to "+string(role)+"s")
			return
		}
		c.Next()
	}
}

// ProfileFrom returns the profile stored by Authenticate, or nil.
func ProfileFrom(c *gin.Context) *domain.Profile {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil
	}
	profile, _ := v.(*domain.Profile)
	return profile
}

// SetProfile stores profile in the gin context the way Authenticate does.
func SetProfile(c *gin.Context, profile *domain.Profile) {
	c.Set(profileKey, profile)
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}
