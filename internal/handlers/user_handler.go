package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
	"github.com/todayscomfort/backend/internal/session"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	sessions         session.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, sessions session.Store) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		sessions:         sessions,
	}
}

// RegisterUserRoutes registers profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetMyProfile)
	g.PUT("/profile", h.UpdateMyProfile)
	g.GET("/users/:uid", h.GetPublicProfile)
}

// GetMyProfile returns the caller's own profile with follow counts
func (h *UserHandler) GetMyProfile(c echo.Context) error {
	uid := middleware.UID(c)

	profile, err := h.userRepository.GetProfile(c.Request().Context(), uid)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followers, err := h.followRepository.GetFollowersCount(uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	following, err := h.followRepository.GetFollowingCount(uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"profile":         profile,
			"followers_count": followers,
			"following_count": following,
		},
	})
}

// UpdateMyProfile applies partial updates to the caller's profile. A nickname
// change moves the nickname claim transactionally; old comments keep the
// display name they snapshotted when posted. The session's cached profile is
// refreshed after any change.
func (h *UserHandler) UpdateMyProfile(c echo.Context) error {
	uid := middleware.UID(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.userRepository.GetProfile(c.Request().Context(), uid)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Nickname != "" && req.Nickname != profile.Nickname {
		if err := h.userRepository.RenameNickname(c.Request().Context(), uid, profile.Nickname, req.Nickname); err != nil {
			if err == repositories.ErrNicknameTaken {
				return echo.NewHTTPError(http.StatusConflict, "Nickname already taken")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		profile.Nickname = req.Nickname
	}

	if req.RealName != "" {
		profile.RealName = req.RealName
	}
	if req.BirthDate != "" {
		profile.BirthDate = req.BirthDate
	}
	if req.ProfileMessage != "" {
		profile.ProfileMessage = req.ProfileMessage
	}
	if req.ProfileImg != "" {
		profile.ProfileImg = req.ProfileImg
	}

	if err := h.userRepository.UpdateProfile(c.Request().Context(), profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.sessions.SaveProfile(c.Request().Context(), profile); err != nil {
		// The store remains authoritative; a stale session cache only
		// affects cached reads until the next sign-in.
		c.Logger().Warnf("Failed to refresh session profile for %s: %v", uid, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"profile": profile,
		},
	})
}

// GetPublicProfile returns another user's public view with follow state
func (h *UserHandler) GetPublicProfile(c echo.Context) error {
	uid := middleware.UID(c)
	targetUID := c.Param("uid")

	profile, err := h.userRepository.GetProfile(c.Request().Context(), targetUID)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followers, err := h.followRepository.GetFollowersCount(targetUID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing := false
	if uid != "" && uid != targetUID {
		isFollowing, err = h.followRepository.IsFollowing(uid, targetUID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"profile":         profile.ToPublic(),
			"followers_count": followers,
			"is_following":    isFollowing,
		},
	})
}
