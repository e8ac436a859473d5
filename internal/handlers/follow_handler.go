package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
)

// FollowHandler handles HTTP requests related to follow relationships
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:uid/follow", h.Follow)
	g.DELETE("/users/:uid/follow", h.Unfollow)
	g.GET("/users/me/following", h.GetFollowing)
}

// Follow creates a follow relationship from the caller to the target user
func (h *FollowHandler) Follow(c echo.Context) error {
	uid := middleware.UID(c)
	targetUID := c.Param("uid")

	if targetUID == uid {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if _, err := h.userRepository.GetProfile(c.Request().Context(), targetUID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	following, err := h.followRepository.IsFollowing(uid, targetUID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if following {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{
		FollowerUID:  uid,
		FollowingUID: targetUID,
	}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Followed successfully",
	})
}

// Unfollow removes a follow relationship
func (h *FollowHandler) Unfollow(c echo.Context) error {
	uid := middleware.UID(c)
	targetUID := c.Param("uid")

	if err := h.followRepository.DeleteFollow(uid, targetUID); err != nil {
		if err.Error() == "follow relationship not found" {
			return echo.NewHTTPError(http.StatusNotFound, "You are not following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Unfollowed successfully",
	})
}

// GetFollowing returns the public profiles of everyone the caller follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	uid := middleware.UID(c)

	uids, err := h.followRepository.GetFollowingUIDs(uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profiles := make([]models.PublicProfile, 0, len(uids))
	for _, followedUID := range uids {
		profile, err := h.userRepository.GetProfile(c.Request().Context(), followedUID)
		if err != nil {
			// Profile may have been deleted after the follow was created
			continue
		}
		profiles = append(profiles, profile.ToPublic())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"following": profiles,
		},
	})
}
