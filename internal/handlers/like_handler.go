package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/interaction"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	feedRepository repositories.FeedRepository
	registry       *interaction.Registry
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(feedRepo repositories.FeedRepository, registry *interaction.Registry) *LikeHandler {
	return &LikeHandler{
		feedRepository: feedRepo,
		registry:       registry,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/feeds/:id/like", h.ToggleLike)
	g.GET("/feeds/:id/likes", h.GetLikeState)
}

// ToggleLike flips the caller's like on a feed item. If the caller has a live
// stream mounted for the item, the toggle goes through that session so the
// optimistic update (and any rollback) reaches their stream immediately.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	// Verify feed item exists
	if _, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	if sess := h.registry.Get(itemID, uid); sess != nil {
		if err := sess.ToggleLike(c.Request().Context(), uid); err != nil {
			return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
		}
		state, _ := sess.State()
		return c.JSON(http.StatusOK, state)
	}

	likes, err := h.feedRepository.GetLikes(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	liked := false
	for _, l := range likes {
		if l.UID == uid {
			liked = true
			break
		}
	}

	if liked {
		err = h.feedRepository.RemoveLike(c.Request().Context(), itemID, uid)
	} else {
		err = h.feedRepository.SetLike(c.Request().Context(), itemID, uid)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	count := len(likes) + 1
	if liked {
		count = len(likes) - 1
	}
	return c.JSON(http.StatusOK, interaction.LikeState{Count: count, Liked: !liked})
}

// GetLikeState returns the like count and whether the caller likes the item
func (h *LikeHandler) GetLikeState(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	// Verify feed item exists
	if _, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	likes, err := h.feedRepository.GetLikes(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	liked := false
	for _, l := range likes {
		if l.UID == uid {
			liked = true
			break
		}
	}

	return c.JSON(http.StatusOK, interaction.LikeState{Count: len(likes), Liked: liked})
}
