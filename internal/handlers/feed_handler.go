package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/interaction"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
)

const fallbackAuthorName = "이름 없음"

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedRepository   repositories.FeedRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedRepo repositories.FeedRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		feedRepository:   feedRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.POST("/feeds", h.CreateFeedItem)
	g.GET("/feeds", h.GetFeed)
	g.GET("/feeds/:id", h.GetFeedItem)
	g.DELETE("/feeds/:id", h.DeleteFeedItem)
}

// CreateFeedItem posts a card to the shared feed. The author's display name
// and avatar are resolved from their profile at post time.
func (h *FeedHandler) CreateFeedItem(c echo.Context) error {
	uid := middleware.UID(c)

	var req models.CreateFeedItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authorName := fallbackAuthorName
	authorImg := ""
	if profile, err := h.userRepository.GetProfile(c.Request().Context(), uid); err == nil {
		if profile.Nickname != "" {
			authorName = profile.Nickname
		}
		authorImg = profile.ProfileImg
	}

	item := &models.FeedItem{
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		AuthorUID:  uid,
		AuthorName: authorName,
		AuthorImg:  authorImg,
	}

	if err := h.feedRepository.CreateFeedItem(c.Request().Context(), item); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, item)
}

// EnrichedFeedItem is a feed item with the viewer-specific aggregates attached
type EnrichedFeedItem struct {
	models.FeedItem
	LikesCount    int  `json:"likes_count"`
	IsLiked       bool `json:"is_liked"`
	CommentsCount int  `json:"comments_count"`
	IsFollowing   bool `json:"is_following"`
}

// GetFeed returns feed items newest first, enriched for the current viewer
func (h *FeedHandler) GetFeed(c echo.Context) error {
	uid := middleware.UID(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	skip := (page - 1) * limit

	items, err := h.feedRepository.GetAllFeedItems(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followingSet := make(map[string]bool)
	if uids, err := h.followRepository.GetFollowingUIDs(uid); err == nil {
		for _, f := range uids {
			followingSet[f] = true
		}
	}

	enriched := make([]EnrichedFeedItem, len(items))
	for i, item := range items {
		likesCount, isLiked := 0, false
		if likes, err := h.feedRepository.GetLikes(c.Request().Context(), item.ID); err == nil {
			likesCount = len(likes)
			for _, l := range likes {
				if l.UID == uid {
					isLiked = true
					break
				}
			}
		}

		commentsCount := 0
		if comments, err := h.feedRepository.GetComments(c.Request().Context(), item.ID); err == nil {
			commentsCount = len(comments)
		}

		enriched[i] = EnrichedFeedItem{
			FeedItem:      item,
			LikesCount:    likesCount,
			IsLiked:       isLiked,
			CommentsCount: commentsCount,
			IsFollowing:   followingSet[item.AuthorUID],
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"feeds": enriched},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
		},
	})
}

// GetFeedItem returns one feed item with its current aggregates and the
// ordered comment list
func (h *FeedHandler) GetFeedItem(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	item, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	likesCount, isLiked := 0, false
	if likes, err := h.feedRepository.GetLikes(c.Request().Context(), itemID); err == nil {
		likesCount = len(likes)
		for _, l := range likes {
			if l.UID == uid {
				isLiked = true
				break
			}
		}
	}

	comments, err := h.feedRepository.GetComments(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	interaction.SortComments(comments)

	return c.JSON(http.StatusOK, echo.Map{
		"feed":        item,
		"likes_count": likesCount,
		"is_liked":    isLiked,
		"comments":    comments,
	})
}

// DeleteFeedItem deletes a feed item; only the owning author may
func (h *FeedHandler) DeleteFeedItem(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	item, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	if item.AuthorUID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this feed item")
	}

	if err := h.feedRepository.DeleteFeedItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
