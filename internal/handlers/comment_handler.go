package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/interaction"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	feedRepository repositories.FeedRepository
	userRepository repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(feedRepo repositories.FeedRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		feedRepository: feedRepo,
		userRepository: userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/feeds/:id/comments", h.CreateComment)
	g.GET("/feeds/:id/comments", h.GetComments)
	g.DELETE("/feeds/:id/comments/:comment_id", h.DeleteComment)
}

// CreateComment posts a comment on a feed item. The author's display name is
// snapshotted from their profile at submission time.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Verify feed item exists
	if _, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	comment, err := interaction.PostComment(c.Request().Context(), h.feedRepository, h.userRepository, itemID, uid, req.Text)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	if comment == nil {
		// Whitespace-only text is a silent no-op, not an error
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns an item's comments ordered by creation time ascending
func (h *CommentHandler) GetComments(c echo.Context) error {
	itemID := c.Param("id")

	// Verify feed item exists
	if _, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	comments, err := h.feedRepository.GetComments(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	interaction.SortComments(comments)

	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes a comment. The comment's author may delete their own;
// the feed item's owner may delete any comment on their item.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")
	commentID := c.Param("comment_id")

	item, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	if err := interaction.RemoveComment(c.Request().Context(), h.feedRepository, item, commentID, uid); err != nil {
		if err == interaction.ErrNotAllowed {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
		}
		if err.Error() == "comment not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
