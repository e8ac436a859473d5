package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/interaction"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
)

// StreamHandler serves the live item stream over server-sent events
type StreamHandler struct {
	feedRepository repositories.FeedRepository
	registry       *interaction.Registry
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(feedRepo repositories.FeedRepository, registry *interaction.Registry) *StreamHandler {
	return &StreamHandler{
		feedRepository: feedRepo,
		registry:       registry,
	}
}

// RegisterStreamRoutes registers the stream route
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/feeds/:id/stream", h.StreamFeedItem)
}

// StreamFeedItem mounts a live interaction session for one feed item and
// relays its like and comment snapshots to the client as SSE events. The
// session stays registered while the stream is open, so like toggles issued
// over the REST surface by the same viewer flow through it and their
// optimistic updates appear on this stream immediately.
func (h *StreamHandler) StreamFeedItem(c echo.Context) error {
	uid := middleware.UID(c)
	itemID := c.Param("id")

	item, err := h.feedRepository.GetFeedItem(c.Request().Context(), itemID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feed item not found")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	// Callbacks arrive from the two watch goroutines; writes to the
	// response must not interleave.
	var writeMu sync.Mutex
	writeEvent := func(event string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data)
		res.Flush()
	}

	sess, err := interaction.NewSession(c.Request().Context(), h.feedRepository, item, uid, interaction.Callbacks{
		OnLikes: func(state interaction.LikeState) {
			writeEvent("likes", state)
		},
		OnComments: func(comments []models.Comment) {
			writeEvent("comments", comments)
		},
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.registry.Put(itemID, uid, sess)
	defer func() {
		h.registry.Remove(itemID, uid, sess)
		sess.Close()
	}()

	<-c.Request().Context().Done()
	return nil
}
