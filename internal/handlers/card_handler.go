package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
)

// CardGenerator turns a mood string into a structured card
type CardGenerator interface {
	Generate(ctx context.Context, mood string) (*models.GeneratedCard, error)
}

// CardHandler handles card generation and the private card archive
type CardHandler struct {
	generator      CardGenerator
	cardRepository repositories.CardRepository
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(generator CardGenerator, cardRepo repositories.CardRepository) *CardHandler {
	return &CardHandler{
		generator:      generator,
		cardRepository: cardRepo,
	}
}

// RegisterCardRoutes registers card-related routes
func (h *CardHandler) RegisterCardRoutes(g *echo.Group) {
	g.POST("/cards/generate", h.GenerateCard)
	g.POST("/cards", h.SaveCard)
	g.GET("/cards", h.GetMyCards)
	g.PUT("/cards/:id", h.UpdateCard)
	g.DELETE("/cards/:id", h.DeleteCard)
}

// GenerateCard produces an AI card for the submitted mood. The response is
// either the structured card or {"error": message} with the mapped status.
func (h *CardHandler) GenerateCard(c echo.Context) error {
	var req models.GenerateCardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "잘못된 요청입니다."})
	}

	card, err := h.generator.Generate(c.Request().Context(), req.Mood)
	if err != nil {
		return c.JSON(apperrors.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, card)
}

// SaveCard stores a card in the caller's private archive
func (h *CardHandler) SaveCard(c echo.Context) error {
	uid := middleware.UID(c)

	var req models.SaveCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card := &models.Card{
		OwnerUID: uid,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Mode:     req.Mode,
	}

	if err := h.cardRepository.CreateCard(c.Request().Context(), card); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, card)
}

// GetMyCards lists the caller's saved cards, newest first
func (h *CardHandler) GetMyCards(c echo.Context) error {
	uid := middleware.UID(c)

	cards, err := h.cardRepository.GetCardsByOwner(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, cards)
}

// UpdateCard edits a saved card's text or background; owner only
func (h *CardHandler) UpdateCard(c echo.Context) error {
	uid := middleware.UID(c)
	cardID := c.Param("id")

	var req models.UpdateCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card, err := h.cardRepository.GetCardByID(c.Request().Context(), cardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Card not found")
	}

	if card.OwnerUID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this card")
	}

	if req.Text != "" {
		card.Text = req.Text
	}
	if req.ImageURL != "" {
		card.ImageURL = req.ImageURL
	}

	if err := h.cardRepository.UpdateCard(c.Request().Context(), cardID, card); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, card)
}

// DeleteCard removes a saved card; owner only
func (h *CardHandler) DeleteCard(c echo.Context) error {
	uid := middleware.UID(c)
	cardID := c.Param("id")

	card, err := h.cardRepository.GetCardByID(c.Request().Context(), cardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Card not found")
	}

	if card.OwnerUID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this card")
	}

	if err := h.cardRepository.DeleteCard(c.Request().Context(), cardID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
