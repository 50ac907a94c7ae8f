package handlers

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/internal/api/presenters"
	"FreshMart-Backend/pkg/broadcast"
	"FreshMart-Backend/pkg/freshness"
	"FreshMart-Backend/pkg/trends"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type (
	FreshnessHandler interface {
		Analyze(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
		GetTrends(c *fiber.Ctx) error
		Stream() fiber.Handler
	}

	freshnessHandler struct {
		freshnessService freshness.FreshnessService
		trendService     trends.TrendService
		hub              *broadcast.Hub
		validator        *validator.Validate
	}
)

func NewFreshnessHandler(
	freshnessService freshness.FreshnessService,
	trendService trends.TrendService,
	hub *broadcast.Hub,
	validator *validator.Validate,
) FreshnessHandler {
	return &freshnessHandler{
		freshnessService: freshnessService,
		trendService:     trendService,
		hub:              hub,
		validator:        validator,
	}
}

func (h *freshnessHandler) Analyze(c *fiber.Ctx) error {
	req := new(domain.AnalyzeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	// The image is optional; sensor-only observations come without one.
	if file, err := c.FormFile("image"); err == nil {
		req.Image = file
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyzeImage, err)
	}

	res, err := h.freshnessService.Analyze(c.Context(), *req)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedAnalyzeImage, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyzeImage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAnalyzeImage)
}

func (h *freshnessHandler) GetHistory(c *fiber.Ctx) error {
	productID := c.Params("productId")

	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil {
		limit = 50
	}

	res, err := h.freshnessService.GetHistory(c.Context(), productID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetHistory, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetHistory, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHistory)
}

func (h *freshnessHandler) GetTrends(c *fiber.Ctx) error {
	category := c.Query("category", "")

	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}

	zeroFill := c.Query("fill", "") == "true"

	res, err := h.trendService.Trends(c.Context(), category, days, zeroFill)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetTrends, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTrends)
}

// Stream upgrades the connection and forwards broadcast events until the
// client disconnects.
func (h *freshnessHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		events, unsubscribe := h.hub.Subscribe()
		defer unsubscribe()

		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	})
}
