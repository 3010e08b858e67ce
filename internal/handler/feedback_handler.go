package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlens/mentorlens-api/internal/dto"
	"github.com/mentorlens/mentorlens-api/internal/service"
	"github.com/mentorlens/mentorlens-api/internal/utils"
)

// FeedbackHandler manages student feedback endpoints.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
}

func (h *FeedbackHandler) create(c *fiber.Ctx) error {
	var payload dto.FeedbackCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Add(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback recorded", item)
}

func (h *FeedbackHandler) list(c *fiber.Ctx) error {
	feedback, err := h.service.List(c.Context(), c.Query("category"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback retrieved", feedback)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
