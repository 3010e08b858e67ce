package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlens/mentorlens-api/internal/service"
	"github.com/mentorlens/mentorlens-api/internal/utils"
)

// OwnerHandler exposes per-owner gamification aggregates.
type OwnerHandler struct {
	projector service.ResultsProjector
	logger    zerolog.Logger
}

// NewOwnerHandler builds an owner handler instance.
func NewOwnerHandler(projector service.ResultsProjector, logger zerolog.Logger) *OwnerHandler {
	return &OwnerHandler{
		projector: projector,
		logger:    logger.With().Str("component", "owner_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *OwnerHandler) Register(router fiber.Router) {
	router.Get("/:id/points", h.points)
}

func (h *OwnerHandler) points(c *fiber.Ctx) error {
	ownerID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	points, err := h.projector.OwnerPoints(c.Context(), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "owner points retrieved", points)
}
