package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/mentorlens/mentorlens-api/internal/dto"
	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/service"
	"github.com/mentorlens/mentorlens-api/internal/utils"
)

// progressPollInterval is how often the progress stream re-reads session state.
const progressPollInterval = time.Second

// SessionHandler manages session upload, lifecycle, and results endpoints.
type SessionHandler struct {
	pipeline  service.EvaluationPipeline
	projector service.ResultsProjector
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSessionHandler builds a session handler instance.
func NewSessionHandler(pipeline service.EvaluationPipeline, projector service.ResultsProjector, validate *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		pipeline:  pipeline,
		projector: projector,
		validator: validate,
		logger:    logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.status)
	router.Post("/:id/advance", h.advance)
	router.Get("/:id/results", h.results)
	router.Get("/:id/progress", upgradeRequired, websocket.New(h.streamProgress))
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	ownerID, err := parseFormUint(c, "owner_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.SessionCreateRequest{
		OwnerID:           *ownerID,
		AccessibilityMode: c.FormValue("accessibility_mode"),
		FileRef:           c.FormValue("file_ref"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	session, err := h.pipeline.Submit(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session submitted", session)
}

func (h *SessionHandler) status(c *fiber.Ctx) error {
	session, err := h.pipeline.GetStatus(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session status retrieved", session)
}

func (h *SessionHandler) advance(c *fiber.Ctx) error {
	session, err := h.pipeline.Advance(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session advanced", session)
}

func (h *SessionHandler) results(c *fiber.Ctx) error {
	results, err := h.projector.ProjectResults(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session results retrieved", results)
}

// streamProgress pushes lifecycle snapshots over a websocket until the
// session reaches a terminal state or the client disconnects.
func (h *SessionHandler) streamProgress(conn *websocket.Conn) {
	defer conn.Close()

	sessionID := conn.Params("id")
	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		status, err := h.pipeline.GetStatus(context.Background(), sessionID)
		if err != nil {
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			return
		}

		if err := conn.WriteJSON(status); err != nil {
			return
		}

		if status.Status == models.SessionStatusCompleted || status.Status == models.SessionStatusFailed {
			return
		}

		<-ticker.C
	}
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrNotReady):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnsupportedMedia):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrAnalysisUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
