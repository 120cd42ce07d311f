package sync

import (
	"errors"

	"world-sync/core/logger"
	"world-sync/core/scheduler"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync commands.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes. Fixed segments are registered
// before the parameterised ones.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/toggle/:world", h.HandleToggleWorld)
	group.Post("/reset/:type", h.HandleResetQueue)
	group.Post("/:type/:world", h.HandleSyncWorld)
	group.Post("/:type", h.HandleSyncAll)
}

// HandleSyncWorld queues one world.
// @Summary Sync World
// @Description Queue a sync of one world. Worlds already queued are skipped.
// @Tags sync
// @Produce json
// @Param type path string true "Sync type (data, achievements)"
// @Param world path string true "World id (e.g. 'br52')"
// @Success 202 {object} map[string]bool "Queued"
// @Failure 400 {object} map[string]string "Unknown sync type"
// @Failure 404 {object} map[string]string "World not found"
// @Router /sync/{type}/{world} [post]
func (h *Handler) HandleSyncWorld(c *fiber.Ctx) error {
	queued, err := h.service.SyncWorld(c.Context(), c.Params("type"), c.Params("world"))
	if err != nil {
		return h.fail(c, "Sync world failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": queued})
}

// HandleSyncAll queues every eligible world.
// @Summary Sync All Worlds
// @Description Queue a sync of every open world with the type enabled.
// @Tags sync
// @Produce json
// @Param type path string true "Sync type (data, achievements)"
// @Success 202 {object} map[string]int "Number of worlds queued"
// @Failure 400 {object} map[string]string "Unknown sync type"
// @Router /sync/{type} [post]
func (h *Handler) HandleSyncAll(c *fiber.Ctx) error {
	n, err := h.service.SyncAll(c.Context(), c.Params("type"))
	if err != nil {
		return h.fail(c, "Sync all failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": n})
}

// HandleToggleWorld flips the sync switch of a world.
// @Summary Toggle World Sync
// @Tags sync
// @Produce json
// @Param world path string true "World id"
// @Param type query string false "Sync type (data, achievements)" default(data)
// @Success 200 {object} map[string]bool "New state"
// @Failure 404 {object} map[string]string "World not found"
// @Router /sync/toggle/{world} [post]
func (h *Handler) HandleToggleWorld(c *fiber.Ctx) error {
	enabled, err := h.service.ToggleWorld(c.Context(), c.Query("type"), c.Params("world"))
	if err != nil {
		return h.fail(c, "Toggle world failed", err)
	}
	return c.JSON(fiber.Map{"enabled": enabled})
}

// HandleResetQueue resets one pool.
// @Summary Reset Queue
// @Description Drop queued and running syncs of a type and recreate its pool.
// @Tags sync
// @Produce json
// @Param type path string true "Sync type (data, achievements)"
// @Success 200 {object} map[string]string "Reset"
// @Router /sync/reset/{type} [post]
func (h *Handler) HandleResetQueue(c *fiber.Ctx) error {
	if err := h.service.ResetQueue(c.Context(), c.Params("type")); err != nil {
		return h.fail(c, "Reset queue failed", err)
	}
	return c.JSON(fiber.Map{"status": "reset"})
}

// HandleStatus returns the pools and the sync state of every world.
// @Summary Sync Status
// @Tags sync
// @Produce json
// @Success 200 {object} scheduler.Status "Status"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.Context())
	if err != nil {
		return h.fail(c, "Status failed", err)
	}
	return c.JSON(status)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, scheduler.ErrUnknownSyncType):
		code = fiber.StatusBadRequest
	case errors.Is(err, scheduler.ErrWorldNotFound):
		code = fiber.StatusNotFound
	default:
		logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
