package integrity

import (
	"context"
	"errors"

	"world-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/snapshots", h.HandleSnapshotCheck)
	group.Get("/mirror", h.HandleMirrorCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the schema, snapshot and mirror checks without fixing anything.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]any)

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if missing, err := h.service.CheckSnapshots(ctx); err != nil {
		report["snapshots"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["snapshots"] = fiber.Map{"status": "ok", "missing": missing}
	}

	switch missing, err := h.service.CheckMirror(ctx); {
	case errors.Is(err, ErrMirrorDisabled):
		report["mirror"] = fiber.Map{"status": "disabled"}
	case err != nil:
		report["mirror"] = fiber.Map{"status": "error", "error": err.Error()}
	default:
		report["mirror"] = fiber.Map{"status": "ok", "missing": missing}
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Schema
// @Description Checks that every table has the columns of its model.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema drift detected")
	}
	return c.JSON(report)
}

// HandleSnapshotCheck checks and optionally fixes snapshot files.
// @Summary Check Snapshots
// @Description Lists worlds flagged map_available without snapshot files. Fixing clears the flag until the next data sync.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Clear the map flag of broken worlds"
// @Success 200 {object} map[string]interface{} "Snapshot Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/snapshots [get]
func (h *Handler) HandleSnapshotCheck(c *fiber.Ctx) error {
	return h.checkAndFix(c, "snapshot", h.service.CheckSnapshots, h.service.FixSnapshots)
}

// HandleMirrorCheck checks and optionally fixes the object storage mirror.
// @Summary Check Mirror
// @Description Lists worlds whose snapshot is missing from the bucket. Fixing re-uploads the local files.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Re-upload missing snapshots"
// @Success 200 {object} map[string]interface{} "Mirror Report"
// @Failure 404 {object} map[string]string "Mirror disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/mirror [get]
func (h *Handler) HandleMirrorCheck(c *fiber.Ctx) error {
	if !h.service.MirrorEnabled() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrMirrorDisabled.Error()})
	}
	return h.checkAndFix(c, "mirror", h.service.CheckMirror, h.service.FixMirror)
}

func (h *Handler) checkAndFix(
	c *fiber.Ctx,
	name string,
	check func(context.Context) ([]string, error),
	fix func(context.Context, []string) error,
) error {
	l := logger.WithRayID(h.service.logger, c).With(zap.String("check", name))

	missing, err := check(c.Context())
	if err != nil {
		l.Error("Integrity check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Inconsistent worlds detected", zap.Strings("missing", missing))

		if c.Query("fix") == "true" {
			l.Info("Attempting to fix worlds")
			if err := fix(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix " + name,
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}
