package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/service"
)

// AdminHandler exposes operational endpoints: manual sweep runs and counters.
type AdminHandler struct {
	sweeper *service.SweepService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(sweeper *service.SweepService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, metrics: metrics}
}

// TriggerSweep POST /admin/sweep runs a pending sweep immediately.
func (h *AdminHandler) TriggerSweep(c *fiber.Ctx) error {
	assigned, err := h.sweeper.RunPendingSweep(c.Context())
	h.metrics.RecordSweep(assigned)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned": assigned}})
}

// SweepStats GET /admin/sweep/stats reports sweep counters.
func (h *AdminHandler) SweepStats(c *fiber.Ctx) error {
	runs, assigned := h.metrics.SweepTotals()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"runs":     runs,
		"assigned": assigned,
	}})
}
