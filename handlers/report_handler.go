package handlers

import (
	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FileReportRequest struct {
	OrderItemID string `json:"order_item_id" validate:"required,uuid"`
	Reason      string `json:"reason" validate:"required,min=3,max=2000"`
}

type ResolveReportRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

func (h *Handler) FileReport(c *fiber.Ctx) error {
	var req FileReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	report, err := h.Disputes.FileReport(c.UserContext(), middleware.Actor(c), uuid.MustParse(req.OrderItemID), req.Reason)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, report)
}

func (h *Handler) ListReports(c *fiber.Ctx) error {
	status := models.ReportStatus(c.Query("status"))
	reports, err := h.Disputes.ListReports(c.UserContext(), middleware.Actor(c), status)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, reports)
}

func (h *Handler) ConfirmReport(c *fiber.Ctx) error {
	reportID, err := uuidParam(c, "reportId")
	if err != nil {
		return err
	}
	var req ResolveReportRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	report, err := h.Disputes.ConfirmFraudReport(c.UserContext(), middleware.Actor(c), reportID, req.Note)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, report)
}

func (h *Handler) RejectReport(c *fiber.Ctx) error {
	reportID, err := uuidParam(c, "reportId")
	if err != nil {
		return err
	}
	var req ResolveReportRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	report, err := h.Disputes.RejectReport(c.UserContext(), middleware.Actor(c), reportID, req.Note)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, report)
}
