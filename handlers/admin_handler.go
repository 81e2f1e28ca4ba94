package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// GenerateTransactionReport exports the ledger between start_date and
// end_date (inclusive, YYYY-MM-DD) as CSV.
func (h *Handler) GenerateTransactionReport(c *fiber.Ctx) error {
	now := time.Now()
	startDateStr := c.Query("start_date", now.AddDate(0, -1, 0).Format(dateLayout))
	endDateStr := c.Query("end_date", now.Format(dateLayout))

	startDate, err := time.Parse(dateLayout, startDateStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD.")
	}
	endDate, err := time.Parse(dateLayout, endDateStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD.")
	}
	endOfDay := endDate.Add(24*time.Hour - time.Nanosecond)

	txs, err := h.Wallets.TransactionsBetween(c.UserContext(), middleware.Actor(c), startDate, endOfDay)
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Transaction ID", "Date", "Type", "Status", "Amount", "Wallet ID", "Order Item ID", "Description"}
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		var walletID, itemID string
		if t.WalletID != nil {
			walletID = t.WalletID.String()
		}
		if t.OrderItemID != nil {
			itemID = t.OrderItemID.String()
		}
		row := []string{
			t.ID.String(),
			t.CreatedAt.Format("2006-01-02 15:04"),
			string(t.Type),
			string(t.Status),
			t.Amount.StringFixed(2),
			walletID,
			itemID,
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startDate.Format(dateLayout), endDate.Format(dateLayout)))
	return c.Send(b.Bytes())
}

type SystemConfigurationRequest struct {
	Value       string `json:"value" validate:"required"`
	DataType    string `json:"data_type" validate:"required,oneof=int decimal bool string"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) GetSystemConfiguration(c *fiber.Ctx) error {
	key := c.Params("key")
	cfg, err := h.Configs.Get(c.UserContext(), key)
	if err != nil {
		return err
	}
	value, err := services.ConvertConfigValue(cfg.DataType, cfg.Value)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"key":         cfg.Key,
		"value":       value,
		"data_type":   cfg.DataType,
		"description": cfg.Description,
	})
}

func (h *Handler) UpdateSystemConfiguration(c *fiber.Ctx) error {
	var req SystemConfigurationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cfg := &models.SystemConfiguration{
		Key:         c.Params("key"),
		Value:       req.Value,
		DataType:    models.ConfigDataType(req.DataType),
		Description: req.Description,
	}
	if err := h.Configs.Upsert(c.UserContext(), cfg); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cfg)
}
