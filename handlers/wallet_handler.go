package handlers

import (
	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ProcessWithdrawalRequest struct {
	Decision string `json:"decision" validate:"required,oneof=complete reject"`
	Note     string `json:"note" validate:"max=500"`
}

func (h *Handler) GetWallet(c *fiber.Ctx) error {
	wallet, err := h.Wallets.GetWallet(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, wallet)
}

func (h *Handler) ListWalletTransactions(c *fiber.Ctx) error {
	txs, err := h.Wallets.ListTransactions(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, txs)
}

func (h *Handler) RequestWithdrawal(c *fiber.Ctx) error {
	var req WithdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.Wallets.RequestWithdrawal(c.UserContext(), middleware.Actor(c), req.Amount)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, tx)
}

func (h *Handler) ProcessWithdrawal(c *fiber.Ctx) error {
	txID, err := uuidParam(c, "transactionId")
	if err != nil {
		return err
	}
	var req ProcessWithdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.Wallets.ProcessWithdrawal(c.UserContext(), middleware.Actor(c), txID, req.Decision, req.Note)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, tx)
}
