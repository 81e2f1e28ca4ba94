package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	WithdrawalComplete = "complete"
	WithdrawalReject   = "reject"
)

type WalletService struct {
	Deps
}

func NewWalletService(d Deps) *WalletService {
	return &WalletService{Deps: d.withDefaults()}
}

func (s *WalletService) GetWallet(ctx context.Context, actor models.ActorContext) (*models.Wallet, error) {
	if !actor.IsMerchant() {
		return nil, apperrors.Forbidden("only merchants have wallets")
	}
	wallet, err := s.Store.Wallets().GetByOwner(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("wallet not found")
	}
	return wallet, err
}

func (s *WalletService) ListTransactions(ctx context.Context, actor models.ActorContext) ([]models.Transaction, error) {
	wallet, err := s.GetWallet(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.Store.Transactions().ListByWallet(ctx, wallet.ID)
}

// RequestWithdrawal takes amount out of the available balance and records a
// pending Withdraw until an admin processes it.
func (s *WalletService) RequestWithdrawal(ctx context.Context, actor models.ActorContext, amount decimal.Decimal) (*models.Transaction, error) {
	if !actor.IsMerchant() {
		return nil, apperrors.Forbidden("only merchants can withdraw")
	}
	if !amount.IsPositive() {
		return nil, apperrors.DataValidationFailed("amount must be positive")
	}
	minAmount := s.Configs.Decimal(ctx, ConfigMinWithdrawalAmount, DefaultMinWithdrawalAmount)
	if amount.LessThan(minAmount) {
		return nil, apperrors.DataValidationFailed("minimum withdrawal amount is %s", minAmount.StringFixed(0))
	}

	var withdrawal *models.Transaction
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		wallet, err := s.Store.Wallets().GetByOwnerForUpdate(ctx, actor.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("wallet not found")
		}
		if err != nil {
			return err
		}
		if wallet.AvailableBalance.LessThan(amount) {
			return apperrors.Business("insufficient balance")
		}

		wallet.AvailableBalance = wallet.AvailableBalance.Sub(amount)
		if err := s.Store.Wallets().Update(ctx, wallet); err != nil {
			return err
		}
		withdrawal = &models.Transaction{
			Amount:      amount.Neg(),
			Type:        models.TransactionTypeWithdraw,
			Status:      models.TransactionStatusPending,
			WalletID:    &wallet.ID,
			Description: "Withdrawal request",
		}
		return s.Store.Transactions().Create(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.EventWithdrawRequested, withdrawal.WalletID.String(), withdrawPayload(withdrawal))
	return withdrawal, nil
}

func withdrawPayload(t *models.Transaction) events.WithdrawPayload {
	return events.WithdrawPayload{
		TransactionID: t.ID.String(),
		WalletID:      t.WalletID.String(),
		Amount:        t.Amount.String(),
		Status:        string(t.Status),
	}
}

// ProcessWithdrawal completes or rejects a pending withdrawal. A rejected
// withdrawal returns the money to the available balance.
func (s *WalletService) ProcessWithdrawal(ctx context.Context, actor models.ActorContext, transactionID uuid.UUID, decision, note string) (*models.Transaction, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	if decision != WithdrawalComplete && decision != WithdrawalReject {
		return nil, apperrors.DataValidationFailed("decision must be %s or %s", WithdrawalComplete, WithdrawalReject)
	}

	var (
		withdrawal *models.Transaction
		ownerID    uuid.UUID
	)
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		withdrawal, err = s.Store.Transactions().GetByID(ctx, transactionID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("withdrawal %s not found", transactionID)
		}
		if err != nil {
			return err
		}
		if withdrawal.Type != models.TransactionTypeWithdraw || withdrawal.WalletID == nil {
			return apperrors.Business("transaction %s is not a withdrawal", transactionID)
		}
		if withdrawal.Status != models.TransactionStatusPending {
			return apperrors.Business("withdrawal %s has already been processed", transactionID)
		}

		wallet, err := s.Store.Wallets().GetByIDForUpdate(ctx, *withdrawal.WalletID)
		if err != nil {
			return fmt.Errorf("load wallet %s: %w", *withdrawal.WalletID, err)
		}
		ownerID = wallet.OwnerID

		if note = strings.TrimSpace(note); note != "" {
			withdrawal.Description = fmt.Sprintf("%s (%s)", withdrawal.Description, note)
		}
		if decision == WithdrawalComplete {
			withdrawal.Status = models.TransactionStatusSuccess
			return s.Store.Transactions().Update(ctx, withdrawal)
		}

		withdrawal.Status = models.TransactionStatusFailed
		if err := s.Store.Transactions().Update(ctx, withdrawal); err != nil {
			return err
		}
		refund := withdrawal.Amount.Neg()
		wallet.AvailableBalance = wallet.AvailableBalance.Add(refund)
		if err := s.Store.Wallets().Update(ctx, wallet); err != nil {
			return err
		}
		return s.Store.Transactions().Create(ctx, &models.Transaction{
			Amount:      refund,
			Type:        models.TransactionTypeWithdrawRefund,
			Status:      models.TransactionStatusSuccess,
			WalletID:    &wallet.ID,
			Description: fmt.Sprintf("Refund of rejected withdrawal %s", withdrawal.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your withdrawal of %s has been processed and sent.", withdrawal.Amount.Neg().StringFixed(0))
	if decision == WithdrawalReject {
		message = fmt.Sprintf("Your withdrawal of %s was rejected. The funds have been returned to your balance.", withdrawal.Amount.Neg().StringFixed(0))
	}
	s.notify([]uuid.UUID{ownerID}, notifications.Notification{
		Type:    notifications.TypeWithdrawProcessed,
		Title:   "Withdrawal update",
		Message: message,
		Data:    map[string]any{"transaction_id": withdrawal.ID.String(), "status": string(withdrawal.Status)},
	})
	s.publish(events.EventWithdrawProcessed, withdrawal.WalletID.String(), withdrawPayload(withdrawal))
	return withdrawal, nil
}

// TransactionsBetween lists the ledger between two instants for reporting.
func (s *WalletService) TransactionsBetween(ctx context.Context, actor models.ActorContext, from, to time.Time) ([]models.Transaction, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	if to.Before(from) {
		return nil, apperrors.DataValidationFailed("end date is before start date")
	}
	return s.Store.Transactions().ListBetween(ctx, from, to)
}
