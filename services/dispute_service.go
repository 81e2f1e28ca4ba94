package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/jobs"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DisputeService struct {
	Deps
}

func NewDisputeService(d Deps) *DisputeService {
	return &DisputeService{Deps: d.withDefaults()}
}

// FileReport lets the customer of an order report fraud on one of its items.
func (s *DisputeService) FileReport(ctx context.Context, actor models.ActorContext, orderItemID uuid.UUID, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.DataValidationFailed("reason is required")
	}

	var report *models.Report
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.Store.OrderItems().GetByID(ctx, orderItemID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("order item %s not found", orderItemID)
		}
		if err != nil {
			return err
		}
		if item.Order == nil || item.Order.CustomerID != actor.UserID {
			return apperrors.Forbidden("only the customer of the order can report it")
		}
		if item.Order.Status == models.OrderStatusPending {
			return apperrors.Business("order %s has not been paid", item.OrderID)
		}
		if item.IsRefunded {
			return apperrors.Business("order item %s has already been refunded", orderItemID)
		}

		exists, err := s.Store.Reports().ExistsPendingForOrderItem(ctx, orderItemID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Duplicate("a pending report already exists for order item %s", orderItemID)
		}

		report = &models.Report{
			ReporterID:  actor.UserID,
			OrderItemID: orderItemID,
			Reason:      reason,
			Status:      models.ReportStatusPending,
		}
		if merchantID, ok := item.MerchantID(); ok {
			report.ReportedUserID = &merchantID
		}
		return s.Store.Reports().Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *DisputeService) ListReports(ctx context.Context, actor models.ActorContext, status models.ReportStatus) ([]models.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	if status == "" {
		status = models.ReportStatusPending
	}
	return s.Store.Reports().ListByStatus(ctx, status)
}

func (s *DisputeService) getReport(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	report, err := s.Store.Reports().GetByID(ctx, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("report %s not found", reportID)
	}
	return report, err
}

type reversal struct {
	item       *models.OrderItem
	amount     decimal.Decimal
	merchantID uuid.UUID
	walletID   uuid.UUID
}

// ConfirmFraudReport refunds the reported item. Products are refunded in full
// outside the wallet ledger. For services the merchant profit is deducted
// from the pending balance, which may go negative. If the profit was already
// distributed the deduction nets the wallet out.
func (s *DisputeService) ConfirmFraudReport(ctx context.Context, actor models.ActorContext, reportID uuid.UUID, note string) (*models.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockOrderItem(ctx, report.OrderItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	var rev reversal
	err = s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.getReport(ctx, reportID)
		if err != nil {
			return err
		}
		if current.Status != models.ReportStatusPending {
			return apperrors.Business("report %s has already been %s", reportID, current.Status)
		}
		report = current

		item, err := s.Store.OrderItems().GetByID(ctx, report.OrderItemID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("order item %s not found", report.OrderItemID)
		}
		if err != nil {
			return err
		}
		if item.IsRefunded {
			return apperrors.Business("order item %s has already been refunded", item.ID)
		}
		rev.item = item

		if item.IsService() {
			if err := s.reverseServiceProfit(ctx, item, &rev); err != nil {
				return err
			}
		} else if err := s.refundProduct(ctx, item, &rev); err != nil {
			return err
		}

		item.IsRefunded = true
		if err := s.Store.OrderItems().Update(ctx, item); err != nil {
			return err
		}
		return s.resolve(ctx, report, actor, models.ReportStatusConfirmed, note)
	})
	if err != nil {
		return nil, err
	}

	recipients := []uuid.UUID{report.ReporterID}
	if report.ReportedUserID != nil {
		recipients = append(recipients, *report.ReportedUserID)
	}
	s.notify(recipients, notifications.Notification{
		Type:    notifications.TypeReportResolved,
		Title:   "Report confirmed",
		Message: fmt.Sprintf("The report on order item %s was confirmed and %s was refunded.", rev.item.ID, rev.amount.StringFixed(0)),
		Data:    map[string]any{"report_id": report.ID.String(), "status": string(report.Status)},
	})

	eventType := events.EventProfitReversed
	if !rev.item.IsService() {
		eventType = events.EventProductRefunded
	}
	s.publish(eventType, rev.item.ID.String(), profitPayload(*rev.item, rev.merchantID, rev.walletID, rev.amount.Neg()))
	log.Printf("✅ Report %s confirmed, refunded %s for order item %s", report.ID, rev.amount, rev.item.ID)
	return report, nil
}

func (s *DisputeService) refundProduct(ctx context.Context, item *models.OrderItem, rev *reversal) error {
	if item.Order == nil {
		return fmt.Errorf("order of item %s not loaded", item.ID)
	}
	rev.amount = item.Order.TotalAmount
	return s.Store.Transactions().Create(ctx, &models.Transaction{
		Amount:      rev.amount.Neg(),
		Type:        models.TransactionTypeProductRefund,
		Status:      models.TransactionStatusSuccess,
		OrderID:     &item.OrderID,
		OrderItemID: &item.ID,
		Description: fmt.Sprintf("Product refund for order item %s", item.ID),
	})
}

func (s *DisputeService) reverseServiceProfit(ctx context.Context, item *models.OrderItem, rev *reversal) error {
	// The job must be gone before the deduction is written.
	if err := s.Scheduler.CancelScheduleJob(item.ID.String(), jobs.GroupDistributeProfit); err != nil {
		log.Printf("⚠️ Failed to cancel distribution job for order item %s: %v", item.ID, err)
	}

	merchantID, ok := item.MerchantID()
	if !ok {
		return fmt.Errorf("order item %s has no merchant", item.ID)
	}
	wallet, err := s.Store.Wallets().GetByOwnerForUpdate(ctx, merchantID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("wallet of merchant %s not found", merchantID)
	}
	if err != nil {
		return err
	}

	rev.amount = MerchantProfit(*item)
	rev.merchantID = merchantID
	rev.walletID = wallet.ID

	wallet.PendingBalance = wallet.PendingBalance.Sub(rev.amount)
	if err := s.Store.Wallets().Update(ctx, wallet); err != nil {
		return err
	}
	if err := s.Store.Transactions().Create(ctx, &models.Transaction{
		Amount:      rev.amount.Neg(),
		Type:        models.TransactionTypePendingDeduction,
		Status:      models.TransactionStatusSuccess,
		WalletID:    &wallet.ID,
		OrderID:     &item.OrderID,
		OrderItemID: &item.ID,
		Description: fmt.Sprintf("Profit deducted after fraud report on order item %s", item.ID),
	}); err != nil {
		return err
	}
	return settlePendingProfit(ctx, s.Store, item.ID, models.TransactionStatusFailed)
}

func (s *DisputeService) resolve(ctx context.Context, report *models.Report, actor models.ActorContext, status models.ReportStatus, note string) error {
	now := s.Now()
	report.Status = status
	report.ResolvedBy = &actor.UserID
	report.ResolvedAt = &now
	if note = strings.TrimSpace(note); note != "" {
		report.ResolutionNote = &note
	}
	return s.Store.Reports().Update(ctx, report)
}

func (s *DisputeService) RejectReport(ctx context.Context, actor models.ActorContext, reportID uuid.UUID, note string) (*models.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	var report *models.Report
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.getReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report.Status != models.ReportStatusPending {
			return apperrors.Business("report %s has already been %s", reportID, report.Status)
		}
		return s.resolve(ctx, report, actor, models.ReportStatusRejected, note)
	})
	if err != nil {
		return nil, err
	}

	s.notify([]uuid.UUID{report.ReporterID}, notifications.Notification{
		Type:    notifications.TypeReportResolved,
		Title:   "Report rejected",
		Message: "Your report was reviewed and was not approved.",
		Data:    map[string]any{"report_id": report.ID.String(), "status": string(report.Status)},
	})
	return report, nil
}
