package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/jobs"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dueSweepBatch = 100

type SettlementService struct {
	Deps
}

func NewSettlementService(d Deps) *SettlementService {
	return &SettlementService{Deps: d.withDefaults()}
}

type scheduledItem struct {
	item       models.OrderItem
	merchantID uuid.UUID
	walletID   uuid.UUID
	profit     decimal.Decimal
}

// ConfirmOrderPayment marks a pending order paid and credits each service
// line's profit to the merchant's pending balance. Distribution is scheduled
// ProfitHoldDays later.
func (s *SettlementService) ConfirmOrderPayment(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var scheduled []scheduledItem

	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.Store.Orders().GetByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("order %s not found", orderID)
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return apperrors.Business("order %s is %s, not pending", orderID, order.Status)
		}

		now := s.Now()
		order.Status = models.OrderStatusPaid
		order.PaidAt = &now
		if err := s.Store.Orders().Update(ctx, order); err != nil {
			return err
		}

		items, err := s.Store.OrderItems().ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		holdDays := s.Configs.Int(ctx, ConfigProfitHoldDays, DefaultProfitHoldDays)
		planned := now.AddDate(0, 0, holdDays)

		for i := range items {
			item := items[i]
			if !item.IsService() {
				if err := s.takeStock(ctx, item); err != nil {
					return err
				}
				continue
			}
			merchantID, ok := item.MerchantID()
			if !ok {
				return fmt.Errorf("order item %s has no merchant", item.ID)
			}
			profit := MerchantProfit(item)
			if profit.IsNegative() {
				return apperrors.DataValidationFailed("order item %s has a negative profit", item.ID)
			}

			wallet, err := s.ensureWallet(ctx, merchantID)
			if err != nil {
				return err
			}
			wallet.PendingBalance = wallet.PendingBalance.Add(profit)
			if err := s.Store.Wallets().Update(ctx, wallet); err != nil {
				return err
			}

			if err := s.Store.Transactions().Create(ctx, &models.Transaction{
				Amount:      profit,
				Type:        models.TransactionTypePendingProfit,
				Status:      models.TransactionStatusPending,
				WalletID:    &wallet.ID,
				OrderID:     &order.ID,
				OrderItemID: &item.ID,
				Description: fmt.Sprintf("Pending profit for order item %s", item.ID),
			}); err != nil {
				return err
			}

			item.ProfitDistributePlannedDate = &planned
			if err := s.Store.OrderItems().Update(ctx, &item); err != nil {
				return err
			}

			sessions := item.NumberOfSessions()
			if sessions < 1 {
				sessions = 1
			}
			if err := s.Store.Purchases().Create(ctx, &models.CustomerPurchased{
				CustomerID:        order.CustomerID,
				OrderItemID:       item.ID,
				SessionsTotal:     sessions,
				SessionsRemaining: sessions,
				Status:            models.PurchaseStatusActive,
			}); err != nil {
				return err
			}

			scheduled = append(scheduled, scheduledItem{item: item, merchantID: merchantID, walletID: wallet.ID, profit: profit})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sc := range scheduled {
		if err := s.Scheduler.ScheduleDistributeProfitJob(sc.item.ID, *sc.item.ProfitDistributePlannedDate); err != nil {
			log.Printf("⚠️ Failed to schedule profit distribution for order item %s: %v", sc.item.ID, err)
		}
		s.notify([]uuid.UUID{sc.merchantID}, notifications.Notification{
			Type:    notifications.TypeProfitPending,
			Title:   "New sale",
			Message: fmt.Sprintf("%s was added to your pending balance.", sc.profit.StringFixed(0)),
			Data:    map[string]any{"order_item_id": sc.item.ID.String()},
		})
		s.publish(events.EventProfitPending, sc.item.ID.String(), profitPayload(sc.item, sc.merchantID, sc.walletID, sc.profit))
	}
	log.Printf("✅ Payment confirmed for order %s, %d service item(s) pending", orderID, len(scheduled))

	return s.Store.Orders().GetByID(ctx, orderID)
}

// takeStock removes a product line's quantity from stock. CreateOrder does
// not reserve stock, so it is checked again under the row lock.
func (s *SettlementService) takeStock(ctx context.Context, item models.OrderItem) error {
	if item.ProductID == nil {
		return nil
	}
	product, err := s.Store.Catalog().GetProductForUpdate(ctx, *item.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("product %s not found", *item.ProductID)
	}
	if err != nil {
		return err
	}
	if product.Stock < item.Quantity {
		return apperrors.Business("product %s has only %d left in stock", product.ID, product.Stock)
	}
	product.Stock -= item.Quantity
	return s.Store.Catalog().UpdateProduct(ctx, product)
}

func (s *SettlementService) ensureWallet(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.Store.Wallets().GetByOwnerForUpdate(ctx, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	wallet = &models.Wallet{OwnerID: ownerID}
	if err := s.Store.Wallets().Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func profitPayload(item models.OrderItem, merchantID, walletID uuid.UUID, amount decimal.Decimal) events.ProfitPayload {
	return events.ProfitPayload{
		OrderID:     item.OrderID.String(),
		OrderItemID: item.ID.String(),
		MerchantID:  merchantID.String(),
		WalletID:    walletID.String(),
		Amount:      amount.String(),
	}
}

// DistributeProfit moves an item's profit from the merchant's pending to
// available balance. It returns false without an error when there is nothing
// to distribute: the item or wallet is missing, the item is a product, was
// refunded or was already distributed.
func (s *SettlementService) DistributeProfit(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	release, err := s.lockOrderItem(ctx, orderItemID)
	if err != nil {
		return false, err
	}
	defer release()

	var (
		distributed bool
		item        *models.OrderItem
		merchantID  uuid.UUID
		walletID    uuid.UUID
		profit      decimal.Decimal
	)
	err = s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.Store.OrderItems().GetByID(ctx, orderItemID)
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("🔥 Distribute profit: order item %s not found", orderItemID)
			return nil
		}
		if err != nil {
			return err
		}
		if item.IsDistributed() || item.IsRefunded || !item.IsService() {
			return nil
		}

		var ok bool
		merchantID, ok = item.MerchantID()
		if !ok {
			log.Printf("🔥 Distribute profit: no merchant for order item %s", orderItemID)
			return nil
		}
		wallet, err := s.Store.Wallets().GetByOwnerForUpdate(ctx, merchantID)
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("🔥 Distribute profit: wallet of merchant %s not found", merchantID)
			return nil
		}
		if err != nil {
			return err
		}

		profit = MerchantProfit(*item)
		if profit.IsNegative() {
			return apperrors.DataValidationFailed("order item %s has a negative profit", orderItemID)
		}

		wallet.PendingBalance = wallet.PendingBalance.Sub(profit)
		wallet.AvailableBalance = wallet.AvailableBalance.Add(profit)
		if err := s.Store.Wallets().Update(ctx, wallet); err != nil {
			return err
		}
		walletID = wallet.ID

		if err := s.Store.Transactions().Create(ctx, &models.Transaction{
			Amount:      profit,
			Type:        models.TransactionTypeDistributeProfit,
			Status:      models.TransactionStatusSuccess,
			WalletID:    &wallet.ID,
			OrderID:     &item.OrderID,
			OrderItemID: &item.ID,
			Description: fmt.Sprintf("Profit distributed for order item %s", item.ID),
		}); err != nil {
			return err
		}
		if err := settlePendingProfit(ctx, s.Store, item.ID, models.TransactionStatusSuccess); err != nil {
			return err
		}

		now := s.Now()
		item.ProfitDistributeActualDate = &now
		if err := s.Store.OrderItems().Update(ctx, item); err != nil {
			return err
		}
		distributed = true
		return nil
	})
	if err != nil || !distributed {
		return false, err
	}

	if err := s.Scheduler.CancelScheduleJob(orderItemID.String(), jobs.GroupDistributeProfit); err != nil {
		log.Printf("⚠️ Failed to cancel distribution job for order item %s: %v", orderItemID, err)
	}
	s.notify([]uuid.UUID{merchantID}, notifications.Notification{
		Type:    notifications.TypeProfitDistributed,
		Title:   "Profit released",
		Message: fmt.Sprintf("%s is now available for withdrawal.", profit.StringFixed(0)),
		Data:    map[string]any{"order_item_id": orderItemID.String()},
	})
	s.publish(events.EventProfitDistributed, orderItemID.String(), profitPayload(*item, merchantID, walletID, profit))
	log.Printf("✅ Distributed profit %s for order item %s", profit, orderItemID)
	return true, nil
}

// settlePendingProfit closes the PendingProfit ledger rows of an item.
func settlePendingProfit(ctx context.Context, store repository.Store, orderItemID uuid.UUID, status models.TransactionStatus) error {
	txs, err := store.Transactions().ListByOrderItem(ctx, orderItemID)
	if err != nil {
		return err
	}
	for i := range txs {
		t := txs[i]
		if t.Type != models.TransactionTypePendingProfit || t.Status != models.TransactionStatusPending {
			continue
		}
		t.Status = status
		if err := store.Transactions().Update(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}

// DistributePendingProfit distributes the profit of the order item behind a
// customer purchase.
func (s *SettlementService) DistributePendingProfit(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	purchase, err := s.Store.Purchases().GetByID(ctx, purchaseID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("🔥 Distribute pending profit: purchase %s not found", purchaseID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.DistributeProfit(ctx, purchase.OrderItemID)
}

// CompleteSession records one finished session. Profit is distributed once
// the last session is done.
func (s *SettlementService) CompleteSession(ctx context.Context, actor models.ActorContext, purchaseID uuid.UUID) (*models.CustomerPurchased, error) {
	if !actor.IsMerchant() && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the merchant can complete a session")
	}

	var purchase *models.CustomerPurchased
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		purchase, err = s.Store.Purchases().GetByID(ctx, purchaseID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("purchase %s not found", purchaseID)
		}
		if err != nil {
			return err
		}
		if purchase.Status == models.PurchaseStatusCompleted {
			return apperrors.Business("all sessions of purchase %s are already completed", purchaseID)
		}

		item, err := s.Store.OrderItems().GetByID(ctx, purchase.OrderItemID)
		if err != nil {
			return fmt.Errorf("load order item %s: %w", purchase.OrderItemID, err)
		}
		if merchantID, _ := item.MerchantID(); !actor.IsAdmin() && merchantID != actor.UserID {
			return apperrors.Forbidden("purchase %s belongs to another merchant", purchaseID)
		}
		if item.IsRefunded {
			return apperrors.Business("order item %s was refunded", item.ID)
		}

		purchase.SessionsRemaining--
		if purchase.SessionsRemaining <= 0 {
			now := s.Now()
			purchase.SessionsRemaining = 0
			purchase.Status = models.PurchaseStatusCompleted
			purchase.CompletedAt = &now
		}
		return s.Store.Purchases().Update(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	if purchase.Status == models.PurchaseStatusCompleted {
		if _, err := s.DistributePendingProfit(ctx, purchase.ID); err != nil {
			log.Printf("🔥 Failed to distribute profit for purchase %s: %v", purchase.ID, err)
		}
	}
	return purchase, nil
}

// CancelOrderWithoutRefund cancels a paid order while letting the merchants
// keep their profit, which is distributed right away.
func (s *SettlementService) CancelOrderWithoutRefund(ctx context.Context, orderID uuid.UUID) (int, error) {
	var items []models.OrderItem
	err := s.Store.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.Store.Orders().GetByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("order %s not found", orderID)
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPaid {
			return apperrors.Business("only paid orders can be cancelled, order %s is %s", orderID, order.Status)
		}
		order.Status = models.OrderStatusCancelled
		if err := s.Store.Orders().Update(ctx, order); err != nil {
			return err
		}
		items = order.Items
		return nil
	})
	if err != nil {
		return 0, err
	}

	distributed := 0
	for _, item := range items {
		if !item.IsService() {
			continue
		}
		ok, err := s.DistributeProfit(ctx, item.ID)
		if err != nil {
			log.Printf("🔥 Failed to distribute profit for order item %s: %v", item.ID, err)
			continue
		}
		if ok {
			distributed++
		}
	}
	return distributed, nil
}

// DistributeDueProfits distributes every item whose planned date has passed.
// Per-item failures are logged and skipped.
func (s *SettlementService) DistributeDueProfits(ctx context.Context) (int, error) {
	items, err := s.Store.OrderItems().ListDueForDistribution(ctx, s.Now(), dueSweepBatch)
	if err != nil {
		return 0, err
	}
	distributed := 0
	for _, item := range items {
		ok, err := s.DistributeProfit(ctx, item.ID)
		if err != nil {
			log.Printf("🔥 Sweep failed for order item %s: %v", item.ID, err)
			continue
		}
		if ok {
			distributed++
		}
	}
	return distributed, nil
}

// HandleDistributeProfitJob is the scheduler handler for one-shot
// DistributeProfit jobs, whose name is the order item id.
func (s *SettlementService) HandleDistributeProfitJob(ctx context.Context, name string) error {
	id, err := uuid.Parse(name)
	if err != nil {
		return fmt.Errorf("invalid order item id %q: %w", name, err)
	}
	_, err = s.DistributeProfit(ctx, id)
	return err
}

type OrderItemProfit struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	Kind        models.ItemKind `json:"kind"`
	Profit      decimal.Decimal `json:"profit"`
	Distributed bool            `json:"distributed"`
	Refunded    bool            `json:"refunded"`
}

// GetOrderItemProfit reports the merchant profit of an item to its merchant
// or an admin.
func (s *SettlementService) GetOrderItemProfit(ctx context.Context, actor models.ActorContext, orderItemID uuid.UUID) (*OrderItemProfit, error) {
	item, err := s.Store.OrderItems().GetByID(ctx, orderItemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("order item %s not found", orderItemID)
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		merchantID, ok := item.MerchantID()
		if !ok || merchantID != actor.UserID {
			return nil, apperrors.Forbidden("order item %s belongs to another merchant", orderItemID)
		}
	}
	return &OrderItemProfit{
		OrderItemID: item.ID,
		Kind:        item.Kind(),
		Profit:      MerchantProfit(*item),
		Distributed: item.IsDistributed(),
		Refunded:    item.IsRefunded,
	}, nil
}
