// Package repository is the persistence boundary of the settlement core.
// Every repository reads the active transaction from the context, so a
// service can compose several calls inside Store.WithTransaction and have
// them commit together.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type CatalogRepository interface {
	CreateGym(ctx context.Context, g *models.Gym) error
	CreateGymCourse(ctx context.Context, c *models.GymCourse) error
	CreatePTPackage(ctx context.Context, p *models.FreelancePTPackage) error
	CreateProduct(ctx context.Context, p *models.Product) error
	CreateCoupon(ctx context.Context, c *models.Coupon) error

	GetGymCourse(ctx context.Context, id uuid.UUID) (*models.GymCourse, error)
	GetPTPackage(ctx context.Context, id uuid.UUID) (*models.FreelancePTPackage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type OrderRepository interface {
	// Create persists the order together with its items.
	Create(ctx context.Context, o *models.Order) error
	// GetByID loads the order with its coupon and items.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
}

type OrderItemRepository interface {
	// GetByID loads the item with its order, the order's coupon and the
	// purchased catalog entry (course with gym, package, or product).
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	// ListDueForDistribution returns undistributed, unrefunded items whose
	// planned distribution date is at or before the given time.
	ListDueForDistribution(ctx context.Context, before time.Time, limit int) ([]models.OrderItem, error)
	Update(ctx context.Context, item *models.OrderItem) error
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *models.CustomerPurchased) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerPurchased, error)
	GetByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*models.CustomerPurchased, error)
	Update(ctx context.Context, p *models.CustomerPurchased) error
}

type WalletRepository interface {
	Create(ctx context.Context, w *models.Wallet) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error)
	// GetByOwnerForUpdate row-locks the wallet until the transaction ends.
	GetByOwnerForUpdate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	Update(ctx context.Context, w *models.Wallet) error
}

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, t *models.Transaction) error
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
	ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.Transaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Update(ctx context.Context, r *models.Report) error
	ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error)
	ExistsPendingForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error)
}

type SystemConfigurationRepository interface {
	GetByKey(ctx context.Context, key string) (*models.SystemConfiguration, error)
	Upsert(ctx context.Context, c *models.SystemConfiguration) error
}

// Store is the unit of work handed to services.
type Store interface {
	Users() UserRepository
	Catalog() CatalogRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Purchases() PurchaseRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Reports() ReportRepository
	SystemConfigurations() SystemConfigurationRepository

	// WithTransaction runs fn in a single database transaction. Nested calls
	// join the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
