package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type gormTxKey struct{}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) Users() UserRepository               { return gormUsers{s} }
func (s *GormStore) Catalog() CatalogRepository          { return gormCatalog{s} }
func (s *GormStore) Orders() OrderRepository             { return gormOrders{s} }
func (s *GormStore) OrderItems() OrderItemRepository     { return gormOrderItems{s} }
func (s *GormStore) Purchases() PurchaseRepository       { return gormPurchases{s} }
func (s *GormStore) Wallets() WalletRepository           { return gormWallets{s} }
func (s *GormStore) Transactions() TransactionRepository { return gormTransactions{s} }
func (s *GormStore) Reports() ReportRepository           { return gormReports{s} }
func (s *GormStore) SystemConfigurations() SystemConfigurationRepository {
	return gormSystemConfigurations{s}
}

type gormUsers struct{ s *GormStore }

func (r gormUsers) Create(ctx context.Context, u *models.User) error {
	return r.s.conn(ctx).Create(u).Error
}

func (r gormUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.s.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

type gormCatalog struct{ s *GormStore }

func (r gormCatalog) CreateGym(ctx context.Context, g *models.Gym) error {
	return r.s.conn(ctx).Create(g).Error
}

func (r gormCatalog) CreateGymCourse(ctx context.Context, c *models.GymCourse) error {
	return r.s.conn(ctx).Omit(clause.Associations).Create(c).Error
}

func (r gormCatalog) CreatePTPackage(ctx context.Context, p *models.FreelancePTPackage) error {
	return r.s.conn(ctx).Create(p).Error
}

func (r gormCatalog) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.s.conn(ctx).Create(p).Error
}

func (r gormCatalog) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return r.s.conn(ctx).Create(c).Error
}

func (r gormCatalog) GetGymCourse(ctx context.Context, id uuid.UUID) (*models.GymCourse, error) {
	var c models.GymCourse
	if err := r.s.conn(ctx).Preload("Gym").First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r gormCatalog) GetPTPackage(ctx context.Context, id uuid.UUID) (*models.FreelancePTPackage, error) {
	var p models.FreelancePTPackage
	if err := r.s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormCatalog) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormCatalog) UpdateProduct(ctx context.Context, p *models.Product) error {
	return r.s.conn(ctx).Save(p).Error
}

func (r gormCatalog) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.s.conn(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

type gormOrders struct{ s *GormStore }

func (r gormOrders) Create(ctx context.Context, o *models.Order) error {
	return r.s.conn(ctx).Omit("Coupon").Create(o).Error
}

func (r gormOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.s.conn(ctx).
		Preload("Coupon").
		Preload("Items").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r gormOrders) Update(ctx context.Context, o *models.Order) error {
	return r.s.conn(ctx).Omit(clause.Associations).Save(o).Error
}

type gormOrderItems struct{ s *GormStore }

func (r gormOrderItems) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Order.Coupon").
		Preload("GymCourse.Gym").
		Preload("FreelancePTPackage").
		Preload("Product")
}

func (r gormOrderItems) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.withRelations(r.s.conn(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r gormOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.withRelations(r.s.conn(ctx)).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

func (r gormOrderItems) ListDueForDistribution(ctx context.Context, before time.Time, limit int) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.s.conn(ctx).
		Where("profit_distribute_actual_date IS NULL AND is_refunded = ?", false).
		Where("profit_distribute_planned_date IS NOT NULL AND profit_distribute_planned_date <= ?", before).
		Order("profit_distribute_planned_date asc").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r gormOrderItems) Update(ctx context.Context, item *models.OrderItem) error {
	return r.s.conn(ctx).Omit(clause.Associations).Save(item).Error
}

type gormPurchases struct{ s *GormStore }

func (r gormPurchases) Create(ctx context.Context, p *models.CustomerPurchased) error {
	return r.s.conn(ctx).Create(p).Error
}

func (r gormPurchases) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerPurchased, error) {
	var p models.CustomerPurchased
	if err := r.s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormPurchases) GetByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*models.CustomerPurchased, error) {
	var p models.CustomerPurchased
	if err := r.s.conn(ctx).First(&p, "order_item_id = ?", orderItemID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormPurchases) Update(ctx context.Context, p *models.CustomerPurchased) error {
	return r.s.conn(ctx).Save(p).Error
}

type gormWallets struct{ s *GormStore }

func (r gormWallets) Create(ctx context.Context, w *models.Wallet) error {
	return r.s.conn(ctx).Create(w).Error
}

func (r gormWallets) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.s.conn(ctx).First(&w, "owner_id = ?", ownerID).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r gormWallets) GetByOwnerForUpdate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, "owner_id = ?", ownerID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r gormWallets) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r gormWallets) Update(ctx context.Context, w *models.Wallet) error {
	return r.s.conn(ctx).Save(w).Error
}

type gormTransactions struct{ s *GormStore }

func (r gormTransactions) Create(ctx context.Context, t *models.Transaction) error {
	return r.s.conn(ctx).Create(t).Error
}

func (r gormTransactions) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.s.conn(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r gormTransactions) Update(ctx context.Context, t *models.Transaction) error {
	return r.s.conn(ctx).Save(t).Error
}

func (r gormTransactions) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.s.conn(ctx).Where("wallet_id = ?", walletID).Order("created_at desc").Find(&out).Error
	return out, err
}

func (r gormTransactions) ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.s.conn(ctx).Where("order_item_id = ?", orderItemID).Order("created_at asc").Find(&out).Error
	return out, err
}

func (r gormTransactions) ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.s.conn(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

type gormReports struct{ s *GormStore }

func (r gormReports) Create(ctx context.Context, rep *models.Report) error {
	return r.s.conn(ctx).Create(rep).Error
}

func (r gormReports) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var rep models.Report
	if err := r.s.conn(ctx).First(&rep, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rep, nil
}

func (r gormReports) Update(ctx context.Context, rep *models.Report) error {
	return r.s.conn(ctx).Save(rep).Error
}

func (r gormReports) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	var out []models.Report
	err := r.s.conn(ctx).Where("status = ?", status).Order("created_at asc").Find(&out).Error
	return out, err
}

func (r gormReports) ExistsPendingForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var count int64
	err := r.s.conn(ctx).Model(&models.Report{}).
		Where("order_item_id = ? AND status = ?", orderItemID, models.ReportStatusPending).
		Count(&count).Error
	return count > 0, err
}

type gormSystemConfigurations struct{ s *GormStore }

func (r gormSystemConfigurations) GetByKey(ctx context.Context, key string) (*models.SystemConfiguration, error) {
	var c models.SystemConfiguration
	if err := r.s.conn(ctx).First(&c, "key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r gormSystemConfigurations) Upsert(ctx context.Context, c *models.SystemConfiguration) error {
	return r.s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "data_type", "description", "updated_at"}),
	}).Create(c).Error
}
