package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/google/uuid"
)

// MemoryStore keeps every table in maps. It backs tests and local runs
// without Postgres. Transactions take the write lock and restore a snapshot
// when fn fails.
type MemoryStore struct {
	mu sync.RWMutex
	tables
}

type tables struct {
	users        map[uuid.UUID]models.User
	gyms         map[uuid.UUID]models.Gym
	courses      map[uuid.UUID]models.GymCourse
	packages     map[uuid.UUID]models.FreelancePTPackage
	products     map[uuid.UUID]models.Product
	coupons      map[uuid.UUID]models.Coupon
	orders       map[uuid.UUID]models.Order
	orderItems   map[uuid.UUID]models.OrderItem
	purchases    map[uuid.UUID]models.CustomerPurchased
	wallets      map[uuid.UUID]models.Wallet
	transactions map[uuid.UUID]models.Transaction
	reports      map[uuid.UUID]models.Report
	configs      map[string]models.SystemConfiguration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: tables{
		users:        make(map[uuid.UUID]models.User),
		gyms:         make(map[uuid.UUID]models.Gym),
		courses:      make(map[uuid.UUID]models.GymCourse),
		packages:     make(map[uuid.UUID]models.FreelancePTPackage),
		products:     make(map[uuid.UUID]models.Product),
		coupons:      make(map[uuid.UUID]models.Coupon),
		orders:       make(map[uuid.UUID]models.Order),
		orderItems:   make(map[uuid.UUID]models.OrderItem),
		purchases:    make(map[uuid.UUID]models.CustomerPurchased),
		wallets:      make(map[uuid.UUID]models.Wallet),
		transactions: make(map[uuid.UUID]models.Transaction),
		reports:      make(map[uuid.UUID]models.Report),
		configs:      make(map[string]models.SystemConfiguration),
	}}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (t tables) snapshot() tables {
	return tables{
		users:        cloneMap(t.users),
		gyms:         cloneMap(t.gyms),
		courses:      cloneMap(t.courses),
		packages:     cloneMap(t.packages),
		products:     cloneMap(t.products),
		coupons:      cloneMap(t.coupons),
		orders:       cloneMap(t.orders),
		orderItems:   cloneMap(t.orderItems),
		purchases:    cloneMap(t.purchases),
		wallets:      cloneMap(t.wallets),
		transactions: cloneMap(t.transactions),
		reports:      cloneMap(t.reports),
		configs:      cloneMap(t.configs),
	}
}

type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

func (m *MemoryStore) rlock(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

func (m *MemoryStore) wlock(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := m.tables.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.tables = saved
		return err
	}
	return nil
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (m *MemoryStore) Users() UserRepository               { return memUsers{m} }
func (m *MemoryStore) Catalog() CatalogRepository          { return memCatalog{m} }
func (m *MemoryStore) Orders() OrderRepository             { return memOrders{m} }
func (m *MemoryStore) OrderItems() OrderItemRepository     { return memOrderItems{m} }
func (m *MemoryStore) Purchases() PurchaseRepository       { return memPurchases{m} }
func (m *MemoryStore) Wallets() WalletRepository           { return memWallets{m} }
func (m *MemoryStore) Transactions() TransactionRepository { return memTransactions{m} }
func (m *MemoryStore) Reports() ReportRepository           { return memReports{m} }
func (m *MemoryStore) SystemConfigurations() SystemConfigurationRepository {
	return memSystemConfigurations{m}
}

type memUsers struct{ m *MemoryStore }

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	defer r.m.wlock(ctx)()
	newID(&u.ID)
	stamp(&u.CreatedAt, &u.UpdatedAt)
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer r.m.rlock(ctx)()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type memCatalog struct{ m *MemoryStore }

func (r memCatalog) CreateGym(ctx context.Context, g *models.Gym) error {
	defer r.m.wlock(ctx)()
	newID(&g.ID)
	stamp(&g.CreatedAt, &g.UpdatedAt)
	r.m.gyms[g.ID] = *g
	return nil
}

func (r memCatalog) CreateGymCourse(ctx context.Context, c *models.GymCourse) error {
	defer r.m.wlock(ctx)()
	newID(&c.ID)
	stamp(&c.CreatedAt, &c.UpdatedAt)
	row := *c
	row.Gym = nil
	r.m.courses[c.ID] = row
	return nil
}

func (r memCatalog) CreatePTPackage(ctx context.Context, p *models.FreelancePTPackage) error {
	defer r.m.wlock(ctx)()
	newID(&p.ID)
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.m.packages[p.ID] = *p
	return nil
}

func (r memCatalog) CreateProduct(ctx context.Context, p *models.Product) error {
	defer r.m.wlock(ctx)()
	newID(&p.ID)
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.m.products[p.ID] = *p
	return nil
}

func (r memCatalog) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	defer r.m.wlock(ctx)()
	newID(&c.ID)
	stamp(&c.CreatedAt, &c.UpdatedAt)
	r.m.coupons[c.ID] = *c
	return nil
}

func (m *MemoryStore) courseWithGym(id uuid.UUID) (*models.GymCourse, bool) {
	c, ok := m.courses[id]
	if !ok {
		return nil, false
	}
	if g, ok := m.gyms[c.GymID]; ok {
		c.Gym = &g
	}
	return &c, true
}

func (r memCatalog) GetGymCourse(ctx context.Context, id uuid.UUID) (*models.GymCourse, error) {
	defer r.m.rlock(ctx)()
	c, ok := r.m.courseWithGym(id)
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r memCatalog) GetPTPackage(ctx context.Context, id uuid.UUID) (*models.FreelancePTPackage, error) {
	defer r.m.rlock(ctx)()
	p, ok := r.m.packages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	defer r.m.rlock(ctx)()
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memCatalog) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r memCatalog) UpdateProduct(ctx context.Context, p *models.Product) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.products[p.ID]; !ok {
		return ErrNotFound
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.m.products[p.ID] = *p
	return nil
}

func (r memCatalog) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	defer r.m.rlock(ctx)()
	for _, c := range r.m.coupons {
		if c.Code == code {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type memOrders struct{ m *MemoryStore }

func (r memOrders) Create(ctx context.Context, o *models.Order) error {
	defer r.m.wlock(ctx)()
	newID(&o.ID)
	stamp(&o.CreatedAt, &o.UpdatedAt)
	for i := range o.Items {
		it := &o.Items[i]
		newID(&it.ID)
		it.OrderID = o.ID
		stamp(&it.CreatedAt, &it.UpdatedAt)
		r.m.orderItems[it.ID] = flatItem(*it)
	}
	row := *o
	row.Coupon = nil
	row.Items = nil
	r.m.orders[o.ID] = row
	return nil
}

func flatItem(it models.OrderItem) models.OrderItem {
	it.Order = nil
	it.GymCourse = nil
	it.FreelancePTPackage = nil
	it.Product = nil
	return it
}

func (m *MemoryStore) orderWithCoupon(id uuid.UUID) (*models.Order, bool) {
	o, ok := m.orders[id]
	if !ok {
		return nil, false
	}
	if o.CouponID != nil {
		if c, ok := m.coupons[*o.CouponID]; ok {
			o.Coupon = &c
		}
	}
	return &o, true
}

func (m *MemoryStore) itemsOf(orderID uuid.UUID) []models.OrderItem {
	var items []models.OrderItem
	for _, it := range m.orderItems {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func (r memOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	defer r.m.rlock(ctx)()
	o, ok := r.m.orderWithCoupon(id)
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = r.m.itemsOf(id)
	return o, nil
}

func (r memOrders) Update(ctx context.Context, o *models.Order) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.orders[o.ID]; !ok {
		return ErrNotFound
	}
	stamp(&o.CreatedAt, &o.UpdatedAt)
	row := *o
	row.Coupon = nil
	row.Items = nil
	r.m.orders[o.ID] = row
	return nil
}

type memOrderItems struct{ m *MemoryStore }

func (m *MemoryStore) hydrate(it models.OrderItem) models.OrderItem {
	if o, ok := m.orderWithCoupon(it.OrderID); ok {
		it.Order = o
	}
	if it.GymCourseID != nil {
		if c, ok := m.courseWithGym(*it.GymCourseID); ok {
			it.GymCourse = c
		}
	}
	if it.FreelancePTPackageID != nil {
		if p, ok := m.packages[*it.FreelancePTPackageID]; ok {
			it.FreelancePTPackage = &p
		}
	}
	if it.ProductID != nil {
		if p, ok := m.products[*it.ProductID]; ok {
			it.Product = &p
		}
	}
	return it
}

func (r memOrderItems) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	defer r.m.rlock(ctx)()
	it, ok := r.m.orderItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	h := r.m.hydrate(it)
	return &h, nil
}

func (r memOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	defer r.m.rlock(ctx)()
	items := r.m.itemsOf(orderID)
	for i := range items {
		items[i] = r.m.hydrate(items[i])
	}
	return items, nil
}

func (r memOrderItems) ListDueForDistribution(ctx context.Context, before time.Time, limit int) ([]models.OrderItem, error) {
	defer r.m.rlock(ctx)()
	var out []models.OrderItem
	for _, it := range r.m.orderItems {
		if it.ProfitDistributeActualDate != nil || it.IsRefunded || it.ProfitDistributePlannedDate == nil {
			continue
		}
		if it.ProfitDistributePlannedDate.After(before) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProfitDistributePlannedDate.Before(*out[j].ProfitDistributePlannedDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrderItems) Update(ctx context.Context, item *models.OrderItem) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.orderItems[item.ID]; !ok {
		return ErrNotFound
	}
	stamp(&item.CreatedAt, &item.UpdatedAt)
	r.m.orderItems[item.ID] = flatItem(*item)
	return nil
}

type memPurchases struct{ m *MemoryStore }

func (r memPurchases) Create(ctx context.Context, p *models.CustomerPurchased) error {
	defer r.m.wlock(ctx)()
	newID(&p.ID)
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.m.purchases[p.ID] = *p
	return nil
}

func (r memPurchases) GetByID(ctx context.Context, id uuid.UUID) (*models.CustomerPurchased, error) {
	defer r.m.rlock(ctx)()
	p, ok := r.m.purchases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memPurchases) GetByOrderItem(ctx context.Context, orderItemID uuid.UUID) (*models.CustomerPurchased, error) {
	defer r.m.rlock(ctx)()
	for _, p := range r.m.purchases {
		if p.OrderItemID == orderItemID {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memPurchases) Update(ctx context.Context, p *models.CustomerPurchased) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.purchases[p.ID]; !ok {
		return ErrNotFound
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.m.purchases[p.ID] = *p
	return nil
}

type memWallets struct{ m *MemoryStore }

func (r memWallets) Create(ctx context.Context, w *models.Wallet) error {
	defer r.m.wlock(ctx)()
	newID(&w.ID)
	stamp(&w.CreatedAt, &w.UpdatedAt)
	r.m.wallets[w.ID] = *w
	return nil
}

func (r memWallets) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	defer r.m.rlock(ctx)()
	for _, w := range r.m.wallets {
		if w.OwnerID == ownerID {
			cp := w
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// The store-wide write lock held by WithTransaction already serializes
// writers, so the ForUpdate variants are plain reads here.
func (r memWallets) GetByOwnerForUpdate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	return r.GetByOwner(ctx, ownerID)
}

func (r memWallets) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	defer r.m.rlock(ctx)()
	w, ok := r.m.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (r memWallets) Update(ctx context.Context, w *models.Wallet) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.wallets[w.ID]; !ok {
		return ErrNotFound
	}
	stamp(&w.CreatedAt, &w.UpdatedAt)
	r.m.wallets[w.ID] = *w
	return nil
}

type memTransactions struct{ m *MemoryStore }

func (r memTransactions) Create(ctx context.Context, t *models.Transaction) error {
	defer r.m.wlock(ctx)()
	newID(&t.ID)
	stamp(&t.CreatedAt, &t.UpdatedAt)
	r.m.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	defer r.m.rlock(ctx)()
	t, ok := r.m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r memTransactions) Update(ctx context.Context, t *models.Transaction) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.transactions[t.ID]; !ok {
		return ErrNotFound
	}
	stamp(&t.CreatedAt, &t.UpdatedAt)
	r.m.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) filter(keep func(models.Transaction) bool) []models.Transaction {
	var out []models.Transaction
	for _, t := range r.m.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memTransactions) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	defer r.m.rlock(ctx)()
	return r.filter(func(t models.Transaction) bool {
		return t.WalletID != nil && *t.WalletID == walletID
	}), nil
}

func (r memTransactions) ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.Transaction, error) {
	defer r.m.rlock(ctx)()
	return r.filter(func(t models.Transaction) bool {
		return t.OrderItemID != nil && *t.OrderItemID == orderItemID
	}), nil
}

func (r memTransactions) ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	defer r.m.rlock(ctx)()
	return r.filter(func(t models.Transaction) bool {
		return !t.CreatedAt.Before(from) && !t.CreatedAt.After(to)
	}), nil
}

type memReports struct{ m *MemoryStore }

func (r memReports) Create(ctx context.Context, rep *models.Report) error {
	defer r.m.wlock(ctx)()
	newID(&rep.ID)
	stamp(&rep.CreatedAt, &rep.UpdatedAt)
	r.m.reports[rep.ID] = *rep
	return nil
}

func (r memReports) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	defer r.m.rlock(ctx)()
	rep, ok := r.m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rep, nil
}

func (r memReports) Update(ctx context.Context, rep *models.Report) error {
	defer r.m.wlock(ctx)()
	if _, ok := r.m.reports[rep.ID]; !ok {
		return ErrNotFound
	}
	stamp(&rep.CreatedAt, &rep.UpdatedAt)
	r.m.reports[rep.ID] = *rep
	return nil
}

func (r memReports) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	defer r.m.rlock(ctx)()
	var out []models.Report
	for _, rep := range r.m.reports {
		if rep.Status == status {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memReports) ExistsPendingForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	defer r.m.rlock(ctx)()
	for _, rep := range r.m.reports {
		if rep.OrderItemID == orderItemID && rep.Status == models.ReportStatusPending {
			return true, nil
		}
	}
	return false, nil
}

type memSystemConfigurations struct{ m *MemoryStore }

func (r memSystemConfigurations) GetByKey(ctx context.Context, key string) (*models.SystemConfiguration, error) {
	defer r.m.rlock(ctx)()
	c, ok := r.m.configs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r memSystemConfigurations) Upsert(ctx context.Context, c *models.SystemConfiguration) error {
	defer r.m.wlock(ctx)()
	stamp(&c.CreatedAt, &c.UpdatedAt)
	r.m.configs[c.Key] = *c
	return nil
}
