package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[uuid.UUID]time.Time
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: map[uuid.UUID]time.Time{}}
}

func (s *fakeScheduler) ScheduleDistributeProfitJob(id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[id] = at
	return nil
}

func (s *fakeScheduler) CancelScheduleJob(name, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, group+"/"+name)
	if id, err := uuid.Parse(name); err == nil {
		delete(s.scheduled, id)
	}
	return nil
}

func (s *fakeScheduler) wasCancelled(group string, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cancelled {
		if c == group+"/"+id.String() {
			return true
		}
	}
	return false
}

type sentNotification struct {
	userIDs []uuid.UUID
	n       notifications.Notification
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) NotifyUsers(_ context.Context, userIDs []uuid.UUID, n notifications.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{userIDs: userIDs, n: n})
	return nil
}

func (f *fakeNotifier) ofType(typ string) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentNotification
	for _, s := range f.sent {
		if s.n.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *fakePublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
	return nil
}

func (p *fakePublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx   context.Context
	store *repository.MemoryStore
	now   time.Time

	scheduler *fakeScheduler
	notifier  *fakeNotifier
	publisher *fakePublisher

	settlement *SettlementService
	disputes   *DisputeService
	wallets    *WalletService
	orders     *OrderService
	configs    *SystemConfigService

	customer models.ActorContext
	gymOwner models.ActorContext
	trainer  models.ActorContext
	admin    models.ActorContext

	course  models.GymCourse
	pkg     models.FreelancePTPackage
	product models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		store:     repository.NewMemoryStore(),
		now:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		scheduler: newFakeScheduler(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	f.configs = NewSystemConfigService(f.store, nil)
	deps := Deps{
		Store:     f.store,
		Scheduler: f.scheduler,
		Configs:   f.configs,
		Notifier:  f.notifier,
		Publisher: f.publisher,
		Now:       func() time.Time { return f.now },
	}
	f.settlement = NewSettlementService(deps)
	f.disputes = NewDisputeService(deps)
	f.wallets = NewWalletService(deps)
	f.orders = NewOrderService(deps)

	for _, cfg := range []models.SystemConfiguration{
		{Key: ConfigCommissionRate, Value: "0.15", DataType: models.ConfigDataTypeDecimal},
		{Key: ConfigProfitHoldDays, Value: "7", DataType: models.ConfigDataTypeInt},
		{Key: ConfigMinWithdrawalAmount, Value: "100000", DataType: models.ConfigDataTypeDecimal},
	} {
		cfg := cfg
		must(t, f.configs.Upsert(f.ctx, &cfg))
	}

	f.customer = f.user(t, models.RoleCustomer)
	f.gymOwner = f.user(t, models.RoleGymOwner)
	f.trainer = f.user(t, models.RoleFreelancePT)
	f.admin = f.user(t, models.RoleAdmin)

	gym := models.Gym{OwnerID: f.gymOwner.UserID, Name: "Iron Temple"}
	must(t, f.store.Catalog().CreateGym(f.ctx, &gym))
	f.course = models.GymCourse{GymID: gym.ID, Name: "Strength 101", Price: dec("500000"), NumberOfSessions: 2, IsActive: true}
	must(t, f.store.Catalog().CreateGymCourse(f.ctx, &f.course))
	f.pkg = models.FreelancePTPackage{PTID: f.trainer.UserID, Name: "10 x PT", Price: dec("500000"), NumberOfSessions: 1, IsActive: true}
	must(t, f.store.Catalog().CreatePTPackage(f.ctx, &f.pkg))
	f.product = models.Product{Name: "Shaker", Price: dec("120000"), Stock: 50}
	must(t, f.store.Catalog().CreateProduct(f.ctx, &f.product))
	return f
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) user(t *testing.T, role models.Role) models.ActorContext {
	t.Helper()
	u := models.User{FullName: string(role), Email: uuid.NewString() + "@example.com", Role: role}
	must(t, f.store.Users().Create(f.ctx, &u))
	return models.ActorContext{UserID: u.ID, Role: role}
}

func (f *fixture) order(t *testing.T, coupon string, lines ...OrderLine) *models.Order {
	t.Helper()
	o, err := f.orders.CreateOrder(f.ctx, f.customer, lines, coupon)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func (f *fixture) paidOrder(t *testing.T, lines ...OrderLine) *models.Order {
	t.Helper()
	o := f.order(t, "", lines...)
	paid, err := f.settlement.ConfirmOrderPayment(f.ctx, o.ID)
	if err != nil {
		t.Fatalf("ConfirmOrderPayment: %v", err)
	}
	return paid
}

func (f *fixture) courseLine(qty int) OrderLine {
	return OrderLine{Kind: models.ItemKindGymCourse, RefID: f.course.ID, Quantity: qty}
}

func (f *fixture) packageLine(qty int) OrderLine {
	return OrderLine{Kind: models.ItemKindFreelancePTPackage, RefID: f.pkg.ID, Quantity: qty}
}

func (f *fixture) productLine(qty int) OrderLine {
	return OrderLine{Kind: models.ItemKindProduct, RefID: f.product.ID, Quantity: qty}
}

func (f *fixture) wallet(t *testing.T, owner models.ActorContext) *models.Wallet {
	t.Helper()
	w, err := f.store.Wallets().GetByOwner(f.ctx, owner.UserID)
	if err != nil {
		t.Fatalf("wallet of %s: %v", owner.Role, err)
	}
	return w
}

func (f *fixture) item(t *testing.T, id uuid.UUID) *models.OrderItem {
	t.Helper()
	it, err := f.store.OrderItems().GetByID(f.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return it
}

func (f *fixture) txsOf(t *testing.T, itemID uuid.UUID, typ models.TransactionType) []models.Transaction {
	t.Helper()
	all, err := f.store.Transactions().ListByOrderItem(f.ctx, itemID)
	if err != nil {
		t.Fatal(err)
	}
	var out []models.Transaction
	for _, tx := range all {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

func (f *fixture) purchaseFor(t *testing.T, itemID uuid.UUID) *models.CustomerPurchased {
	t.Helper()
	p, err := f.store.Purchases().GetByOrderItem(f.ctx, itemID)
	if err != nil {
		t.Fatalf("no purchase for order item %s: %v", itemID, err)
	}
	return p
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}
