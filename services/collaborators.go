// Package services holds the settlement core: profit calculation, profit
// distribution, dispute reversal, withdrawals and order intake.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/redisx"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobScheduler interface {
	ScheduleDistributeProfitJob(orderItemID uuid.UUID, at time.Time) error
	CancelScheduleJob(name, group string) error
}

// Locker serializes work on one key across processes. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type nopLocker struct{}

func (nopLocker) Lock(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// HookQueue runs work after commit without blocking the caller.
type HookQueue interface {
	Enqueue(name string, fn func(ctx context.Context) error) bool
}

// ConfigReader reads typed business constants, falling back when the key is
// missing or malformed.
type ConfigReader interface {
	Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal
	Int(ctx context.Context, key string, fallback int) int
}

// Deps are the collaborators shared by the settlement services. Zero values
// are replaced with no-op implementations by withDefaults.
type Deps struct {
	Store     repository.Store
	Scheduler JobScheduler
	Configs   ConfigReader
	Notifier  notifications.Dispatcher
	Locker    Locker
	Hooks     HookQueue
	Publisher events.Publisher
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Scheduler == nil {
		d.Scheduler = nopScheduler{}
	}
	if d.Configs == nil {
		d.Configs = defaultConfigs{}
	}
	if d.Notifier == nil {
		d.Notifier = notifications.NopDispatcher{}
	}
	if d.Locker == nil {
		d.Locker = nopLocker{}
	}
	if d.Hooks == nil {
		d.Hooks = inlineHooks{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

type nopScheduler struct{}

func (nopScheduler) ScheduleDistributeProfitJob(uuid.UUID, time.Time) error { return nil }
func (nopScheduler) CancelScheduleJob(string, string) error                 { return nil }

type defaultConfigs struct{}

func (defaultConfigs) Decimal(_ context.Context, _ string, fallback decimal.Decimal) decimal.Decimal {
	return fallback
}

func (defaultConfigs) Int(_ context.Context, _ string, fallback int) int { return fallback }

// inlineHooks runs each hook on the caller's goroutine.
type inlineHooks struct{}

func (inlineHooks) Enqueue(name string, fn func(ctx context.Context) error) bool {
	if err := fn(context.Background()); err != nil {
		log.Printf("⚠️ Post-commit hook %s failed: %v", name, err)
	}
	return true
}

func (d Deps) notify(userIDs []uuid.UUID, n notifications.Notification) {
	if len(userIDs) == 0 {
		return
	}
	d.Hooks.Enqueue("notify:"+n.Type, func(ctx context.Context) error {
		return d.Notifier.NotifyUsers(ctx, userIDs, n)
	})
}

func (d Deps) publish(eventType, correlationID string, payload any) {
	d.Hooks.Enqueue("publish:"+eventType, func(ctx context.Context) error {
		env, err := events.NewEnvelope(eventType, correlationID, payload)
		if err != nil {
			return err
		}
		return d.Publisher.Publish(ctx, env)
	})
}

func (d Deps) lockOrderItem(ctx context.Context, orderItemID uuid.UUID) (func(), error) {
	release, err := d.Locker.Lock(ctx, redisx.OrderItemLockKey(orderItemID.String()), redisx.TTLOrderItemLock)
	if errors.Is(err, redisx.ErrLockHeld) {
		return nil, apperrors.Business("order item %s is already being settled", orderItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock order item %s: %w", orderItemID, err)
	}
	return release, nil
}
