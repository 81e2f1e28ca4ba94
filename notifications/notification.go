// Package notifications delivers settlement notices to users over the
// websocket hub and email.
package notifications

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

const (
	TypeProfitPending     = "profit_pending"
	TypeProfitDistributed = "profit_distributed"
	TypeProfitReversed    = "profit_reversed"
	TypeReportResolved    = "report_resolved"
	TypeWithdrawProcessed = "withdraw_processed"
)

type Notification struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type Dispatcher interface {
	NotifyUsers(ctx context.Context, userIDs []uuid.UUID, n Notification) error
}

type NopDispatcher struct{}

func (NopDispatcher) NotifyUsers(context.Context, []uuid.UUID, Notification) error { return nil }

// MultiDispatcher fans a notification out to every channel. A failing channel
// does not stop the others.
type MultiDispatcher []Dispatcher

func (m MultiDispatcher) NotifyUsers(ctx context.Context, userIDs []uuid.UUID, n Notification) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.NotifyUsers(ctx, userIDs, n); err != nil {
			log.Printf("⚠️ Notification channel failed for %s: %v", n.Type, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
