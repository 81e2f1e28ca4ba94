// Package events publishes settlement facts to Kafka after they commit.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicSettlement = "settlement.events"

	EventProfitPending     = "ProfitPending"
	EventProfitDistributed = "ProfitDistributed"
	EventProfitReversed    = "ProfitReversed"
	EventProductRefunded   = "ProductRefunded"
	EventWithdrawRequested = "WithdrawRequested"
	EventWithdrawProcessed = "WithdrawProcessed"

	producerName = "fitness-settlement"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ProfitPayload describes a single profit movement on a merchant wallet.
type ProfitPayload struct {
	OrderID     string `json:"order_id"`
	OrderItemID string `json:"order_item_id"`
	MerchantID  string `json:"merchant_id,omitempty"`
	WalletID    string `json:"wallet_id,omitempty"`
	Amount      string `json:"amount"`
}

type WithdrawPayload struct {
	TransactionID string `json:"transaction_id"`
	WalletID      string `json:"wallet_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}

// NewEnvelope wraps payload. correlationID is the order item id for profit
// events so every event of one item lands on the same partition.
func NewEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
