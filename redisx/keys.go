package redisx

import (
	"fmt"
	"time"
)

const (
	// lock:order_item:{order_item_id} -> random token of the holder
	KeyOrderItemLock = "lock:order_item:%s"

	// system_config:{key} -> JSON encoded models.SystemConfiguration
	KeySystemConfig = "system_config:%s"
)

var (
	TTLOrderItemLock = 30 * time.Second
	TTLSystemConfig  = 10 * time.Minute
)

func OrderItemLockKey(orderItemID string) string {
	return fmt.Sprintf(KeyOrderItemLock, orderItemID)
}

func SystemConfigKey(key string) string {
	return fmt.Sprintf(KeySystemConfig, key)
}
