package redisx

import "testing"

func TestKeys(t *testing.T) {
	if got := OrderItemLockKey("abc"); got != "lock:order_item:abc" {
		t.Fatalf("OrderItemLockKey = %q", got)
	}
	if got := SystemConfigKey("CommissionRate"); got != "system_config:CommissionRate" {
		t.Fatalf("SystemConfigKey = %q", got)
	}
}
