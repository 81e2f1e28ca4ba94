package services

import (
	"context"
	"testing"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/shopspring/decimal"
)

type mapCache struct {
	items       map[string]models.SystemConfiguration
	invalidated []string
}

func newMapCache() *mapCache { return &mapCache{items: map[string]models.SystemConfiguration{}} }

func (c *mapCache) Get(_ context.Context, key string) (*models.SystemConfiguration, bool, error) {
	cfg, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &cfg, true, nil
}

func (c *mapCache) Set(_ context.Context, cfg *models.SystemConfiguration) error {
	c.items[cfg.Key] = *cfg
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, key string) error {
	delete(c.items, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

func TestGetSystemConfigurationAutoConvertDataType(t *testing.T) {
	ctx := context.Background()
	svc := NewSystemConfigService(repository.NewMemoryStore(), nil)
	for _, cfg := range []models.SystemConfiguration{
		{Key: "Rate", Value: "0.15", DataType: models.ConfigDataTypeDecimal},
		{Key: "Days", Value: "7", DataType: models.ConfigDataTypeInt},
		{Key: "Enabled", Value: "true", DataType: models.ConfigDataTypeBool},
		{Key: "Name", Value: "gym", DataType: models.ConfigDataTypeString},
	} {
		cfg := cfg
		if err := svc.Upsert(ctx, &cfg); err != nil {
			t.Fatalf("Upsert %s: %v", cfg.Key, err)
		}
	}

	v, err := svc.GetSystemConfigurationAutoConvertDataType(ctx, "Rate")
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := v.(decimal.Decimal); !ok || !d.Equal(dec("0.15")) {
		t.Fatalf("Rate = %#v", v)
	}
	if v, _ := svc.GetSystemConfigurationAutoConvertDataType(ctx, "Days"); v != 7 {
		t.Fatalf("Days = %#v", v)
	}
	if v, _ := svc.GetSystemConfigurationAutoConvertDataType(ctx, "Enabled"); v != true {
		t.Fatalf("Enabled = %#v", v)
	}
	if v, _ := svc.GetSystemConfigurationAutoConvertDataType(ctx, "Name"); v != "gym" {
		t.Fatalf("Name = %#v", v)
	}

	_, err = svc.GetSystemConfigurationAutoConvertDataType(ctx, "Missing")
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("missing key err = %v", err)
	}
}

func TestUpsertRejectsUnconvertibleValue(t *testing.T) {
	svc := NewSystemConfigService(repository.NewMemoryStore(), nil)
	err := svc.Upsert(context.Background(), &models.SystemConfiguration{
		Key: "Days", Value: "seven", DataType: models.ConfigDataTypeInt,
	})
	if !apperrors.Is(err, apperrors.KindDataValidationFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestDecimalAndIntFallbacks(t *testing.T) {
	ctx := context.Background()
	svc := NewSystemConfigService(repository.NewMemoryStore(), nil)
	if got := svc.Decimal(ctx, "Missing", dec("0.2")); !got.Equal(dec("0.2")) {
		t.Fatalf("Decimal fallback = %s", got)
	}
	if got := svc.Int(ctx, "Missing", 3); got != 3 {
		t.Fatalf("Int fallback = %d", got)
	}

	_ = svc.Upsert(ctx, &models.SystemConfiguration{Key: "Min", Value: "5000", DataType: models.ConfigDataTypeInt})
	if got := svc.Decimal(ctx, "Min", decimal.Zero); !got.Equal(dec("5000")) {
		t.Fatalf("int read as decimal = %s", got)
	}
}

func TestConfigCacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	cache := newMapCache()
	svc := NewSystemConfigService(store, cache)

	if err := svc.Upsert(ctx, &models.SystemConfiguration{Key: ConfigProfitHoldDays, Value: "7", DataType: models.ConfigDataTypeInt}); err != nil {
		t.Fatal(err)
	}
	if got := svc.Int(ctx, ConfigProfitHoldDays, 0); got != 7 {
		t.Fatalf("hold days = %d", got)
	}
	if _, ok := cache.items[ConfigProfitHoldDays]; !ok {
		t.Fatal("value was not cached after read")
	}

	if err := svc.Upsert(ctx, &models.SystemConfiguration{Key: ConfigProfitHoldDays, Value: "3", DataType: models.ConfigDataTypeInt}); err != nil {
		t.Fatal(err)
	}
	if got := svc.Int(ctx, ConfigProfitHoldDays, 0); got != 3 {
		t.Fatalf("hold days after upsert = %d, stale cache", got)
	}
}

func TestSeedKeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	svc := NewSystemConfigService(repository.NewMemoryStore(), nil)
	_ = svc.Upsert(ctx, &models.SystemConfiguration{Key: ConfigCommissionRate, Value: "0.2", DataType: models.ConfigDataTypeDecimal})

	n, err := svc.Seed(ctx, []models.SystemConfiguration{
		{Key: ConfigCommissionRate, Value: "0.15", DataType: models.ConfigDataTypeDecimal},
		{Key: ConfigProfitHoldDays, Value: "7", DataType: models.ConfigDataTypeInt},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("seeded %d, want 1", n)
	}
	if got := svc.Decimal(ctx, ConfigCommissionRate, decimal.Zero); !got.Equal(dec("0.2")) {
		t.Fatalf("seed overwrote existing value: %s", got)
	}
}
