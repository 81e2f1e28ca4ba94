package services

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/shopspring/decimal"
)

const (
	ConfigCommissionRate      = "CommissionRate"
	ConfigProfitHoldDays      = "ProfitHoldDays"
	ConfigMinWithdrawalAmount = "MinWithdrawalAmount"
)

var (
	DefaultCommissionRate      = decimal.RequireFromString("0.15")
	DefaultProfitHoldDays      = 7
	DefaultMinWithdrawalAmount = decimal.NewFromInt(100000)
)

type ConfigCache interface {
	Get(ctx context.Context, key string) (*models.SystemConfiguration, bool, error)
	Set(ctx context.Context, cfg *models.SystemConfiguration) error
	Invalidate(ctx context.Context, key string) error
}

type SystemConfigService struct {
	store repository.Store
	cache ConfigCache
}

// NewSystemConfigService accepts a nil cache.
func NewSystemConfigService(store repository.Store, cache ConfigCache) *SystemConfigService {
	return &SystemConfigService{store: store, cache: cache}
}

func (s *SystemConfigService) Get(ctx context.Context, key string) (*models.SystemConfiguration, error) {
	if s.cache != nil {
		cfg, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("⚠️ Config cache read failed for %s: %v", key, err)
		} else if ok {
			return cfg, nil
		}
	}

	cfg, err := s.store.SystemConfigurations().GetByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("system configuration %s not found", key)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cfg); err != nil {
			log.Printf("⚠️ Config cache write failed for %s: %v", key, err)
		}
	}
	return cfg, nil
}

// GetSystemConfigurationAutoConvertDataType returns int, decimal.Decimal,
// bool or string depending on the stored data type.
func (s *SystemConfigService) GetSystemConfigurationAutoConvertDataType(ctx context.Context, key string) (any, error) {
	cfg, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return ConvertConfigValue(cfg.DataType, cfg.Value)
}

func ConvertConfigValue(dataType models.ConfigDataType, value string) (any, error) {
	switch dataType {
	case models.ConfigDataTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, apperrors.DataValidationFailed("value %q is not an int", value)
		}
		return v, nil
	case models.ConfigDataTypeDecimal:
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, apperrors.DataValidationFailed("value %q is not a decimal", value)
		}
		return v, nil
	case models.ConfigDataTypeBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, apperrors.DataValidationFailed("value %q is not a bool", value)
		}
		return v, nil
	case models.ConfigDataTypeString:
		return value, nil
	}
	return nil, apperrors.DataValidationFailed("unknown data type %q", dataType)
}

func (s *SystemConfigService) Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := s.GetSystemConfigurationAutoConvertDataType(ctx, key)
	if err != nil {
		log.Printf("⚠️ Using default for %s: %v", key, err)
		return fallback
	}
	switch d := v.(type) {
	case decimal.Decimal:
		return d
	case int:
		return decimal.NewFromInt(int64(d))
	}
	log.Printf("⚠️ Config %s is not numeric, using default", key)
	return fallback
}

func (s *SystemConfigService) Int(ctx context.Context, key string, fallback int) int {
	v, err := s.GetSystemConfigurationAutoConvertDataType(ctx, key)
	if err != nil {
		log.Printf("⚠️ Using default for %s: %v", key, err)
		return fallback
	}
	if i, ok := v.(int); ok {
		return i
	}
	log.Printf("⚠️ Config %s is not an int, using default", key)
	return fallback
}

func (s *SystemConfigService) Upsert(ctx context.Context, cfg *models.SystemConfiguration) error {
	if cfg.Key == "" {
		return apperrors.DataValidationFailed("key is required")
	}
	if _, err := ConvertConfigValue(cfg.DataType, cfg.Value); err != nil {
		return err
	}
	if err := s.store.SystemConfigurations().Upsert(ctx, cfg); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cfg.Key); err != nil {
			log.Printf("⚠️ Config cache invalidation failed for %s: %v", cfg.Key, err)
		}
	}
	return nil
}

// Seed inserts defaults that are not present yet. Existing values win.
func (s *SystemConfigService) Seed(ctx context.Context, defaults []models.SystemConfiguration) (int, error) {
	inserted := 0
	for i := range defaults {
		cfg := defaults[i]
		_, err := s.store.SystemConfigurations().GetByKey(ctx, cfg.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return inserted, err
		}
		if err := s.Upsert(ctx, &cfg); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
