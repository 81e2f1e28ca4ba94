package config

import (
	_ "embed"
	"fmt"

	"github.com/anjiri1684/fitness_marketplace/models"
	"gopkg.in/yaml.v2"
)

//go:embed system_configurations.yaml
var systemConfigurationsYAML []byte

func DefaultSystemConfigurations() ([]models.SystemConfiguration, error) {
	return ParseSystemConfigurations(systemConfigurationsYAML)
}

func ParseSystemConfigurations(raw []byte) ([]models.SystemConfiguration, error) {
	var out []models.SystemConfiguration
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse system configurations: %w", err)
	}
	for i, c := range out {
		if c.Key == "" || c.DataType == "" {
			return nil, fmt.Errorf("system configuration #%d is missing key or data_type", i+1)
		}
	}
	return out, nil
}
