package models

import "time"

type ConfigDataType string

const (
	ConfigDataTypeInt     ConfigDataType = "int"
	ConfigDataTypeDecimal ConfigDataType = "decimal"
	ConfigDataTypeBool    ConfigDataType = "bool"
	ConfigDataTypeString  ConfigDataType = "string"
)

type SystemConfiguration struct {
	Key         string         `gorm:"primary_key;size:100" json:"key" yaml:"key"`
	Value       string         `gorm:"type:text;not null" json:"value" yaml:"value"`
	DataType    ConfigDataType `gorm:"size:20;not null" json:"data_type" yaml:"data_type"`
	Description string         `gorm:"type:text" json:"description" yaml:"description"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}
