package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant 租户（机构）
type Tenant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Slug      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}
