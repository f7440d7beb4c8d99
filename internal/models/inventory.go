package models

import "gorm.io/gorm"

// InventoryItem: materialized stock per item name (kg). Only verification,
// sales and reconciliation write to it.
type InventoryItem struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	Item        string  `gorm:"size:100;not null;uniqueIndex" json:"item"`
	TotalStock  float64 `gorm:"not null;default:0" json:"total_stock"`
	LastUpdated string  `gorm:"size:10;not null" json:"last_updated"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}
