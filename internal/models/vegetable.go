package models

import (
	"time"

	"gorm.io/gorm"
)

type ItemCategory string

const (
	CategoryVegetable ItemCategory = "vegetable"
	CategoryFruit     ItemCategory = "fruit"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryVegetable, CategoryFruit:
		return true
	}
	return false
}

// VegetableItem - catalog entry used to group purchases and sales.
type VegetableItem struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	Name      string       `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Category  ItemCategory `gorm:"size:20;not null" json:"category"`
	CreatedAt time.Time    `json:"created_at"`
}

func (v *VegetableItem) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}
