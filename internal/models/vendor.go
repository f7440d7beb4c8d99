package models

import (
	"slices"
	"time"

	"gorm.io/gorm"
)

// Vendor - wholesale supplier. A vendor may stamp its crates with any of
// several registered codes.
type Vendor struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:200;not null;index" json:"name"`
	Contact        string    `gorm:"size:100" json:"contact"`
	Location       string    `gorm:"size:255" json:"location"`
	CrateCodes     []string  `gorm:"serializer:json;type:text" json:"crate_codes"`
	TotalPurchases int       `gorm:"not null;default:0" json:"total_purchases"`
	CreatedAt      time.Time `json:"created_at"`
}

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}

// HasCrateCode reports whether code is registered for the vendor.
func (v *Vendor) HasCrateCode(code string) bool {
	return code != "" && slices.Contains(v.CrateCodes, code)
}
