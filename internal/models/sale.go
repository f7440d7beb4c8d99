package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentCredit:
		return true
	}
	return false
}

// Sale - retail sale of one item.
type Sale struct {
	ID                string        `gorm:"primaryKey;size:36" json:"id"`
	Item              string        `gorm:"size:100;index;not null" json:"item"`
	QuantitySold      float64       `gorm:"not null" json:"quantity_sold"`
	SellingPricePerKg float64       `gorm:"not null" json:"selling_price_per_kg"`
	TotalSaleAmount   float64       `gorm:"not null" json:"total_sale_amount"`
	SaleDate          string        `gorm:"size:10;index;not null" json:"sale_date"`
	CustomerName      string        `gorm:"size:100" json:"customer_name,omitempty"`
	PaymentMethod     PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	CreatedAt         time.Time     `json:"created_at"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}
