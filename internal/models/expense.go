package models

import (
	"time"

	"gorm.io/gorm"
)

type ExpenseCategory string

const (
	ExpenseTransportation ExpenseCategory = "transportation"
	ExpenseStorage        ExpenseCategory = "storage"
	ExpenseUtilities      ExpenseCategory = "utilities"
	ExpenseLabor          ExpenseCategory = "labor"
	ExpenseRent           ExpenseCategory = "rent"
	ExpenseMaintenance    ExpenseCategory = "maintenance"
	ExpenseOther          ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseTransportation,
	ExpenseStorage,
	ExpenseUtilities,
	ExpenseLabor,
	ExpenseRent,
	ExpenseMaintenance,
	ExpenseOther,
}

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseTransportation, ExpenseStorage, ExpenseUtilities, ExpenseLabor,
		ExpenseRent, ExpenseMaintenance, ExpenseOther:
		return true
	}
	return false
}

type Expense struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Category    ExpenseCategory `gorm:"size:20;index;not null" json:"category"`
	Description string          `gorm:"size:255" json:"description"`
	Amount      float64         `gorm:"not null" json:"amount"`
	ExpenseDate string          `gorm:"size:10;index;not null" json:"expense_date"`
	ReceiptURL  string          `gorm:"size:500" json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	newID(&e.ID)
	return nil
}
