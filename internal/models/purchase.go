package models

import (
	"time"

	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationVerified    VerificationStatus = "verified"
	VerificationDiscrepancy VerificationStatus = "discrepancy"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationDiscrepancy:
		return true
	}
	return false
}

type CrateStatus string

const (
	CratePending  CrateStatus = "pending"
	CratePartial  CrateStatus = "partial"
	CrateReturned CrateStatus = "returned"
)

func (s CrateStatus) Valid() bool {
	switch s {
	case CratePending, CratePartial, CrateReturned:
		return true
	}
	return false
}

// Purchase - one wholesale line bought from a vendor on a date.
// TotalAmount is frozen at order time (OrderedWeight * PricePerKg).
type Purchase struct {
	ID                 string             `gorm:"primaryKey;size:36" json:"id"`
	VendorID           string             `gorm:"size:36;index;not null" json:"vendor_id"`
	VendorName         string             `gorm:"size:200;not null" json:"vendor_name"`
	Item               string             `gorm:"size:100;index;not null" json:"item"`
	OrderedWeight      float64            `gorm:"not null" json:"ordered_weight"`
	ReceivedWeight     *float64           `json:"received_weight"`
	PricePerKg         float64            `gorm:"not null" json:"price_per_kg"`
	TotalAmount        float64            `gorm:"not null" json:"total_amount"`
	PurchaseDate       string             `gorm:"size:10;index;not null" json:"purchase_date"`
	VerificationStatus VerificationStatus `gorm:"size:20;index;not null" json:"verification_status"`
	DiscrepancyAmount  *float64           `json:"discrepancy_amount"`
	CratesCount        int                `gorm:"not null;default:0" json:"crates_count"`
	VendorCrateCode    string             `gorm:"size:50" json:"vendor_crate_code,omitempty"`
	ReturnedCrates     int                `gorm:"not null;default:0" json:"returned_crates"`
	LastReturnDate     *string            `gorm:"size:10" json:"last_return_date"`
	CrateStatus        CrateStatus        `gorm:"size:20;not null;default:pending" json:"crate_status"`
	CreatedAt          time.Time          `json:"created_at"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}

// RemainingCrates is the number of crates still out with the shop.
func (p *Purchase) RemainingCrates() int {
	if r := p.CratesCount - p.ReturnedCrates; r > 0 {
		return r
	}
	return 0
}
