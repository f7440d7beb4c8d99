package models

import (
	"time"

	"gorm.io/gorm"
)

type BillType string

const (
	BillParent BillType = "parent" // every purchase of a vendor on a date
	BillChild  BillType = "child"  // one purchase
)

func (t BillType) Valid() bool {
	switch t {
	case BillParent, BillChild:
		return true
	}
	return false
}

type BillStorage string

const (
	BillStorageInline BillStorage = "inline"
	BillStorageObject BillStorage = "object"
)

// Bill - receipt attachment. Object-stored bills keep only ObjectKey;
// inline bills keep the base64 payload in Data.
type Bill struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	VendorID     string      `gorm:"size:36;index;not null" json:"vendor_id"`
	VendorName   string      `gorm:"size:200;not null" json:"vendor_name"`
	PurchaseDate string      `gorm:"size:10;index;not null" json:"purchase_date"`
	BillType     BillType    `gorm:"size:10;not null" json:"bill_type"`
	PurchaseID   *string     `gorm:"size:36;index" json:"purchase_id,omitempty"`
	Item         string      `gorm:"size:100" json:"item,omitempty"`
	FileName     string      `gorm:"size:255;not null" json:"file_name"`
	MimeType     string      `gorm:"size:100;not null" json:"mime_type"`
	ByteSize     int64       `gorm:"not null" json:"byte_size"`
	TotalAmount  float64     `json:"total_amount"`
	Storage      BillStorage `gorm:"size:10;not null" json:"storage"`
	ObjectKey    string      `gorm:"size:255" json:"-"`
	Data         string      `gorm:"type:text" json:"-"`
	UploadedAt   time.Time   `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (b *Bill) BeforeCreate(*gorm.DB) error {
	newID(&b.ID)
	return nil
}
