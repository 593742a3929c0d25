package model

import (
	"time"

	"gorm.io/gorm"
)

// DateLayout is the ISO calendar date format used for every date column
const DateLayout = "2006-01-02"

// Invoice is one supplier invoice with its delivery and payment outcome.
// Dates are ISO YYYY-MM-DD strings so range filters compare lexically.
type Invoice struct {
	InvoiceID            string  `json:"invoice_id" gorm:"primaryKey;type:varchar(20)"`
	SupplierID           string  `json:"supplier_id" gorm:"type:varchar(20);index;not null"`
	InvoiceDate          string  `json:"invoice_date" gorm:"type:varchar(10);index"`
	DueDate              string  `json:"due_date" gorm:"type:varchar(10)"`
	PaymentDate          string  `json:"payment_date" gorm:"type:varchar(10)"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date" gorm:"type:varchar(10)"`
	ActualDeliveryDate   string  `json:"actual_delivery_date" gorm:"type:varchar(10)"`
	InvoiceAmount        float64 `json:"invoice_amount" gorm:"not null"`
	IsAccurate           bool    `json:"is_accurate"`
	IsRejected           bool    `json:"is_rejected"`
	PaymentDays          int     `json:"payment_days"`
	DeliveryDelayDays    int     `json:"delivery_delay_days"`
}

// OnTime reports whether delivery did not exceed the expected date
func (i Invoice) OnTime() bool {
	return i.DeliveryDelayDays <= 0
}

// Month returns the YYYY-MM bucket of the invoice date, or "" when it is malformed
func (i Invoice) Month() string {
	if len(i.InvoiceDate) < 7 {
		return ""
	}
	return i.InvoiceDate[:7]
}

// BeforeSave recomputes the derived day counts from the date columns.
// Values supplied without the dates are kept as is.
func (i *Invoice) BeforeSave(tx *gorm.DB) error {
	i.DeriveDays()
	return nil
}

// DeriveDays fills PaymentDays and DeliveryDelayDays from the dates when both ends parse
func (i *Invoice) DeriveDays() {
	if d, ok := DaysBetween(i.InvoiceDate, i.PaymentDate); ok {
		i.PaymentDays = d
	}
	if d, ok := DaysBetween(i.ExpectedDeliveryDate, i.ActualDeliveryDate); ok {
		i.DeliveryDelayDays = d
	}
}

// DaysBetween returns to - from in whole calendar days
func DaysBetween(from, to string) (int, bool) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, false
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, false
	}
	return int(t.Sub(f).Hours() / 24), true
}

// ValidDate reports whether s is an ISO calendar date
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
