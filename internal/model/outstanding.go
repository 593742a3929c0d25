package model

// Outstanding is an unpaid balance owed to a supplier at snapshot time
type Outstanding struct {
	ID                uint    `json:"-" gorm:"primaryKey"`
	SupplierID        string  `json:"supplier_id" gorm:"type:varchar(20);index;not null"`
	OutstandingAmount float64 `json:"outstanding_amount" gorm:"not null"`
	AgingDays         int     `json:"aging_days"`
}

// TableName keeps the singular table name used by existing supplier databases
func (Outstanding) TableName() string {
	return "outstanding"
}

// All returns every model managed by migrations
func All() []interface{} {
	return []interface{}{&Supplier{}, &Invoice{}, &Outstanding{}}
}
