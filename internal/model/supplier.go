package model

// Supplier represents the supplier registry stored in the database
type Supplier struct {
	SupplierID   string `json:"supplier_id" gorm:"primaryKey;type:varchar(20)"`
	SupplierName string `json:"supplier_name" gorm:"type:varchar(255);index;not null"`
	Country      string `json:"country" gorm:"type:varchar(50)"`
	Category     string `json:"category" gorm:"type:varchar(100);index"`
}
