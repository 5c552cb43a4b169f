package types

// CustomerSnapshot is the customer description copied onto an order at
// creation time. It is deliberately not a foreign key: the order keeps the
// customer data as it was when placed, even if the customer record changes
// later.
type CustomerSnapshot struct {
	Code    string `gorm:"column:code;not null" json:"code"`
	Name    string `gorm:"column:name;not null" json:"name"`
	Address string `gorm:"column:address" json:"address"`
	Phone   string `gorm:"column:phone" json:"phone"`
	Note    string `gorm:"column:note" json:"note"`
}
