package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrogas/agrogas-backend/pkg/enums"
)

// Order is a buyer purchase spanning one or more records.
type Order struct {
	ID            int64             `gorm:"column:id;primaryKey;autoIncrement"`
	BuyerName     string            `gorm:"column:buyer_name;not null"`
	BuyerPhone    *string           `gorm:"column:buyer_phone"`
	BuyerLocation *string           `gorm:"column:buyer_location"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null;default:'placed'"`
	CreatedAt     time.Time         `gorm:"column:created_at;not null"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots the price of one record at the moment the order committed.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	RecordID  int64           `gorm:"column:record_id;not null;index"`
	QtyKg     float64         `gorm:"column:qty_kg;not null"`
	UnitPrice float64         `gorm:"column:unit_price;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Record    *Record         `gorm:"foreignKey:RecordID;constraint:OnDelete:RESTRICT"`
}
