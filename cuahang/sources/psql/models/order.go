package models

import "time"

// Order status values as stored by the storefront.
const (
	OrderStatusPending   = "Chờ xác nhận"
	OrderStatusShipping  = "Đang giao"
	OrderStatusCompleted = "Hoàn thành"
	OrderStatusCancelled = "Hủy"
)

type Product struct {
	ID      int     `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID int     `json:"store_id" gorm:"not null;index"`
	Store   Store   `json:"-" gorm:"foreignKey:StoreID;references:ID;constraint:OnDelete:CASCADE"`
	Name    string  `json:"name" gorm:"type:varchar(255);not null"`
	Price   float64 `json:"price" gorm:"not null;default:0"`
}

type Order struct {
	ID              int         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          int         `json:"user_id" gorm:"not null;index"`
	User            User        `json:"customer" gorm:"foreignKey:UserID;references:ID"`
	Status          string      `json:"status" gorm:"type:varchar(64);not null;index"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:varchar(512)"`
	CreatedAt       time.Time   `json:"created_at" gorm:"not null;index"`
	Items           []OrderItem `json:"-" gorm:"foreignKey:OrderID"`
	Shipments       []Shipment  `json:"shipments,omitempty" gorm:"foreignKey:OrderID"`
	Payments        []Payment   `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        int     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   int     `json:"order_id" gorm:"not null;index"`
	Order     Order   `json:"order" gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	ProductID int     `json:"product_id" gorm:"not null;index"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID;references:ID"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	LineTotal float64 `json:"line_total" gorm:"not null"`
}

type Shipment struct {
	ID      int    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID int    `json:"order_id" gorm:"not null;index"`
	Carrier string `json:"carrier" gorm:"type:varchar(128)"`
	Status  string `json:"status" gorm:"type:varchar(64)"`
}

type Payment struct {
	ID      int     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID int     `json:"order_id" gorm:"not null;index"`
	Method  string  `json:"method" gorm:"type:varchar(64)"`
	Status  string  `json:"status" gorm:"type:varchar(64)"`
	Amount  float64 `json:"amount"`
}
