package model

import "time"

type OrderStatus string

const (
	// 決済検証待ち（Paystackのverify前）
	OrderStatusPendingVerification OrderStatus = "PENDING_VERIFICATION"
	OrderStatusPending             OrderStatus = "PENDING"
	OrderStatusProcessing          OrderStatus = "PROCESSING"
	OrderStatusPackaging           OrderStatus = "PACKAGING"
	OrderStatusShipped             OrderStatus = "SHIPPED"
	OrderStatusDelivered           OrderStatus = "DELIVERED"
	OrderStatusCancelled           OrderStatus = "CANCELLED"
	OrderStatusReturned            OrderStatus = "RETURNED"
	OrderStatusPaymentFailed       OrderStatus = "PAYMENT_FAILED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// 管理者が進められる遷移
var fulfillmentTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusPackaging, OrderStatusCancelled},
	OrderStatusPackaging:  {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusReturned},
}

// fromからtoへ進めてよいか
func CanTransition(from OrderStatus, to OrderStatus) bool {
	for _, s := range fulfillmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 確定済み注文。itemsと配送先は作成時点のスナップショットで、後から書き換えない。
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Status OrderStatus `gorm:"type:varchar(30);not null;index" json:"status"`

	ItemsPrice    int64 `gorm:"not null" json:"items_price"`
	TaxPrice      int64 `gorm:"not null" json:"tax_price"`
	ShippingPrice int64 `gorm:"not null" json:"shipping_price"`
	TotalPrice    int64 `gorm:"not null" json:"total_price"`

	// 注文時点の配送先スナップショット
	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`

	// Paystackのtransaction reference
	PaymentReference string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"payment_reference"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
