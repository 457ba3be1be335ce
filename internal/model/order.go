package model

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status the update API accepts. Staff may move
// an order to any status, including backwards; no transition graph is enforced.
var AllOrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order limits, mirrored by DB check constraints.
const (
	CustomerNameMaxLen = 50
	CommentMaxLen      = 250
	MaxOrderItems      = 20
)

type Order struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName *string     `gorm:"type:varchar(50)" json:"customer_name"`
	Comment      *string     `gorm:"type:varchar(250)" json:"comment"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	TotalAmount  int64       `gorm:"not null;check:chk_order_total,total_amount >= 0" json:"total_amount"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line within an order. Product name and unit amount
// are snapshotted at order time and stay immutable; ProductID survives product
// deletion as NULL so history keeps its meaning.
type OrderItem struct {
	ID          int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64    `gorm:"not null;index" json:"order_id"`
	ProductID   *int64   `gorm:"index" json:"product_id"`
	Product     *Product `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ProductName string   `gorm:"type:varchar(50);not null" json:"product_name"`
	UnitAmount  int64    `gorm:"not null;check:chk_item_unit_amount,unit_amount >= 0" json:"unit_amount"`
	Quantity    int64    `gorm:"not null;check:chk_item_quantity,quantity >= 1" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal is the snapshotted line amount.
func (i OrderItem) Subtotal() int64 {
	return i.UnitAmount * i.Quantity
}
