package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// UnknownSKU is stored for cart items that match no catalog product.
const UnknownSKU = "UNKNOWN"

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StripeSessionID *string         `gorm:"size:255;uniqueIndex" json:"stripe_session_id"`
	PaymentIntentID *string         `gorm:"size:255;index" json:"payment_intent_id"`
	CustomerEmail   string          `gorm:"size:255" json:"customer_email"`
	CustomerName    string          `gorm:"size:255" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:64" json:"customer_phone"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Status          OrderStatus     `gorm:"size:32;index;not null;default:pending" json:"status"`
	AmountTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_total"`
	Currency        string          `gorm:"size:8;not null" json:"currency"`
	FailureReason   string          `gorm:"size:512" json:"failure_reason,omitempty"`

	UTMSource   string `gorm:"column:utm_source;size:500" json:"utm_source"`
	UTMMedium   string `gorm:"column:utm_medium;size:500" json:"utm_medium"`
	UTMCampaign string `gorm:"column:utm_campaign;size:500" json:"utm_campaign"`
	UTMTerm     string `gorm:"column:utm_term;size:500" json:"utm_term"`
	UTMContent  string `gorm:"column:utm_content;size:500" json:"utm_content"`
	Src         string `gorm:"size:500" json:"src"`
	Sck         string `gorm:"size:500" json:"sck"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index;not null" json:"order_id"`
	SKU           string          `gorm:"column:sku;size:64;not null" json:"sku"`
	ProductName   string          `gorm:"size:255" json:"product_name"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	Size          *string         `gorm:"size:32" json:"size"`
	Customization *Customization  `gorm:"type:text;serializer:json" json:"customization,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // unit price
	CreatedAt     time.Time       `json:"created_at"`
}

// LineTotal is the unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Address struct {
	Line1      string `gorm:"size:255" json:"line1,omitempty"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:128" json:"city,omitempty"`
	State      string `gorm:"size:128" json:"state,omitempty"`
	PostalCode string `gorm:"size:32" json:"postal_code,omitempty"`
	Country    string `gorm:"size:8" json:"country,omitempty"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Customization is the personalisation attached to a line item. The full
// human readable text lives here only; the provider receives codes.
type Customization struct {
	Type         string     `json:"type,omitempty"` // player | custom
	PrintingType string     `json:"printingType,omitempty"`
	Name         string     `json:"name,omitempty"`
	Number       string     `json:"number,omitempty"`
	PlayerCode   string     `json:"playerCode,omitempty"`
	Badges       []BadgeRef `json:"badges,omitempty"`
}

type BadgeRef struct {
	Code  string          `json:"code"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (c *Customization) HasPersonalization() bool {
	return c != nil && (c.Name != "" || c.Number != "")
}

// CustomerDetails are only known once the provider confirms payment.
type CustomerDetails struct {
	Email   string
	Name    string
	Phone   string
	Address Address
}

// PaymentConfirmation carries what the reconciler writes on pending -> paid.
type PaymentConfirmation struct {
	PaymentIntentID string
	Customer        CustomerDetails
}
