package model

// Outcome is the normalized result a provider event reports for a payment.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

// PaymentEvent is a verified provider notification converted at the
// boundary into one of the concrete variants below.
type PaymentEvent interface {
	EventID() string
	EventType() string
}

type EventMeta struct {
	ID   string
	Type string
}

func (m EventMeta) EventID() string   { return m.ID }
func (m EventMeta) EventType() string { return m.Type }

// CheckoutSession is the provider's hosted checkout session.
type CheckoutSession struct {
	ID              string
	PaymentIntentID string
	OrderRef        string // client_reference_id or metadata order_id
	Status          string // open | complete | expired
	PaymentStatus   string // paid | unpaid | no_payment_required
	ClientSecret    string
	AmountTotal     int64 // minor units
	Currency        string
	Created         int64
	Customer        CustomerDetails
	Metadata        map[string]string
}

func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

type PaymentIntent struct {
	ID             string
	OrderRef       string
	Status         string
	AmountReceived int64
	Currency       string
	Customer       CustomerDetails
	FailureMessage string
}

// CheckoutSessionEvent covers checkout.session.completed,
// checkout.session.async_payment_succeeded / _failed and checkout.session.expired.
type CheckoutSessionEvent struct {
	EventMeta
	Outcome Outcome
	Session CheckoutSession
}

// PaymentIntentEvent covers payment_intent.succeeded / payment_failed.
type PaymentIntentEvent struct {
	EventMeta
	Outcome Outcome
	Intent  PaymentIntent
}

// NoticeEvent is acknowledged and logged but never changes an order
// (refunds, disputes, charge receipts).
type NoticeEvent struct {
	EventMeta
	ObjectID string
}

type UnhandledEvent struct {
	EventMeta
}

// ProviderLineItem is a line item as stored on the provider side.
type ProviderLineItem struct {
	Description string
	Quantity    int64
	AmountTotal int64
	Metadata    map[string]string
}
