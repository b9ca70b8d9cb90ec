package client

import (
	"encoding/json"
	"fmt"

	"jersey-storefront/internal/model"

	"github.com/stripe/stripe-go/v76"
)

const (
	eventSessionCompleted      = "checkout.session.completed"
	eventSessionAsyncSucceeded = "checkout.session.async_payment_succeeded"
	eventSessionAsyncFailed    = "checkout.session.async_payment_failed"
	eventSessionExpired        = "checkout.session.expired"
	eventIntentSucceeded       = "payment_intent.succeeded"
	eventIntentFailed          = "payment_intent.payment_failed"
	eventChargeSucceeded       = "charge.succeeded"
	eventChargeRefunded        = "charge.refunded"
	eventDisputeCreated        = "charge.dispute.created"
)

// convertEvent validates a verified Stripe event and turns it into one of
// the model.PaymentEvent variants.
func convertEvent(event *stripe.Event) (model.PaymentEvent, error) {
	if event.ID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrMalformedEvent)
	}
	meta := model.EventMeta{ID: event.ID, Type: string(event.Type)}

	switch meta.Type {
	case eventSessionCompleted, eventSessionAsyncSucceeded, eventSessionAsyncFailed, eventSessionExpired:
		var sess stripe.CheckoutSession
		if err := decodeObject(event, &sess); err != nil {
			return nil, err
		}
		if sess.ID == "" {
			return nil, fmt.Errorf("%w: checkout session without id", ErrMalformedEvent)
		}
		converted := convertSession(&sess)
		return &model.CheckoutSessionEvent{
			EventMeta: meta,
			Outcome:   sessionOutcome(meta.Type, converted),
			Session:   *converted,
		}, nil

	case eventIntentSucceeded, eventIntentFailed:
		var pi stripe.PaymentIntent
		if err := decodeObject(event, &pi); err != nil {
			return nil, err
		}
		if pi.ID == "" {
			return nil, fmt.Errorf("%w: payment intent without id", ErrMalformedEvent)
		}
		outcome := model.OutcomeSucceeded
		if meta.Type == eventIntentFailed {
			outcome = model.OutcomeFailed
		}
		return &model.PaymentIntentEvent{
			EventMeta: meta,
			Outcome:   outcome,
			Intent:    *convertIntent(&pi),
		}, nil

	case eventChargeSucceeded, eventChargeRefunded, eventDisputeCreated:
		var obj struct {
			ID string `json:"id"`
		}
		if err := decodeObject(event, &obj); err != nil {
			return nil, err
		}
		return &model.NoticeEvent{EventMeta: meta, ObjectID: obj.ID}, nil
	}

	return &model.UnhandledEvent{EventMeta: meta}, nil
}

func decodeObject(event *stripe.Event, v any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%w: %s without data object", ErrMalformedEvent, event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformedEvent, event.Type, err)
	}
	return nil
}

func sessionOutcome(eventType string, sess *model.CheckoutSession) model.Outcome {
	switch eventType {
	case eventSessionAsyncSucceeded:
		return model.OutcomeSucceeded
	case eventSessionAsyncFailed, eventSessionExpired:
		return model.OutcomeFailed
	}
	// completed: delayed payment methods complete the session unpaid
	if sess.Paid() {
		return model.OutcomeSucceeded
	}
	return model.OutcomePending
}

func convertSession(s *stripe.CheckoutSession) *model.CheckoutSession {
	out := &model.CheckoutSession{
		ID:            s.ID,
		OrderRef:      s.ClientReferenceID,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		ClientSecret:  s.ClientSecret,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Created:       s.Created,
		Metadata:      s.Metadata,
	}
	if out.OrderRef == "" {
		out.OrderRef = s.Metadata["order_id"]
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}

	if d := s.CustomerDetails; d != nil {
		out.Customer.Email = d.Email
		out.Customer.Name = d.Name
		out.Customer.Phone = d.Phone
		if d.Address != nil {
			out.Customer.Address = convertAddress(d.Address)
		}
	}
	if out.Customer.Email == "" {
		out.Customer.Email = s.CustomerEmail
	}

	if sd := s.ShippingDetails; sd != nil {
		if sd.Address != nil {
			out.Customer.Address = convertAddress(sd.Address)
		}
		if out.Customer.Name == "" {
			out.Customer.Name = sd.Name
		}
		if out.Customer.Phone == "" {
			out.Customer.Phone = sd.Phone
		}
	}

	return out
}

func convertIntent(pi *stripe.PaymentIntent) *model.PaymentIntent {
	out := &model.PaymentIntent{
		ID:             pi.ID,
		OrderRef:       pi.Metadata["order_id"],
		Status:         string(pi.Status),
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
	}
	out.Customer.Email = pi.ReceiptEmail
	if sd := pi.Shipping; sd != nil {
		out.Customer.Name = sd.Name
		out.Customer.Phone = sd.Phone
		if sd.Address != nil {
			out.Customer.Address = convertAddress(sd.Address)
		}
	}
	if pi.LastPaymentError != nil {
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out
}

func convertAddress(a *stripe.Address) model.Address {
	return model.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
